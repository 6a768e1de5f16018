package store

import (
	"context"
	"sync"
	"time"

	"steward-hq/saturn/pkg/rules"
)

// MemoryStore is an in-memory Outcomes implementation for tests and
// embedded use. It enforces the same idempotency-key uniqueness as the
// SQLite backend.
type MemoryStore struct {
	mu      sync.RWMutex
	alerts  []rules.Alert
	actions []rules.Action
	runs    map[string]rules.RuleRun
	keys    map[string]bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]rules.RuleRun),
		keys: make(map[string]bool),
	}
}

// InsertAlert persists an alert.
func (m *MemoryStore) InsertAlert(ctx context.Context, alert *rules.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, *alert)
	return nil
}

// InsertAction persists an action unless its idempotency key exists.
func (m *MemoryStore) InsertAction(ctx context.Context, action *rules.Action) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[action.IdempotencyKey] {
		return false, nil
	}
	m.keys[action.IdempotencyKey] = true
	m.actions = append(m.actions, *action)
	return true, nil
}

// CountTenantActionsOn counts a tenant's actions created on the given day.
func (m *MemoryStore) CountTenantActionsOn(ctx context.Context, tenantID string, day time.Time) (int, error) {
	start, end := dayBounds(day)
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, a := range m.actions {
		if a.TenantID == tenantID && !a.CreatedAt.Before(start) && a.CreatedAt.Before(end) {
			count++
		}
	}
	return count, nil
}

// CountRuleActionsOn counts one rule's actions created on the given day.
func (m *MemoryStore) CountRuleActionsOn(ctx context.Context, ruleID string, day time.Time) (int, error) {
	start, end := dayBounds(day)
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, a := range m.actions {
		if a.RuleID == ruleID && !a.CreatedAt.Before(start) && a.CreatedAt.Before(end) {
			count++
		}
	}
	return count, nil
}

// CreateRuleRun records the start of a rule run.
func (m *MemoryStore) CreateRuleRun(ctx context.Context, run *rules.RuleRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = *run
	return nil
}

// FinalizeRuleRun overwrites the run with its final state.
func (m *MemoryStore) FinalizeRuleRun(ctx context.Context, run *rules.RuleRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = *run
	return nil
}

// PruneBefore deletes alerts and runs created before the cutoff.
func (m *MemoryStore) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	kept := m.alerts[:0]
	for _, a := range m.alerts {
		if a.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	m.alerts = kept

	for id, run := range m.runs {
		if run.StartedAt.Before(cutoff) {
			delete(m.runs, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close is a no-op for the memory backend.
func (m *MemoryStore) Close() error {
	return nil
}

// Alerts returns a copy of all stored alerts, for inspection in tests.
func (m *MemoryStore) Alerts() []rules.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]rules.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Actions returns a copy of all stored actions, for inspection in tests.
func (m *MemoryStore) Actions() []rules.Action {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]rules.Action, len(m.actions))
	copy(out, m.actions)
	return out
}

// Runs returns a copy of all rule runs, for inspection in tests.
func (m *MemoryStore) Runs() []rules.RuleRun {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]rules.RuleRun, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r)
	}
	return out
}
