package rules

import (
	"context"
	"sync"
)

// MemorySource is an in-memory rule source for tests and local experiments.
type MemorySource struct {
	mu    sync.RWMutex
	rules []AutomationRule
}

// NewMemorySource creates an empty in-memory rule source.
func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

// Add appends rules to the source.
func (m *MemorySource) Add(rs ...AutomationRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, rs...)
}

// ListEnabled returns a copy of all enabled rules in insertion order.
func (m *MemorySource) ListEnabled(ctx context.Context) ([]AutomationRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]AutomationRule, 0, len(m.rules))
	for _, r := range m.rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out, nil
}
