package facts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemorySource is an in-memory Source for tests and embedded use.
//
// Rows are appended with the Add* methods; reads copy, so a MemorySource is
// safe for concurrent use.
type MemorySource struct {
	mu       sync.RWMutex
	budgets  []BudgetUsage
	days     []CampaignDay
	terms    []SearchTermDay
	keywords map[string]map[string]bool // tenant -> lowercased keyword text
}

// NewMemorySource creates an empty in-memory fact source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		keywords: make(map[string]map[string]bool),
	}
}

// AddBudgetUsage appends budget-usage snapshots.
func (m *MemorySource) AddBudgetUsage(rows ...BudgetUsage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets = append(m.budgets, rows...)
}

// AddCampaignDay appends daily campaign aggregates.
func (m *MemorySource) AddCampaignDay(rows ...CampaignDay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days = append(m.days, rows...)
}

// AddSearchTermDay appends daily search-term aggregates.
func (m *MemorySource) AddSearchTermDay(rows ...SearchTermDay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terms = append(m.terms, rows...)
}

// AddExactKeyword registers existing exact-match keywords for a tenant.
func (m *MemorySource) AddExactKeyword(tenantID string, texts ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.keywords[tenantID]
	if set == nil {
		set = make(map[string]bool)
		m.keywords[tenantID] = set
	}
	for _, t := range texts {
		set[strings.ToLower(t)] = true
	}
}

// LatestBudgetUsage returns the newest snapshot per campaign for a tenant.
func (m *MemorySource) LatestBudgetUsage(ctx context.Context, tenantID string) ([]BudgetUsage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[string]BudgetUsage)
	for _, row := range m.budgets {
		if row.TenantID != tenantID {
			continue
		}
		cur, ok := latest[row.CampaignID]
		if !ok || row.ObservedAt.After(cur.ObservedAt) {
			latest[row.CampaignID] = row
		}
	}

	out := make([]BudgetUsage, 0, len(latest))
	for _, row := range latest {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CampaignID < out[j].CampaignID })
	return out, nil
}

// CampaignDaily returns daily aggregates with Date >= since.
func (m *MemorySource) CampaignDaily(ctx context.Context, tenantID string, since time.Time) ([]CampaignDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []CampaignDay
	for _, row := range m.days {
		if row.TenantID == tenantID && !row.Date.Before(since) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// SearchTermDaily returns daily aggregates with Date >= since.
func (m *MemorySource) SearchTermDaily(ctx context.Context, tenantID string, since time.Time) ([]SearchTermDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []SearchTermDay
	for _, row := range m.terms {
		if row.TenantID == tenantID && !row.Date.Before(since) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ExactKeywords returns the tenant's exact-match keyword set.
func (m *MemorySource) ExactKeywords(ctx context.Context, tenantID string) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]bool, len(m.keywords[tenantID]))
	for k := range m.keywords[tenantID] {
		out[k] = true
	}
	return out, nil
}
