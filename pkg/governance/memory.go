package governance

import (
	"context"
	"sync"

	"steward-hq/saturn/pkg/rules"
)

// MemorySource is an in-memory governance Source for tests and embedding.
type MemorySource struct {
	mu        sync.RWMutex
	settings  map[string]*Settings
	protected map[string][]ProtectedEntity
	plans     map[string]PlanTier
}

// NewMemorySource creates an empty in-memory governance source. Tenants
// without explicit rows get default settings and the pro plan, so embedded
// use works without any setup.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		settings:  make(map[string]*Settings),
		protected: make(map[string][]ProtectedEntity),
		plans:     make(map[string]PlanTier),
	}
}

// SetSettings stores a tenant settings row.
func (m *MemorySource) SetSettings(s *Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.TenantID] = s
}

// Protect adds a protected entity.
func (m *MemorySource) Protect(tenantID string, et rules.EntityType, id, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.protected[tenantID] = append(m.protected[tenantID], ProtectedEntity{
		TenantID:   tenantID,
		EntityType: et,
		EntityID:   id,
		Reason:     reason,
	})
}

// SetPlan stores a tenant's plan tier.
func (m *MemorySource) SetPlan(tenantID string, p PlanTier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[tenantID] = p
}

// Settings returns the stored row, or nil when absent.
func (m *MemorySource) Settings(ctx context.Context, tenantID string) (*Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.settings[tenantID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// ProtectedEntities returns the tenant's protected-entity list.
func (m *MemorySource) ProtectedEntities(ctx context.Context, tenantID string) ([]ProtectedEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ProtectedEntity, len(m.protected[tenantID]))
	copy(out, m.protected[tenantID])
	return out, nil
}

// Plan returns the tenant's tier, defaulting to pro when unset.
func (m *MemorySource) Plan(ctx context.Context, tenantID string) (PlanTier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.plans[tenantID]; ok {
		return p, nil
	}
	return PlanPro, nil
}
