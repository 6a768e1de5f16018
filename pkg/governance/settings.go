package governance

import (
	"context"

	"steward-hq/saturn/pkg/rules"
)

// Settings is the per-tenant governance configuration.
//
// A tenant with no stored row gets DefaultSettings; defaults are applied
// transparently by the Guard so callers never observe a missing row.
type Settings struct {
	TenantID string

	// MaxBidChangePercent caps the relative move of any single bid change.
	MaxBidChangePercent float64

	// MinBidMicros / MaxBidMicros are the absolute bid bounds.
	MinBidMicros int64
	MaxBidMicros int64

	// DailySpendCapMicros / MonthlySpendCapMicros are modeled but not
	// enforced beyond these fields; zero means no cap.
	DailySpendCapMicros   int64
	MonthlySpendCapMicros int64

	// MaxActionsPerDay caps automated actions across all of the tenant's
	// rules per calendar day.
	MaxActionsPerDay int

	// RequireApprovalAboveMicros routes high-impact actions to an
	// approval queue instead of the applier. Zero disables approval.
	RequireApprovalAboveMicros int64

	// AutomationPaused is the tenant kill switch.
	AutomationPaused       bool
	AutomationPausedReason string
}

// Default guardrail values for tenants without a stored settings row.
const (
	DefaultMaxBidChangePercent        = 30.0
	DefaultMinBidMicros               = 20_000      // $0.02
	DefaultMaxBidMicros               = 100_000_000 // $100
	DefaultMaxActionsPerDay           = 25
	DefaultRequireApprovalAboveMicros = 50_000_000 // $50/day estimated impact
)

// DefaultSettings returns the guardrails applied when a tenant has no row.
func DefaultSettings(tenantID string) *Settings {
	return &Settings{
		TenantID:                   tenantID,
		MaxBidChangePercent:        DefaultMaxBidChangePercent,
		MinBidMicros:               DefaultMinBidMicros,
		MaxBidMicros:               DefaultMaxBidMicros,
		MaxActionsPerDay:           DefaultMaxActionsPerDay,
		RequireApprovalAboveMicros: DefaultRequireApprovalAboveMicros,
	}
}

// ProtectedEntity excludes one advertising object from automated mutation
// unconditionally.
type ProtectedEntity struct {
	TenantID   string
	EntityType rules.EntityType
	EntityID   string
	Reason     string
}

// PlanTier is the tenant's subscription tier.
type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanStarter PlanTier = "starter"
	PlanPro     PlanTier = "pro"
)

// AllowsRuleType reports whether the tier's entitlement covers a rule type.
//
// free     -> budget_depletion, spend_spike
// starter  -> free plus search_term_harvest, search_term_prune
// pro      -> all four
func (p PlanTier) AllowsRuleType(rt rules.RuleType) bool {
	switch p {
	case PlanFree:
		return rt == rules.RuleBudgetDepletion || rt == rules.RuleSpendSpike
	case PlanStarter, PlanPro:
		return rt.Valid()
	}
	return false
}

// Source reads governance data. Reads are cached per tenant by the Guard
// for the duration of one cycle.
type Source interface {
	// Settings returns the tenant's settings row, or nil when none
	// exists (the Guard substitutes defaults).
	Settings(ctx context.Context, tenantID string) (*Settings, error)

	// ProtectedEntities returns the tenant's protected-entity list.
	ProtectedEntities(ctx context.Context, tenantID string) ([]ProtectedEntity, error)

	// Plan returns the tenant's subscription tier.
	Plan(ctx context.Context, tenantID string) (PlanTier, error)
}
