package rules

import (
	"context"
	"fmt"
	"time"
)

// RuleType identifies which evaluator a rule binds to.
//
// The set is closed: ForType in the evaluator package maps every value below
// to exactly one evaluator, and Validate rejects anything else before a rule
// reaches the engine.
type RuleType string

const (
	// RuleBudgetDepletion watches per-campaign budget usage and pauses
	// campaigns that burn through their daily budget too early.
	RuleBudgetDepletion RuleType = "budget_depletion"

	// RuleSpendSpike flags campaigns whose spend today exceeds a
	// mean+k*stdev threshold over a lookback window. Alert-only.
	RuleSpendSpike RuleType = "spend_spike"

	// RuleSearchTermHarvest promotes converting search terms into
	// exact-match keywords.
	RuleSearchTermHarvest RuleType = "search_term_harvest"

	// RuleSearchTermPrune adds negative keywords for terms that spend
	// without converting.
	RuleSearchTermPrune RuleType = "search_term_prune"
)

// AllRuleTypes lists every known rule type, in evaluation-cost order.
func AllRuleTypes() []RuleType {
	return []RuleType{
		RuleBudgetDepletion,
		RuleSpendSpike,
		RuleSearchTermHarvest,
		RuleSearchTermPrune,
	}
}

// Valid reports whether rt is a member of the closed rule-type set.
func (rt RuleType) Valid() bool {
	switch rt {
	case RuleBudgetDepletion, RuleSpendSpike, RuleSearchTermHarvest, RuleSearchTermPrune:
		return true
	}
	return false
}

// Mode controls what a rule is allowed to produce.
type Mode string

const (
	// ModeDryRun evaluates and records alerts but never persists actions.
	ModeDryRun Mode = "dry_run"

	// ModeSuggestion produces alerts for a human to act on; no actions.
	ModeSuggestion Mode = "suggestion"

	// ModeAuto produces queued actions for the downstream applier.
	ModeAuto Mode = "auto"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeDryRun, ModeSuggestion, ModeAuto:
		return true
	}
	return false
}

// Severity is the operator-facing priority of a rule.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Throttle bounds how often a single rule may act.
type Throttle struct {
	// CooldownHours is the minimum gap between action batches from this
	// rule. Zero means no cooldown.
	CooldownHours int `yaml:"cooldown_hours" json:"cooldown_hours"`

	// MaxActionsPerDay caps actions created by this rule per calendar day.
	// Zero means the engine default applies.
	MaxActionsPerDay int `yaml:"max_actions_per_day" json:"max_actions_per_day"`
}

// DefaultMaxActionsPerDay applies when a rule does not set its own cap.
const DefaultMaxActionsPerDay = 10

// EffectiveMaxActionsPerDay returns the per-rule daily action cap.
func (t Throttle) EffectiveMaxActionsPerDay() int {
	if t.MaxActionsPerDay > 0 {
		return t.MaxActionsPerDay
	}
	return DefaultMaxActionsPerDay
}

// AutomationRule is a tenant-configured watch over performance facts.
//
// Exactly one of the typed params fields is set, matching Type. The rule
// record itself is owned by the tenant and read-only to the engine.
type AutomationRule struct {
	ID       string
	OwnerID  string
	TenantID string
	Name     string
	Type     RuleType
	Mode     Mode
	Enabled  bool
	Severity Severity
	Throttle Throttle

	BudgetDepletion *BudgetDepletionParams
	SpendSpike      *SpendSpikeParams
	Harvest         *HarvestParams
	Prune           *PruneParams

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks structural invariants: known type and mode, identity
// fields present, and params populated for the rule's type.
func (r *AutomationRule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule id cannot be empty")
	}
	if r.TenantID == "" {
		return fmt.Errorf("rule %s: tenant id cannot be empty", r.ID)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("rule %s: unknown rule type %q", r.ID, r.Type)
	}
	if !r.Mode.Valid() {
		return fmt.Errorf("rule %s: unknown mode %q", r.ID, r.Mode)
	}

	switch r.Type {
	case RuleBudgetDepletion:
		if r.BudgetDepletion == nil {
			return fmt.Errorf("rule %s: budget_depletion params missing", r.ID)
		}
		return r.BudgetDepletion.Validate()
	case RuleSpendSpike:
		if r.SpendSpike == nil {
			return fmt.Errorf("rule %s: spend_spike params missing", r.ID)
		}
		return r.SpendSpike.Validate()
	case RuleSearchTermHarvest:
		if r.Harvest == nil {
			return fmt.Errorf("rule %s: search_term_harvest params missing", r.ID)
		}
		return r.Harvest.Validate()
	case RuleSearchTermPrune:
		if r.Prune == nil {
			return fmt.Errorf("rule %s: search_term_prune params missing", r.ID)
		}
		return r.Prune.Validate()
	}

	// Unreachable while the switch above covers the closed set.
	return fmt.Errorf("rule %s: unhandled rule type %q", r.ID, r.Type)
}

// Source provides enabled rules to the engine.
//
// The engine reads every enabled rule across all tenants in one call and
// never writes rules back.
type Source interface {
	// ListEnabled returns all enabled rules, ordered by tenant so the
	// engine's per-tenant governance cache gets maximal reuse.
	ListEnabled(ctx context.Context) ([]AutomationRule, error)
}
