package rules

import "fmt"

// Parameter defaults, applied by the Normalize methods when a field is left
// at its zero value.
const (
	DefaultPercentThreshold = 80.0
	DefaultLookbackDays     = 7
	DefaultStdevMultiplier  = 2.0
	DefaultMinSpend         = 5.0
	DefaultWindowDays       = 14
	DefaultMinConversions   = 2
	DefaultMaxACoS          = 35.0
	DefaultMinClicks        = 20
	DefaultPruneMinSpend    = 10.0
)

// NegateScope selects where a negative keyword lands.
type NegateScope string

const (
	NegateAdGroup  NegateScope = "ad_group"
	NegateCampaign NegateScope = "campaign"
)

// Valid reports whether s is a known scope.
func (s NegateScope) Valid() bool {
	return s == NegateAdGroup || s == NegateCampaign
}

// BudgetDepletionParams configures the budget_depletion evaluator.
type BudgetDepletionParams struct {
	// PercentThreshold is the budget usage percentage that triggers.
	PercentThreshold float64 `yaml:"percent_threshold" json:"percent_threshold"`

	// BeforeHourLocal suppresses triggering at or after this local hour;
	// burning the budget late in the day is expected. Zero disables the
	// time gate.
	BeforeHourLocal int `yaml:"before_hour_local" json:"before_hour_local"`
}

// Normalize fills defaults in place and returns the receiver.
func (p *BudgetDepletionParams) Normalize() *BudgetDepletionParams {
	if p.PercentThreshold == 0 {
		p.PercentThreshold = DefaultPercentThreshold
	}
	return p
}

// Validate checks value ranges.
func (p *BudgetDepletionParams) Validate() error {
	if p.PercentThreshold < 0 || p.PercentThreshold > 100 {
		return fmt.Errorf("percent_threshold must be in [0,100], got %v", p.PercentThreshold)
	}
	if p.BeforeHourLocal < 0 || p.BeforeHourLocal > 23 {
		return fmt.Errorf("before_hour_local must be in [0,23], got %d", p.BeforeHourLocal)
	}
	return nil
}

// SpendSpikeParams configures the spend_spike evaluator.
type SpendSpikeParams struct {
	// LookbackDays is the number of prior days in the baseline window.
	LookbackDays int `yaml:"lookback_days" json:"lookback_days"`

	// StdevMultiplier scales the population stdev above the mean.
	StdevMultiplier float64 `yaml:"stdev_multiplier" json:"stdev_multiplier"`

	// MinSpend is the minimum spend today (currency units) before a spike
	// is worth reporting.
	MinSpend float64 `yaml:"min_spend" json:"min_spend"`
}

// Normalize fills defaults in place and returns the receiver.
func (p *SpendSpikeParams) Normalize() *SpendSpikeParams {
	if p.LookbackDays == 0 {
		p.LookbackDays = DefaultLookbackDays
	}
	if p.StdevMultiplier == 0 {
		p.StdevMultiplier = DefaultStdevMultiplier
	}
	if p.MinSpend == 0 {
		p.MinSpend = DefaultMinSpend
	}
	return p
}

// Validate checks value ranges.
func (p *SpendSpikeParams) Validate() error {
	if p.LookbackDays < 0 {
		return fmt.Errorf("lookback_days cannot be negative, got %d", p.LookbackDays)
	}
	if p.StdevMultiplier < 0 {
		return fmt.Errorf("stdev_multiplier cannot be negative, got %v", p.StdevMultiplier)
	}
	if p.MinSpend < 0 {
		return fmt.Errorf("min_spend cannot be negative, got %v", p.MinSpend)
	}
	return nil
}

// HarvestParams configures the search_term_harvest evaluator.
type HarvestParams struct {
	// WindowDays is the aggregation window for search-term facts.
	WindowDays int `yaml:"window_days" json:"window_days"`

	// MinConversions is the minimum conversions a term needs.
	MinConversions int `yaml:"min_conversions" json:"min_conversions"`

	// MaxACoS is the maximum advertising cost of sale (percent).
	MaxACoS float64 `yaml:"max_acos" json:"max_acos"`
}

// Normalize fills defaults in place and returns the receiver.
func (p *HarvestParams) Normalize() *HarvestParams {
	if p.WindowDays == 0 {
		p.WindowDays = DefaultWindowDays
	}
	if p.MinConversions == 0 {
		p.MinConversions = DefaultMinConversions
	}
	if p.MaxACoS == 0 {
		p.MaxACoS = DefaultMaxACoS
	}
	return p
}

// Validate checks value ranges.
func (p *HarvestParams) Validate() error {
	if p.WindowDays < 0 {
		return fmt.Errorf("window_days cannot be negative, got %d", p.WindowDays)
	}
	if p.MinConversions < 0 {
		return fmt.Errorf("min_conversions cannot be negative, got %d", p.MinConversions)
	}
	if p.MaxACoS < 0 {
		return fmt.Errorf("max_acos cannot be negative, got %v", p.MaxACoS)
	}
	return nil
}

// PruneParams configures the search_term_prune evaluator.
type PruneParams struct {
	// WindowDays is the aggregation window for search-term facts.
	WindowDays int `yaml:"window_days" json:"window_days"`

	// MinClicks is the click count that qualifies a non-converting term.
	MinClicks int `yaml:"min_clicks" json:"min_clicks"`

	// MinSpend is the spend (currency units) that qualifies a
	// non-converting term even below MinClicks.
	MinSpend float64 `yaml:"min_spend" json:"min_spend"`

	// MaxConversions is the most conversions a term may have and still be
	// pruned. Almost always zero.
	MaxConversions int `yaml:"max_conversions" json:"max_conversions"`

	// Scope is where the negative keyword is created.
	Scope NegateScope `yaml:"negate_scope" json:"negate_scope"`
}

// Normalize fills defaults in place and returns the receiver.
func (p *PruneParams) Normalize() *PruneParams {
	if p.WindowDays == 0 {
		p.WindowDays = DefaultWindowDays
	}
	if p.MinClicks == 0 {
		p.MinClicks = DefaultMinClicks
	}
	if p.MinSpend == 0 {
		p.MinSpend = DefaultPruneMinSpend
	}
	if p.Scope == "" {
		p.Scope = NegateAdGroup
	}
	return p
}

// Validate checks value ranges.
func (p *PruneParams) Validate() error {
	if p.WindowDays < 0 {
		return fmt.Errorf("window_days cannot be negative, got %d", p.WindowDays)
	}
	if p.MinClicks < 0 {
		return fmt.Errorf("min_clicks cannot be negative, got %d", p.MinClicks)
	}
	if p.MinSpend < 0 {
		return fmt.Errorf("min_spend cannot be negative, got %v", p.MinSpend)
	}
	if p.MaxConversions < 0 {
		return fmt.Errorf("max_conversions cannot be negative, got %d", p.MaxConversions)
	}
	if p.Scope != "" && !p.Scope.Valid() {
		return fmt.Errorf("negate_scope must be ad_group or campaign, got %q", p.Scope)
	}
	return nil
}
