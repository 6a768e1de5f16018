package rules

import (
	"strings"
	"testing"
)

func TestRuleTypeValid(t *testing.T) {
	tests := []struct {
		rt    RuleType
		valid bool
	}{
		{RuleBudgetDepletion, true},
		{RuleSpendSpike, true},
		{RuleSearchTermHarvest, true},
		{RuleSearchTermPrune, true},
		{RuleType("bid_optimizer"), false},
		{RuleType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.rt), func(t *testing.T) {
			if got := tt.rt.Valid(); got != tt.valid {
				t.Errorf("Valid(%q) = %v, want %v", tt.rt, got, tt.valid)
			}
		})
	}
}

func TestAllRuleTypesAreValid(t *testing.T) {
	for _, rt := range AllRuleTypes() {
		if !rt.Valid() {
			t.Errorf("AllRuleTypes contains invalid type %q", rt)
		}
	}
	if len(AllRuleTypes()) != 4 {
		t.Errorf("expected 4 rule types, got %d", len(AllRuleTypes()))
	}
}

func TestModeValid(t *testing.T) {
	for _, m := range []Mode{ModeDryRun, ModeSuggestion, ModeAuto} {
		if !m.Valid() {
			t.Errorf("mode %q should be valid", m)
		}
	}
	if Mode("manual").Valid() {
		t.Error("mode \"manual\" should not be valid")
	}
}

func TestThrottleEffectiveMaxActionsPerDay(t *testing.T) {
	tests := []struct {
		name string
		in   Throttle
		want int
	}{
		{"zero uses default", Throttle{}, DefaultMaxActionsPerDay},
		{"explicit cap", Throttle{MaxActionsPerDay: 3}, 3},
		{"negative uses default", Throttle{MaxActionsPerDay: -1}, DefaultMaxActionsPerDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.EffectiveMaxActionsPerDay(); got != tt.want {
				t.Errorf("EffectiveMaxActionsPerDay() = %d, want %d", got, tt.want)
			}
		})
	}
}

func validRule() AutomationRule {
	return AutomationRule{
		ID:              "rule-1",
		TenantID:        "tenant-1",
		Name:            "budget watch",
		Type:            RuleBudgetDepletion,
		Mode:            ModeAuto,
		Enabled:         true,
		BudgetDepletion: &BudgetDepletionParams{PercentThreshold: 80},
	}
}

func TestAutomationRuleValidate(t *testing.T) {
	t.Run("valid rule passes", func(t *testing.T) {
		r := validRule()
		if err := r.Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		r := validRule()
		r.ID = ""
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for missing id")
		}
	})

	t.Run("missing tenant", func(t *testing.T) {
		r := validRule()
		r.TenantID = ""
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for missing tenant id")
		}
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		r := validRule()
		r.Type = "bid_optimizer"
		err := r.Validate()
		if err == nil {
			t.Fatal("expected error for unknown rule type")
		}
		if !strings.Contains(err.Error(), "bid_optimizer") {
			t.Errorf("error should name the bad type, got %q", err)
		}
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		r := validRule()
		r.Mode = "manual"
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for unknown mode")
		}
	})

	t.Run("missing params for type", func(t *testing.T) {
		r := validRule()
		r.Type = RuleSearchTermHarvest
		if err := r.Validate(); err == nil {
			t.Fatal("expected error when params for the rule type are missing")
		}
	})

	t.Run("invalid params rejected", func(t *testing.T) {
		r := validRule()
		r.BudgetDepletion = &BudgetDepletionParams{PercentThreshold: 150}
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for out-of-range threshold")
		}
	})
}
