package governance

import (
	"context"
	"testing"

	"steward-hq/saturn/pkg/rules"
)

func TestPlanTierAllowsRuleType(t *testing.T) {
	tests := []struct {
		plan PlanTier
		rt   rules.RuleType
		want bool
	}{
		{PlanFree, rules.RuleBudgetDepletion, true},
		{PlanFree, rules.RuleSpendSpike, true},
		{PlanFree, rules.RuleSearchTermHarvest, false},
		{PlanFree, rules.RuleSearchTermPrune, false},
		{PlanStarter, rules.RuleSearchTermHarvest, true},
		{PlanStarter, rules.RuleSearchTermPrune, true},
		{PlanPro, rules.RuleBudgetDepletion, true},
		{PlanPro, rules.RuleSearchTermHarvest, true},
		{PlanTier("enterprise"), rules.RuleBudgetDepletion, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan)+"/"+string(tt.rt), func(t *testing.T) {
			if got := tt.plan.AllowsRuleType(tt.rt); got != tt.want {
				t.Errorf("%s.AllowsRuleType(%s) = %v, want %v", tt.plan, tt.rt, got, tt.want)
			}
		})
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings("tenant-9")
	if s.TenantID != "tenant-9" {
		t.Errorf("TenantID = %q", s.TenantID)
	}
	if s.AutomationPaused {
		t.Error("defaults must not pause automation")
	}
	if s.MinBidMicros <= 0 || s.MaxBidMicros <= s.MinBidMicros {
		t.Errorf("bid bounds look wrong: [%d, %d]", s.MinBidMicros, s.MaxBidMicros)
	}
}

func TestMemorySourcePlanDefaultsToPro(t *testing.T) {
	src := NewMemorySource()
	p, err := src.Plan(context.Background(), "unknown-tenant")
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if p != PlanPro {
		t.Errorf("memory source default plan = %q, want pro", p)
	}

	src.SetPlan("tenant-1", PlanFree)
	p, err = src.Plan(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if p != PlanFree {
		t.Errorf("plan = %q, want free", p)
	}
}
