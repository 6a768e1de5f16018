package evaluator

import (
	"context"
	"testing"
	"time"

	"steward-hq/saturn/pkg/facts"
	"steward-hq/saturn/pkg/rules"
)

func pruneRule(params rules.PruneParams) rules.AutomationRule {
	return rules.AutomationRule{
		ID:       "rule-prune",
		TenantID: "tenant-1",
		Type:     rules.RuleSearchTermPrune,
		Mode:     rules.ModeAuto,
		Enabled:  true,
		Prune:    &params,
	}
}

func TestPruneWastefulTerm(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	src := facts.NewMemorySource()
	// 25 clicks, $15 spend, zero conversions.
	addTermDays(src, "cheap shoes free", today, []facts.SearchTermDay{
		{Clicks: 15, CostMicros: 9_000_000},
		{Clicks: 10, CostMicros: 6_000_000},
	})

	rule := pruneRule(rules.PruneParams{WindowDays: 14, MinClicks: 20, MinSpend: 10})
	res, err := (SearchTermPrune{}).Evaluate(context.Background(), rule, Input{Facts: src, Now: today.Add(10 * time.Hour)})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	if len(res.Alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(res.Alerts))
	}
	if res.Alerts[0].Level != rules.AlertWarning {
		t.Errorf("alert level = %q, want warning", res.Alerts[0].Level)
	}

	if len(res.Actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(res.Actions))
	}
	action := res.Actions[0]
	if action.Type != rules.ActionAddNegative {
		t.Errorf("action type = %q, want add_negative", action.Type)
	}
	if action.Payload.MatchType != "negative_exact" {
		t.Errorf("match type = %q, want negative_exact", action.Payload.MatchType)
	}
	if action.Payload.KeywordText != "cheap shoes free" {
		t.Errorf("keyword text = %q", action.Payload.KeywordText)
	}
}

func TestPruneSpendQualifiesBelowClicks(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	src := facts.NewMemorySource()
	// Only 5 clicks but $12 spend with no conversions.
	addTermDays(src, "expensive term", today, []facts.SearchTermDay{
		{Clicks: 5, CostMicros: 12_000_000},
	})

	rule := pruneRule(rules.PruneParams{WindowDays: 14, MinClicks: 20, MinSpend: 10})
	res, err := (SearchTermPrune{}).Evaluate(context.Background(), rule, Input{Facts: src, Now: today.Add(10 * time.Hour)})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.Actions) != 1 {
		t.Errorf("high spend should qualify even under min_clicks, got %d actions", len(res.Actions))
	}
}

func TestPruneSkipsConvertingTerm(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	src := facts.NewMemorySource()
	addTermDays(src, "good term", today, []facts.SearchTermDay{
		{Clicks: 50, CostMicros: 30_000_000, Conversions: 2, SalesMicros: 80_000_000},
	})

	rule := pruneRule(rules.PruneParams{WindowDays: 14, MinClicks: 20, MinSpend: 10})
	res, err := (SearchTermPrune{}).Evaluate(context.Background(), rule, Input{Facts: src, Now: today.Add(10 * time.Hour)})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.Alerts) != 0 || len(res.Actions) != 0 {
		t.Errorf("converting term must not be pruned, got %d alerts %d actions", len(res.Alerts), len(res.Actions))
	}
}

func TestPruneBelowBothThresholdsQuiet(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	src := facts.NewMemorySource()
	addTermDays(src, "quiet term", today, []facts.SearchTermDay{
		{Clicks: 3, CostMicros: 1_000_000},
	})

	rule := pruneRule(rules.PruneParams{WindowDays: 14, MinClicks: 20, MinSpend: 10})
	res, err := (SearchTermPrune{}).Evaluate(context.Background(), rule, Input{Facts: src, Now: today.Add(10 * time.Hour)})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.Alerts) != 0 {
		t.Errorf("term under both thresholds should be left alone, got %d alerts", len(res.Alerts))
	}
}

func TestPruneCampaignScopeEntity(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	src := facts.NewMemorySource()
	addTermDays(src, "bad term", today, []facts.SearchTermDay{
		{Clicks: 30, CostMicros: 15_000_000},
	})

	rule := pruneRule(rules.PruneParams{WindowDays: 14, MinClicks: 20, MinSpend: 10, Scope: rules.NegateCampaign})
	res, err := (SearchTermPrune{}).Evaluate(context.Background(), rule, Input{Facts: src, Now: today.Add(10 * time.Hour)})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.Actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(res.Actions))
	}
	entity := res.Actions[0].Payload.Entity
	if entity.ID != "c-1:bad term" {
		t.Errorf("campaign-scope entity id = %q, want %q", entity.ID, "c-1:bad term")
	}
}
