package evaluator

import (
	"context"
	"testing"
	"time"

	"steward-hq/saturn/pkg/facts"
	"steward-hq/saturn/pkg/rules"
)

func spikeRule(params rules.SpendSpikeParams) rules.AutomationRule {
	return rules.AutomationRule{
		ID:         "rule-spike",
		TenantID:   "tenant-1",
		Type:       rules.RuleSpendSpike,
		Mode:       rules.ModeAuto,
		Enabled:    true,
		SpendSpike: &params,
	}
}

// addSpendSeries writes one campaign-day row per prior-day spend value,
// counting back from the day before today.
func addSpendSeries(src *facts.MemorySource, campaignID string, today time.Time, prior []float64, todaySpend float64) {
	for i, spend := range prior {
		src.AddCampaignDay(facts.CampaignDay{
			TenantID:   "tenant-1",
			CampaignID: campaignID,
			Date:       today.AddDate(0, 0, -(len(prior) - i)),
			CostMicros: int64(spend * 1e6),
		})
	}
	src.AddCampaignDay(facts.CampaignDay{
		TenantID:   "tenant-1",
		CampaignID: campaignID,
		Date:       today,
		CostMicros: int64(todaySpend * 1e6),
	})
}

func TestSpendSpikeDetected(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	src := facts.NewMemorySource()
	// Baseline mean 10.43, stdev ~0.90; threshold at 2x stdev ~12.24.
	addSpendSeries(src, "c-1", today, []float64{10, 12, 11, 9, 10, 11, 10}, 15)

	rule := spikeRule(rules.SpendSpikeParams{LookbackDays: 7, StdevMultiplier: 2, MinSpend: 5})
	res, err := (SpendSpike{}).Evaluate(context.Background(), rule, Input{Facts: src, Now: today.Add(14 * time.Hour)})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	if len(res.Alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(res.Alerts))
	}
	if res.Alerts[0].Level != rules.AlertWarning {
		t.Errorf("alert level = %q, want warning", res.Alerts[0].Level)
	}
	if len(res.Actions) != 0 {
		t.Errorf("spend spike is alert-only, got %d actions", len(res.Actions))
	}
}

func TestSpendSpikeNormalDayQuiet(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	src := facts.NewMemorySource()
	addSpendSeries(src, "c-1", today, []float64{10, 12, 11, 9, 10, 11, 10}, 11)

	rule := spikeRule(rules.SpendSpikeParams{LookbackDays: 7, StdevMultiplier: 2, MinSpend: 5})
	res, err := (SpendSpike{}).Evaluate(context.Background(), rule, Input{Facts: src, Now: today.Add(14 * time.Hour)})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.Alerts) != 0 {
		t.Errorf("spend within the baseline should not alert, got %d", len(res.Alerts))
	}
}

func TestSpendSpikeBelowMinSpendQuiet(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	src := facts.NewMemorySource()
	// Tiny campaign: huge relative spike, absolute spend under min_spend.
	addSpendSeries(src, "c-1", today, []float64{0.10, 0.12, 0.11, 0.10}, 1)

	rule := spikeRule(rules.SpendSpikeParams{LookbackDays: 7, StdevMultiplier: 2, MinSpend: 5})
	res, err := (SpendSpike{}).Evaluate(context.Background(), rule, Input{Facts: src, Now: today.Add(14 * time.Hour)})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.Alerts) != 0 {
		t.Errorf("spike below min_spend should be suppressed, got %d alerts", len(res.Alerts))
	}
}

func TestSpendSpikeInsufficientBaseline(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	src := facts.NewMemorySource()
	// Only 2 prior days, below the 3-day minimum.
	addSpendSeries(src, "c-1", today, []float64{10, 10}, 100)

	rule := spikeRule(rules.SpendSpikeParams{LookbackDays: 7, StdevMultiplier: 2, MinSpend: 5})
	res, err := (SpendSpike{}).Evaluate(context.Background(), rule, Input{Facts: src, Now: today.Add(14 * time.Hour)})
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(res.Alerts) != 0 {
		t.Errorf("campaign with too few baseline days should not alert, got %d", len(res.Alerts))
	}
}

func TestMeanStdev(t *testing.T) {
	mean, stdev := meanStdev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Errorf("mean = %v, want 5", mean)
	}
	if stdev != 2 {
		t.Errorf("stdev = %v, want 2 (population)", stdev)
	}

	mean, stdev = meanStdev(nil)
	if mean != 0 || stdev != 0 {
		t.Errorf("empty input should give 0,0, got %v,%v", mean, stdev)
	}
}
