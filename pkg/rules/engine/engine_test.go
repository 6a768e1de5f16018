package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"steward-hq/saturn/pkg/facts"
	"steward-hq/saturn/pkg/governance"
	"steward-hq/saturn/pkg/rules"
	"steward-hq/saturn/pkg/store"
)

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

// fixture bundles the in-memory collaborators behind one engine.
type fixture struct {
	rules *rules.MemorySource
	facts *facts.MemorySource
	store *store.MemoryStore
	gov   *governance.MemorySource
	eng   *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rules: rules.NewMemorySource(),
		facts: facts.NewMemorySource(),
		store: store.NewMemoryStore(),
		gov:   governance.NewMemorySource(),
	}

	eng, err := New(Config{
		Rules:      f.rules,
		Facts:      f.facts,
		Outcomes:   f.store,
		Governance: f.gov,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	f.eng = eng
	return f
}

// addDepletedBudget seeds one campaign at 90% budget usage.
func (f *fixture) addDepletedBudget(campaignID string) {
	f.facts.AddBudgetUsage(facts.BudgetUsage{
		TenantID:     "tenant-1",
		CampaignID:   campaignID,
		BudgetMicros: 100_000_000,
		SpendMicros:  90_000_000,
		ObservedAt:   testNow,
	})
}

func budgetAutoRule(id string) rules.AutomationRule {
	return rules.AutomationRule{
		ID:              id,
		TenantID:        "tenant-1",
		Name:            "budget watch",
		Type:            rules.RuleBudgetDepletion,
		Mode:            rules.ModeAuto,
		Enabled:         true,
		BudgetDepletion: &rules.BudgetDepletionParams{PercentThreshold: 80},
	}
}

func TestRunCycleHappyPath(t *testing.T) {
	f := newFixture(t)
	f.addDepletedBudget("c-1")
	f.rules.Add(budgetAutoRule("r-1"))

	summary, err := f.eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error: %v", err)
	}

	if summary.ProcessedRules != 1 || summary.SkippedRules != 0 {
		t.Errorf("processed=%d skipped=%d, want 1/0", summary.ProcessedRules, summary.SkippedRules)
	}
	if summary.TotalAlerts != 1 || summary.TotalActions != 1 {
		t.Errorf("alerts=%d actions=%d, want 1/1", summary.TotalAlerts, summary.TotalActions)
	}
	if summary.CycleID == "" {
		t.Error("cycle should carry an id")
	}

	actions := f.store.Actions()
	if len(actions) != 1 {
		t.Fatalf("store holds %d actions, want 1", len(actions))
	}
	if actions[0].Status != rules.StatusQueued {
		t.Errorf("action status = %q, want queued", actions[0].Status)
	}
	if actions[0].ID == "" || actions[0].CreatedAt.IsZero() {
		t.Error("persisted action should have id and timestamp assigned")
	}

	runs := f.store.Runs()
	if len(runs) != 1 {
		t.Fatalf("expected 1 rule run, got %d", len(runs))
	}
	if runs[0].Status != rules.RunSuccess || runs[0].AlertsCreated != 1 || runs[0].ActionsQueued != 1 {
		t.Errorf("run record wrong: %+v", runs[0])
	}
}

func TestRunCycleKillSwitch(t *testing.T) {
	f := newFixture(t)
	f.addDepletedBudget("c-1")
	f.rules.Add(budgetAutoRule("r-1"))
	f.gov.SetSettings(&governance.Settings{
		TenantID:         "tenant-1",
		AutomationPaused: true,
		MaxActionsPerDay: 25,
	})

	summary, err := f.eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error: %v", err)
	}
	if summary.SkippedRules != 1 || summary.ProcessedRules != 0 {
		t.Errorf("paused tenant: skipped=%d processed=%d, want 1/0", summary.SkippedRules, summary.ProcessedRules)
	}
	if len(f.store.Alerts()) != 0 || len(f.store.Actions()) != 0 {
		t.Error("paused tenant should persist nothing")
	}
	// Gated-out rules get no run record at all.
	if len(f.store.Runs()) != 0 {
		t.Errorf("gated rule should not create a run, got %d", len(f.store.Runs()))
	}
}

func TestRunCycleEntitlementGate(t *testing.T) {
	f := newFixture(t)
	f.gov.SetPlan("tenant-1", governance.PlanFree)
	f.rules.Add(rules.AutomationRule{
		ID:       "r-harvest",
		TenantID: "tenant-1",
		Type:     rules.RuleSearchTermHarvest,
		Mode:     rules.ModeAuto,
		Enabled:  true,
		Harvest:  &rules.HarvestParams{},
	})
	f.rules.Add(budgetAutoRule("r-budget"))
	f.addDepletedBudget("c-1")

	summary, err := f.eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error: %v", err)
	}
	if summary.SkippedRules != 1 {
		t.Errorf("free plan should skip the harvest rule, skipped=%d", summary.SkippedRules)
	}
	if summary.ProcessedRules != 1 {
		t.Errorf("budget rule should still run on the free plan, processed=%d", summary.ProcessedRules)
	}
}

func TestRunCycleThrottleGate(t *testing.T) {
	f := newFixture(t)
	f.addDepletedBudget("c-1")
	rule := budgetAutoRule("r-1")
	rule.Throttle = rules.Throttle{MaxActionsPerDay: 2}
	f.rules.Add(rule)

	// Two actions from earlier invocations today exhaust the throttle.
	for _, key := range []string{"k-1", "k-2"} {
		if _, err := f.store.InsertAction(context.Background(), &rules.Action{
			ID: key, RuleID: "r-1", TenantID: "tenant-1",
			IdempotencyKey: key, CreatedAt: testNow.Add(-time.Hour),
		}); err != nil {
			t.Fatalf("seed InsertAction() error: %v", err)
		}
	}

	summary, err := f.eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error: %v", err)
	}
	if summary.SkippedRules != 1 || summary.ProcessedRules != 0 {
		t.Errorf("throttled rule: skipped=%d processed=%d, want 1/0", summary.SkippedRules, summary.ProcessedRules)
	}
}

func TestRunCycleDryRunPersistsNoActions(t *testing.T) {
	f := newFixture(t)
	f.addDepletedBudget("c-1")
	rule := budgetAutoRule("r-1")
	rule.Mode = rules.ModeDryRun
	f.rules.Add(rule)

	summary, err := f.eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error: %v", err)
	}
	if summary.TotalAlerts != 1 {
		t.Errorf("dry run should still persist alerts, got %d", summary.TotalAlerts)
	}
	if summary.TotalActions != 0 || len(f.store.Actions()) != 0 {
		t.Error("dry run must not persist actions")
	}
}

func TestRunCycleRuleErrorIsolation(t *testing.T) {
	f := newFixture(t)
	f.addDepletedBudget("c-1")

	broken := budgetAutoRule("r-broken")
	broken.BudgetDepletion = nil // fails validation at dispatch
	f.rules.Add(broken)
	f.rules.Add(budgetAutoRule("r-good"))

	summary, err := f.eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error: %v", err)
	}

	if len(summary.Errors) != 1 {
		t.Fatalf("expected 1 cycle error, got %d", len(summary.Errors))
	}
	if summary.Errors[0].RuleID != "r-broken" {
		t.Errorf("error attributed to %q, want r-broken", summary.Errors[0].RuleID)
	}
	if summary.TotalActions != 1 {
		t.Errorf("good rule should still act, actions=%d", summary.TotalActions)
	}

	// The broken rule's run is finalized with error status.
	var brokenRun *rules.RuleRun
	for _, r := range f.store.Runs() {
		if r.RuleID == "r-broken" {
			brokenRun = &r
			break
		}
	}
	if brokenRun == nil {
		t.Fatal("broken rule should still have a run record")
	}
	if brokenRun.Status != rules.RunError || brokenRun.Error == "" {
		t.Errorf("broken run record wrong: %+v", brokenRun)
	}
}

func TestRunCycleProtectedEntityAnnotatesAlert(t *testing.T) {
	f := newFixture(t)
	f.addDepletedBudget("c-1")
	f.rules.Add(budgetAutoRule("r-1"))
	f.gov.Protect("tenant-1", rules.EntityCampaign, "c-1", "brand campaign, hands off")

	summary, err := f.eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error: %v", err)
	}

	if summary.TotalActions != 0 || len(f.store.Actions()) != 0 {
		t.Error("protected entity must not receive actions")
	}
	alerts := f.store.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("alert should survive protection, got %d", len(alerts))
	}
	if alerts[0].Data["protected_reason"] != "brand campaign, hands off" {
		t.Errorf("alert should carry protected_reason, got %+v", alerts[0].Data)
	}
}

func TestRunCycleIdempotentRerun(t *testing.T) {
	f := newFixture(t)
	f.addDepletedBudget("c-1")
	f.rules.Add(budgetAutoRule("r-1"))

	first, err := f.eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("first RunCycle() error: %v", err)
	}
	if first.TotalActions != 1 {
		t.Fatalf("first cycle actions = %d, want 1", first.TotalActions)
	}

	second, err := f.eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("second RunCycle() error: %v", err)
	}
	if second.TotalActions != 0 {
		t.Errorf("same-day rerun should dedupe on idempotency key, actions=%d", second.TotalActions)
	}
	if len(f.store.Actions()) != 1 {
		t.Errorf("store holds %d actions after rerun, want 1", len(f.store.Actions()))
	}
	// Alerts are not deduplicated.
	if len(f.store.Alerts()) != 2 {
		t.Errorf("store holds %d alerts after rerun, want 2", len(f.store.Alerts()))
	}
}

func TestRunCycleApprovalThreshold(t *testing.T) {
	f := newFixture(t)
	f.addDepletedBudget("c-1") // $10 remaining -> estimated impact 10_000_000
	f.rules.Add(budgetAutoRule("r-1"))
	f.gov.SetSettings(&governance.Settings{
		TenantID:                   "tenant-1",
		MaxActionsPerDay:           25,
		RequireApprovalAboveMicros: 5_000_000,
	})

	summary, err := f.eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error: %v", err)
	}
	if summary.TotalActions != 1 {
		t.Fatalf("actions = %d, want 1", summary.TotalActions)
	}
	actions := f.store.Actions()
	if actions[0].Status != rules.StatusPendingApproval {
		t.Errorf("high-impact action status = %q, want pending_approval", actions[0].Status)
	}
}

func TestRunCycleTenantQuotaAcrossRules(t *testing.T) {
	f := newFixture(t)
	// Two depleted campaigns, tenant quota of 1.
	f.addDepletedBudget("c-1")
	f.addDepletedBudget("c-2")
	f.rules.Add(budgetAutoRule("r-1"))
	f.gov.SetSettings(&governance.Settings{TenantID: "tenant-1", MaxActionsPerDay: 1})

	summary, err := f.eng.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error: %v", err)
	}
	if summary.TotalActions != 1 {
		t.Errorf("tenant quota of 1 should cap actions, got %d", summary.TotalActions)
	}
	// Both alerts still land.
	if summary.TotalAlerts != 2 {
		t.Errorf("alerts = %d, want 2", summary.TotalAlerts)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New with no collaborators should fail")
	}
}
