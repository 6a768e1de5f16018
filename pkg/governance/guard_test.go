package governance

import (
	"context"
	"testing"
	"time"

	"steward-hq/saturn/pkg/rules"
)

// stubCounter returns a fixed stored action count.
type stubCounter struct {
	count int
	err   error
}

func (s stubCounter) CountTenantActionsOn(ctx context.Context, tenantID string, day time.Time) (int, error) {
	return s.count, s.err
}

func newTestGuard(src Source, stored int) *Guard {
	return NewGuard(src, stubCounter{count: stored}, func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	})
}

func TestSettingsForDefaultsWhenMissing(t *testing.T) {
	g := newTestGuard(NewMemorySource(), 0)

	s, err := g.SettingsFor(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("SettingsFor() error: %v", err)
	}
	if s.MaxBidChangePercent != DefaultMaxBidChangePercent {
		t.Errorf("MaxBidChangePercent = %v, want default %v", s.MaxBidChangePercent, DefaultMaxBidChangePercent)
	}
	if s.MaxActionsPerDay != DefaultMaxActionsPerDay {
		t.Errorf("MaxActionsPerDay = %d, want default %d", s.MaxActionsPerDay, DefaultMaxActionsPerDay)
	}
}

func TestIsAutomationPaused(t *testing.T) {
	src := NewMemorySource()
	src.SetSettings(&Settings{
		TenantID:               "tenant-1",
		AutomationPaused:       true,
		AutomationPausedReason: "quarterly freeze",
	})
	g := newTestGuard(src, 0)

	state, err := g.IsAutomationPaused(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("IsAutomationPaused() error: %v", err)
	}
	if !state.Paused || state.Reason != "quarterly freeze" {
		t.Errorf("got %+v, want paused with reason", state)
	}

	state, err = g.IsAutomationPaused(context.Background(), "tenant-2")
	if err != nil {
		t.Fatalf("IsAutomationPaused() error: %v", err)
	}
	if state.Paused {
		t.Error("tenant without settings should not be paused")
	}
}

func TestApplyBidGuardrails(t *testing.T) {
	src := NewMemorySource()
	src.SetSettings(&Settings{
		TenantID:            "tenant-1",
		MaxBidChangePercent: 30,
		MinBidMicros:        20_000,
		MaxBidMicros:        100_000_000,
	})

	tests := []struct {
		name     string
		current  int64
		proposed int64
		want     int64
		adjusted bool
	}{
		{"within bounds unchanged", 1_000_000, 1_200_000, 1_200_000, false},
		{"raise capped at 30 percent", 1_000_000, 2_000_000, 1_300_000, true},
		{"cut capped at 30 percent", 1_000_000, 100_000, 700_000, true},
		{"floor applied", 0, 5_000, 20_000, true},
		{"ceiling applied", 0, 500_000_000, 100_000_000, true},
		{"no current bid skips percent cap", 0, 50_000_000, 50_000_000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGuard(src, 0)
			adj, err := g.ApplyBidGuardrails(context.Background(), "tenant-1", tt.current, tt.proposed)
			if err != nil {
				t.Fatalf("ApplyBidGuardrails() error: %v", err)
			}
			if adj.AdjustedBidMicros != tt.want {
				t.Errorf("adjusted bid = %d, want %d", adj.AdjustedBidMicros, tt.want)
			}
			if adj.WasAdjusted != tt.adjusted {
				t.Errorf("WasAdjusted = %v, want %v", adj.WasAdjusted, tt.adjusted)
			}
			if tt.adjusted && adj.Reason == "" {
				t.Error("adjusted bid should carry a reason")
			}
		})
	}
}

func TestApplyBidGuardrailsPercentStepRespectsAbsoluteBounds(t *testing.T) {
	src := NewMemorySource()
	src.SetSettings(&Settings{
		TenantID:            "tenant-1",
		MaxBidChangePercent: 50,
		MinBidMicros:        900_000,
		MaxBidMicros:        100_000_000,
	})
	g := newTestGuard(src, 0)

	// A 50% cut of 1_600_000 would be 800_000, below the floor.
	adj, err := g.ApplyBidGuardrails(context.Background(), "tenant-1", 1_600_000, 100_000)
	if err != nil {
		t.Fatalf("ApplyBidGuardrails() error: %v", err)
	}
	if adj.AdjustedBidMicros != 900_000 {
		t.Errorf("adjusted bid = %d, want floor 900000", adj.AdjustedBidMicros)
	}
}

func TestCheckActionQuota(t *testing.T) {
	src := NewMemorySource()
	src.SetSettings(&Settings{TenantID: "tenant-1", MaxActionsPerDay: 5})

	g := newTestGuard(src, 3)
	q, err := g.CheckActionQuota(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("CheckActionQuota() error: %v", err)
	}
	if q.Exhausted {
		t.Errorf("3/5 should not be exhausted: %+v", q)
	}

	g = newTestGuard(src, 5)
	q, err = g.CheckActionQuota(context.Background(), "tenant-1")
	if err != nil {
		t.Fatalf("CheckActionQuota() error: %v", err)
	}
	if !q.Exhausted {
		t.Errorf("5/5 should be exhausted: %+v", q)
	}
}

func TestFilterAndAdjustProtectedEntity(t *testing.T) {
	src := NewMemorySource()
	src.Protect("tenant-1", rules.EntityCampaign, "c-1", "brand campaign")
	g := newTestGuard(src, 0)

	action := &rules.Action{
		TenantID: "tenant-1",
		Type:     rules.ActionPauseCampaign,
		Payload:  rules.ActionPayload{Entity: rules.EntityRef{Type: rules.EntityCampaign, ID: "c-1"}},
	}

	verdict, err := g.FilterAndAdjust(context.Background(), action, 0)
	if err != nil {
		t.Fatalf("FilterAndAdjust() error: %v", err)
	}
	if verdict.Keep {
		t.Fatal("protected entity should be dropped")
	}
	if verdict.DropReason != "brand campaign" {
		t.Errorf("drop reason = %q, want the protection reason", verdict.DropReason)
	}
}

func TestFilterAndAdjustQuotaCountsCycleActions(t *testing.T) {
	src := NewMemorySource()
	src.SetSettings(&Settings{TenantID: "tenant-1", MaxActionsPerDay: 2})
	g := newTestGuard(src, 0)

	mkAction := func(id string) *rules.Action {
		return &rules.Action{
			TenantID: "tenant-1",
			Type:     rules.ActionAddNegative,
			Payload:  rules.ActionPayload{Entity: rules.EntityRef{Type: rules.EntitySearchTerm, ID: id}},
		}
	}

	for i, id := range []string{"t1", "t2"} {
		verdict, err := g.FilterAndAdjust(context.Background(), mkAction(id), 0)
		if err != nil {
			t.Fatalf("FilterAndAdjust() #%d error: %v", i, err)
		}
		if !verdict.Keep {
			t.Fatalf("action #%d should pass, got drop: %s", i, verdict.DropReason)
		}
	}

	verdict, err := g.FilterAndAdjust(context.Background(), mkAction("t3"), 0)
	if err != nil {
		t.Fatalf("FilterAndAdjust() error: %v", err)
	}
	if verdict.Keep {
		t.Error("third action should hit the 2/day quota within the same cycle")
	}
}

func TestFilterAndAdjustBidAndApproval(t *testing.T) {
	src := NewMemorySource()
	src.SetSettings(&Settings{
		TenantID:                   "tenant-1",
		MaxBidChangePercent:        30,
		MinBidMicros:               20_000,
		MaxBidMicros:               100_000_000,
		MaxActionsPerDay:           25,
		RequireApprovalAboveMicros: 50_000_000,
	})
	g := newTestGuard(src, 0)

	action := &rules.Action{
		TenantID: "tenant-1",
		Type:     rules.ActionCreateKeyword,
		Payload: rules.ActionPayload{
			Entity:                rules.EntityRef{Type: rules.EntitySearchTerm, ID: "ag-1:term"},
			BidMicros:             200_000_000, // over the absolute ceiling
			EstimatedImpactMicros: 80_000_000,  // over the approval threshold
		},
	}

	verdict, err := g.FilterAndAdjust(context.Background(), action, 0)
	if err != nil {
		t.Fatalf("FilterAndAdjust() error: %v", err)
	}
	if !verdict.Keep {
		t.Fatalf("action should be kept, got drop: %s", verdict.DropReason)
	}
	if !verdict.RequiresApproval {
		t.Error("impact above threshold should require approval")
	}
	if action.Payload.BidMicros != 100_000_000 {
		t.Errorf("bid = %d, want clamped 100000000", action.Payload.BidMicros)
	}
	if action.Payload.GuardrailNote == "" {
		t.Error("clamped bid should leave a guardrail note on the payload")
	}
}
