package governance

import (
	"context"
	"fmt"
	"math"
	"time"

	"steward-hq/saturn/pkg/rules"
)

// ActionCounter reports how many actions a tenant has already had queued or
// applied on a given calendar day. The outcome store implements this.
type ActionCounter interface {
	CountTenantActionsOn(ctx context.Context, tenantID string, day time.Time) (int, error)
}

// PauseState is the result of a kill-switch check.
type PauseState struct {
	Paused bool
	Reason string
}

// ProtectionState is the result of a protected-entity check.
type ProtectionState struct {
	Protected bool
	Reason    string
}

// QuotaState compares today's action count against the tenant cap.
type QuotaState struct {
	Used      int
	Limit     int
	Exhausted bool
}

// BidAdjustment is the result of applying bid guardrails.
type BidAdjustment struct {
	AdjustedBidMicros int64
	WasAdjusted       bool
	Reason            string
}

// FilterVerdict is the outcome of vetting one candidate action.
type FilterVerdict struct {
	// Keep is false when the action must be dropped entirely.
	Keep bool

	// DropReason explains a Keep=false verdict.
	DropReason string

	// RequiresApproval marks actions to queue as pending_approval.
	RequiresApproval bool
}

// Guard answers governance questions for one engine cycle.
//
// Governance reads are cached per tenant for the Guard's lifetime; a Guard
// must not outlive the cycle that created it. Guards are used from a single
// goroutine (rules run strictly sequentially) and need no locking.
type Guard struct {
	source  Source
	counter ActionCounter
	now     func() time.Time

	settings  map[string]*Settings
	protected map[string]map[string]string // tenant -> entity key -> reason
	plans     map[string]PlanTier

	// queuedThisCycle tracks actions already accepted in this cycle so
	// the quota stays coherent without re-reading the store per action.
	queuedThisCycle map[string]int
}

// NewGuard creates a Guard scoped to one cycle.
func NewGuard(source Source, counter ActionCounter, now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{
		source:          source,
		counter:         counter,
		now:             now,
		settings:        make(map[string]*Settings),
		protected:       make(map[string]map[string]string),
		plans:           make(map[string]PlanTier),
		queuedThisCycle: make(map[string]int),
	}
}

// SettingsFor returns the tenant's settings, loading and caching on first
// use and substituting defaults when no row exists.
func (g *Guard) SettingsFor(ctx context.Context, tenantID string) (*Settings, error) {
	if s, ok := g.settings[tenantID]; ok {
		return s, nil
	}

	s, err := g.source.Settings(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load governance settings for tenant %s: %w", tenantID, err)
	}
	if s == nil {
		s = DefaultSettings(tenantID)
	}

	g.settings[tenantID] = s
	return s, nil
}

// IsAutomationPaused checks the tenant kill switch.
func (g *Guard) IsAutomationPaused(ctx context.Context, tenantID string) (PauseState, error) {
	s, err := g.SettingsFor(ctx, tenantID)
	if err != nil {
		return PauseState{}, err
	}
	return PauseState{Paused: s.AutomationPaused, Reason: s.AutomationPausedReason}, nil
}

// IsEntityProtected checks the tenant's protected-entity list.
func (g *Guard) IsEntityProtected(ctx context.Context, tenantID string, entity rules.EntityRef) (ProtectionState, error) {
	set, ok := g.protected[tenantID]
	if !ok {
		list, err := g.source.ProtectedEntities(ctx, tenantID)
		if err != nil {
			return ProtectionState{}, fmt.Errorf("failed to load protected entities for tenant %s: %w", tenantID, err)
		}
		set = make(map[string]string, len(list))
		for _, pe := range list {
			set[rules.EntityRef{Type: pe.EntityType, ID: pe.EntityID}.Key()] = pe.Reason
		}
		g.protected[tenantID] = set
	}

	reason, found := set[entity.Key()]
	return ProtectionState{Protected: found, Reason: reason}, nil
}

// PlanFor returns the tenant's subscription tier, cached per cycle.
func (g *Guard) PlanFor(ctx context.Context, tenantID string) (PlanTier, error) {
	if p, ok := g.plans[tenantID]; ok {
		return p, nil
	}
	p, err := g.source.Plan(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("failed to load plan for tenant %s: %w", tenantID, err)
	}
	g.plans[tenantID] = p
	return p, nil
}

// CheckActionQuota compares today's action count (stored plus accepted this
// cycle) against the tenant's max_actions_per_day.
//
// The stored count is a best-effort, non-transactional read; overlapping
// invocations rely on idempotency keys, not the quota, for dedup.
func (g *Guard) CheckActionQuota(ctx context.Context, tenantID string) (QuotaState, error) {
	s, err := g.SettingsFor(ctx, tenantID)
	if err != nil {
		return QuotaState{}, err
	}

	stored, err := g.counter.CountTenantActionsOn(ctx, tenantID, g.now())
	if err != nil {
		return QuotaState{}, fmt.Errorf("failed to count actions for tenant %s: %w", tenantID, err)
	}

	used := stored + g.queuedThisCycle[tenantID]
	limit := s.MaxActionsPerDay
	return QuotaState{
		Used:      used,
		Limit:     limit,
		Exhausted: limit > 0 && used >= limit,
	}, nil
}

// ApplyBidGuardrails clamps a proposed bid.
//
// Clamp order: first the absolute [MinBidMicros, MaxBidMicros] bounds; then,
// when a current bid exists, the relative MaxBidChangePercent bound in the
// direction of the proposal; then the absolute bounds again, since the
// percentage step can land outside them.
func (g *Guard) ApplyBidGuardrails(ctx context.Context, tenantID string, currentBidMicros, proposedBidMicros int64) (BidAdjustment, error) {
	s, err := g.SettingsFor(ctx, tenantID)
	if err != nil {
		return BidAdjustment{}, err
	}

	adjusted := clampAbsolute(proposedBidMicros, s.MinBidMicros, s.MaxBidMicros)
	reason := ""
	if adjusted != proposedBidMicros {
		reason = fmt.Sprintf("bid clamped to absolute bounds [%d, %d] micros", s.MinBidMicros, s.MaxBidMicros)
	}

	if currentBidMicros > 0 && s.MaxBidChangePercent > 0 {
		deltaPct := math.Abs(float64(adjusted-currentBidMicros)) / float64(currentBidMicros) * 100
		if deltaPct > s.MaxBidChangePercent {
			step := int64(math.Round(float64(currentBidMicros) * s.MaxBidChangePercent / 100))
			if adjusted > currentBidMicros {
				adjusted = currentBidMicros + step
			} else {
				adjusted = currentBidMicros - step
			}
			reason = fmt.Sprintf("bid change capped at %.0f%% of current bid %d micros", s.MaxBidChangePercent, currentBidMicros)
			adjusted = clampAbsolute(adjusted, s.MinBidMicros, s.MaxBidMicros)
		}
	}

	return BidAdjustment{
		AdjustedBidMicros: adjusted,
		WasAdjusted:       adjusted != proposedBidMicros,
		Reason:            reason,
	}, nil
}

// RequiresApproval reports whether an estimated impact crosses the tenant's
// approval threshold.
func (g *Guard) RequiresApproval(ctx context.Context, tenantID string, impactMicros int64) (bool, error) {
	s, err := g.SettingsFor(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return s.RequireApprovalAboveMicros > 0 && impactMicros > s.RequireApprovalAboveMicros, nil
}

// FilterAndAdjust vets one candidate action in place.
//
// Protected entities drop the action (the corresponding alert stays).
// Exhausted quotas drop the action. Bids are replaced with their
// guardrail-adjusted value and the adjustment reason is attached to the
// payload for auditability. High-impact actions are flagged for approval.
// Accepted actions count against the tenant's quota for the rest of the
// cycle.
func (g *Guard) FilterAndAdjust(ctx context.Context, action *rules.Action, currentBidMicros int64) (FilterVerdict, error) {
	prot, err := g.IsEntityProtected(ctx, action.TenantID, action.Payload.Entity)
	if err != nil {
		return FilterVerdict{}, err
	}
	if prot.Protected {
		reason := prot.Reason
		if reason == "" {
			reason = "entity is protected from automation"
		}
		return FilterVerdict{Keep: false, DropReason: reason}, nil
	}

	quota, err := g.CheckActionQuota(ctx, action.TenantID)
	if err != nil {
		return FilterVerdict{}, err
	}
	if quota.Exhausted {
		return FilterVerdict{
			Keep:       false,
			DropReason: fmt.Sprintf("daily action quota exhausted (%d/%d)", quota.Used, quota.Limit),
		}, nil
	}

	if action.Payload.BidMicros > 0 {
		adj, err := g.ApplyBidGuardrails(ctx, action.TenantID, currentBidMicros, action.Payload.BidMicros)
		if err != nil {
			return FilterVerdict{}, err
		}
		if adj.WasAdjusted {
			action.Payload.BidMicros = adj.AdjustedBidMicros
			action.Payload.GuardrailNote = adj.Reason
		}
	}

	approval, err := g.RequiresApproval(ctx, action.TenantID, action.Payload.EstimatedImpactMicros)
	if err != nil {
		return FilterVerdict{}, err
	}

	g.queuedThisCycle[action.TenantID]++
	return FilterVerdict{Keep: true, RequiresApproval: approval}, nil
}

// clampAbsolute bounds v to [min, max]; a zero bound is treated as unset.
func clampAbsolute(v, min, max int64) int64 {
	if min > 0 && v < min {
		return min
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
