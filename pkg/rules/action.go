package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// EntityType classifies the advertising object a mutation targets.
//
// Every action carries its entity type explicitly; governance filtering
// never infers it from the action name.
type EntityType string

const (
	EntityCampaign   EntityType = "campaign"
	EntityAdGroup    EntityType = "ad_group"
	EntityKeyword    EntityType = "keyword"
	EntitySearchTerm EntityType = "search_term"
)

// EntityRef identifies one advertising object within a tenant.
type EntityRef struct {
	Type EntityType `json:"type"`
	ID   string     `json:"id"`
}

// Key returns the canonical "type:id" form used in idempotency keys.
func (e EntityRef) Key() string {
	return string(e.Type) + ":" + e.ID
}

// ActionType identifies the mutation an action requests.
type ActionType string

const (
	ActionPauseCampaign ActionType = "pause_campaign"
	ActionCreateKeyword ActionType = "create_keyword"
	ActionAddNegative   ActionType = "add_negative"
	ActionAdjustBid     ActionType = "adjust_bid"
)

// ActionStatus is the lifecycle state of a queued action. The engine only
// ever writes StatusQueued and StatusPendingApproval; the external applier
// owns all later transitions.
type ActionStatus string

const (
	StatusQueued          ActionStatus = "queued"
	StatusPendingApproval ActionStatus = "pending_approval"
	StatusApplied         ActionStatus = "applied"
	StatusSkipped         ActionStatus = "skipped"
	StatusFailed          ActionStatus = "failed"
)

// AlertLevel is the display severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "info"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// Alert is an immutable, display-only notification produced by evaluation.
// Alerts never gate downstream behavior.
type Alert struct {
	ID       string
	RuleID   string
	TenantID string
	Entity   EntityRef
	Level    AlertLevel
	Title    string
	Message  string

	// Data is a snapshot of the metrics that triggered the alert, plus
	// annotations such as protected_reason. Values are stringified for a
	// stable wire/storage form.
	Data map[string]string

	CreatedAt time.Time
}

// ActionPayload carries everything the downstream applier needs to perform
// the mutation, plus audit context.
type ActionPayload struct {
	Entity EntityRef `json:"entity"`

	// Campaign and ad group context for keyword-level mutations. Empty
	// when Entity itself is the campaign.
	CampaignID string `json:"campaign_id,omitempty"`
	AdGroupID  string `json:"ad_group_id,omitempty"`

	// KeywordText is the term being created or negated.
	KeywordText string `json:"keyword_text,omitempty"`

	// MatchType is "exact" for harvested keywords, "negative_exact" for
	// pruned terms.
	MatchType string `json:"match_type,omitempty"`

	// Reason is the human-readable explanation shown in dashboards.
	Reason string `json:"reason"`

	// TriggerMetrics snapshots the numbers that tripped the rule.
	TriggerMetrics map[string]float64 `json:"trigger_metrics,omitempty"`

	// EstimatedImpactMicros is the rough daily spend affected by this
	// mutation, used for approval gating.
	EstimatedImpactMicros int64 `json:"estimated_impact_micros,omitempty"`

	// BidMicros is the proposed bid for create_keyword/adjust_bid.
	// Zero means the action carries no bid.
	BidMicros int64 `json:"bid_micros,omitempty"`

	// GuardrailNote records any bid adjustment made by governance.
	GuardrailNote string `json:"guardrail_note,omitempty"`
}

// Action is a vetted mutation request awaiting the external applier.
type Action struct {
	ID             string
	RuleID         string
	TenantID       string
	Type           ActionType
	Payload        ActionPayload
	IdempotencyKey string
	Status         ActionStatus
	CreatedAt      time.Time
}

// IdempotencyKey derives the deterministic per-day dedup key for an action.
//
// The key is the hex SHA-256 of the canonical
// "tenant|action_type|entity_type:entity_id|YYYY-MM-DD" tuple, so repeated
// evaluation within one calendar day always lands on the same key and the
// store's uniqueness guarantee rejects duplicates. Content addressing
// removes the collision risk a short string hash would carry.
func IdempotencyKey(tenantID string, at ActionType, entity EntityRef, day time.Time) string {
	canonical := fmt.Sprintf("%s|%s|%s|%s", tenantID, at, entity.Key(), day.UTC().Format("2006-01-02"))
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// RunStatus is the outcome of one rule's evaluation within a cycle.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// RuleRun is per-rule-per-cycle telemetry, created once gating passes and
// finalized when evaluation completes or fails.
type RuleRun struct {
	ID             string
	RuleID         string
	TenantID       string
	CycleID        string
	Status         RunStatus
	AlertsCreated  int
	ActionsQueued  int
	Error          string
	StartedAt      time.Time
	FinishedAt     time.Time
}
