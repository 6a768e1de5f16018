package store

import (
	"context"
	"fmt"
	"time"

	"steward-hq/saturn/pkg/rules"
)

// Outcomes is the persistence surface the engine writes through.
type Outcomes interface {
	// InsertAlert persists an alert unconditionally.
	InsertAlert(ctx context.Context, alert *rules.Alert) error

	// InsertAction persists an action unless its idempotency key already
	// exists. Returns true when the row was inserted, false when an
	// earlier action with the same key suppressed it.
	InsertAction(ctx context.Context, action *rules.Action) (bool, error)

	// CountTenantActionsOn counts a tenant's actions created on the given
	// calendar day (UTC), across all rules.
	CountTenantActionsOn(ctx context.Context, tenantID string, day time.Time) (int, error)

	// CountRuleActionsOn counts one rule's actions created on the given
	// calendar day (UTC).
	CountRuleActionsOn(ctx context.Context, ruleID string, day time.Time) (int, error)

	// CreateRuleRun records the start of one rule's evaluation.
	CreateRuleRun(ctx context.Context, run *rules.RuleRun) error

	// FinalizeRuleRun records the outcome of a previously created run.
	FinalizeRuleRun(ctx context.Context, run *rules.RuleRun) error

	// Close releases backend resources.
	Close() error
}

// Pruner removes aged rows; backends implement it for retention scheduling.
type Pruner interface {
	// PruneBefore deletes alerts and rule runs created before the cutoff
	// and returns how many rows were removed. Actions are never pruned
	// here; the applier owns their lifecycle.
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// StorageError wraps a backend failure with operation context.
type StorageError struct {
	Backend string
	Op      string
	Cause   error
}

// Error returns the error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %s failed: %v", e.Backend, e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// dayBounds returns the UTC [start, end) instants of day's calendar date.
func dayBounds(day time.Time) (time.Time, time.Time) {
	d := day.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
