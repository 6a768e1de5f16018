package engine

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNoRuleSource indicates the engine was built without a rule source.
	ErrNoRuleSource = errors.New("no rule source configured")

	// ErrNoFactSource indicates the engine was built without a fact source.
	ErrNoFactSource = errors.New("no fact source configured")

	// ErrNoOutcomeStore indicates the engine was built without an outcome store.
	ErrNoOutcomeStore = errors.New("no outcome store configured")
)

// ConfigurationError indicates a rule that cannot be evaluated as stored:
// an unknown type, an unknown mode, or missing parameters. Configuration
// errors are the rule owner's to fix, not transient.
type ConfigurationError struct {
	RuleID  string
	Message string
	Cause   error
}

// Error returns the error message.
func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rule %s: configuration error: %s: %v", e.RuleID, e.Message, e.Cause)
	}
	return fmt.Sprintf("rule %s: configuration error: %s", e.RuleID, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// RuleError indicates one rule's evaluation failed inside a cycle. The
// cycle continues; the error surfaces in the cycle summary and the rule's
// run record.
type RuleError struct {
	RuleID   string
	TenantID string
	RuleType string
	Cause    error
}

// Error returns the error message.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s (%s, tenant %s): evaluation failed: %v", e.RuleID, e.RuleType, e.TenantID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RuleError) Unwrap() error {
	return e.Cause
}
