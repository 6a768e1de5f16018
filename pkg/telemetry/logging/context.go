package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// CycleIDKey is the context key for cycle identifiers.
	CycleIDKey contextKey = "cycle_id"

	// TenantIDKey is the context key for tenant identifiers.
	TenantIDKey contextKey = "tenant_id"

	// RuleIDKey is the context key for rule identifiers.
	RuleIDKey contextKey = "rule_id"
)

// WithCycleID adds a cycle ID to the context.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, CycleIDKey, cycleID)
}

// GetCycleID retrieves the cycle ID from the context.
func GetCycleID(ctx context.Context) string {
	if cycleID, ok := ctx.Value(CycleIDKey).(string); ok {
		return cycleID
	}
	return ""
}

// WithTenantID adds a tenant ID to the context.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// GetTenantID retrieves the tenant ID from the context.
func GetTenantID(ctx context.Context) string {
	if tenantID, ok := ctx.Value(TenantIDKey).(string); ok {
		return tenantID
	}
	return ""
}

// WithRuleID adds a rule ID to the context.
func WithRuleID(ctx context.Context, ruleID string) context.Context {
	return context.WithValue(ctx, RuleIDKey, ruleID)
}

// GetRuleID retrieves the rule ID from the context.
func GetRuleID(ctx context.Context) string {
	if ruleID, ok := ctx.Value(RuleIDKey).(string); ok {
		return ruleID
	}
	return ""
}

// ContextFields extracts the known log fields from a context as alternating
// key/value args for slog.
func ContextFields(ctx context.Context) []any {
	var args []any
	if v := GetCycleID(ctx); v != "" {
		args = append(args, string(CycleIDKey), v)
	}
	if v := GetTenantID(ctx); v != "" {
		args = append(args, string(TenantIDKey), v)
	}
	if v := GetRuleID(ctx); v != "" {
		args = append(args, string(RuleIDKey), v)
	}
	return args
}
