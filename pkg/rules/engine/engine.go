package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"steward-hq/saturn/pkg/facts"
	"steward-hq/saturn/pkg/governance"
	"steward-hq/saturn/pkg/rules"
	"steward-hq/saturn/pkg/rules/evaluator"
	"steward-hq/saturn/pkg/store"
	"steward-hq/saturn/pkg/telemetry/logging"
	"steward-hq/saturn/pkg/telemetry/metrics"
)

// Gate names used in skip telemetry.
const (
	gateKillSwitch  = "kill_switch"
	gateEntitlement = "entitlement"
	gateThrottle    = "throttle"
)

// Config assembles an Engine from its collaborators.
type Config struct {
	// Rules provides the enabled rules to evaluate each cycle.
	Rules rules.Source

	// Facts provides the performance fact window evaluators read.
	Facts facts.Source

	// Outcomes persists alerts, actions, and rule runs.
	Outcomes store.Outcomes

	// Governance provides tenant settings, protected entities, and plans.
	Governance governance.Source

	// Logger receives structured cycle telemetry. Defaults to slog.Default.
	Logger *slog.Logger

	// Metrics receives Prometheus instrumentation. Optional.
	Metrics *metrics.Metrics

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Engine orchestrates evaluation cycles: it gates each enabled rule through
// kill-switch, entitlement, and throttle checks, dispatches the surviving
// rules to their evaluators, vets candidate actions through governance, and
// persists the outcomes.
//
// Rules are processed strictly sequentially within a cycle so per-tenant
// quota accounting stays coherent without locking.
type Engine struct {
	rules      rules.Source
	facts      facts.Source
	outcomes   store.Outcomes
	governance governance.Source
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// New creates an Engine and validates its required collaborators.
func New(cfg Config) (*Engine, error) {
	if cfg.Rules == nil {
		return nil, ErrNoRuleSource
	}
	if cfg.Facts == nil {
		return nil, ErrNoFactSource
	}
	if cfg.Outcomes == nil {
		return nil, ErrNoOutcomeStore
	}
	if cfg.Governance == nil {
		return nil, fmt.Errorf("no governance source configured")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		rules:      cfg.Rules,
		facts:      cfg.Facts,
		outcomes:   cfg.Outcomes,
		governance: cfg.Governance,
		logger:     logger.With("component", "engine"),
		metrics:    cfg.Metrics,
		now:        now,
	}, nil
}

// CycleError records one rule's failure within an otherwise completed cycle.
type CycleError struct {
	RuleID  string
	Message string
}

// CycleSummary is the aggregate outcome of one evaluation cycle.
type CycleSummary struct {
	CycleID    string
	StartedAt  time.Time
	FinishedAt time.Time

	// ProcessedRules counts rules that reached their evaluator.
	ProcessedRules int

	// SkippedRules counts rules filtered by a pre-evaluation gate.
	SkippedRules int

	TotalAlerts  int
	TotalActions int

	Errors []CycleError
}

// RunCycle evaluates every enabled rule once.
//
// A failing rule never aborts the cycle: its error lands in the summary and
// its run record, and processing continues with the next rule. RunCycle
// itself errors only when the rule list cannot be loaded at all.
func (e *Engine) RunCycle(ctx context.Context) (CycleSummary, error) {
	started := e.now()
	summary := CycleSummary{
		CycleID:   uuid.NewString(),
		StartedAt: started,
	}

	ctx = logging.WithCycleID(ctx, summary.CycleID)
	logger := e.logger.With("cycle_id", summary.CycleID)
	logger.Info("cycle started")

	enabled, err := e.rules.ListEnabled(ctx)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordCycle("error", e.now().Sub(started).Seconds())
		}
		return summary, fmt.Errorf("failed to list enabled rules: %w", err)
	}

	guard := governance.NewGuard(e.governance, e.outcomes, e.now)
	tenants := make(map[string]bool)

	for _, rule := range enabled {
		if ctx.Err() != nil {
			summary.Errors = append(summary.Errors, CycleError{Message: ctx.Err().Error()})
			break
		}
		tenants[rule.TenantID] = true
		e.processRule(ctx, logger, guard, rule, &summary)
	}

	e.reportQuotas(ctx, guard, tenants)

	summary.FinishedAt = e.now()
	if e.metrics != nil {
		e.metrics.RecordCycle("ok", summary.FinishedAt.Sub(started).Seconds())
	}
	logger.Info("cycle finished",
		"processed_rules", summary.ProcessedRules,
		"skipped_rules", summary.SkippedRules,
		"alerts", summary.TotalAlerts,
		"actions", summary.TotalActions,
		"errors", len(summary.Errors),
		"duration_ms", summary.FinishedAt.Sub(started).Milliseconds(),
	)
	return summary, nil
}

// processRule runs one rule through gates, evaluation, governance vetting,
// and persistence.
func (e *Engine) processRule(ctx context.Context, logger *slog.Logger, guard *governance.Guard, rule rules.AutomationRule, summary *CycleSummary) {
	ctx = logging.WithTenantID(logging.WithRuleID(ctx, rule.ID), rule.TenantID)
	ruleLogger := logger.With("rule_id", rule.ID, "rule_type", string(rule.Type), "tenant_id", rule.TenantID)

	skipped, err := e.gate(ctx, ruleLogger, guard, rule)
	if err != nil {
		// Governance reads failing means the engine cannot prove the rule
		// is allowed to run; the safe outcome is to not run it.
		ruleLogger.Error("governance check failed, rule skipped", "error", err)
		summary.Errors = append(summary.Errors, CycleError{RuleID: rule.ID, Message: err.Error()})
		summary.SkippedRules++
		return
	}
	if skipped {
		summary.SkippedRules++
		return
	}

	run := &rules.RuleRun{
		ID:        uuid.NewString(),
		RuleID:    rule.ID,
		TenantID:  rule.TenantID,
		CycleID:   summary.CycleID,
		StartedAt: e.now(),
	}
	if err := e.outcomes.CreateRuleRun(ctx, run); err != nil {
		ruleLogger.Error("failed to create rule run", "error", err)
		summary.Errors = append(summary.Errors, CycleError{RuleID: rule.ID, Message: err.Error()})
		return
	}

	evalStart := e.now()
	result, err := e.evaluate(ctx, rule)
	evalSeconds := e.now().Sub(evalStart).Seconds()

	if err != nil {
		ruleErr := &RuleError{RuleID: rule.ID, TenantID: rule.TenantID, RuleType: string(rule.Type), Cause: err}
		ruleLogger.Warn("rule evaluation failed, treating as empty", "error", err)
		if e.metrics != nil {
			e.metrics.RecordRuleError(string(rule.Type))
		}
		summary.Errors = append(summary.Errors, CycleError{RuleID: rule.ID, Message: ruleErr.Error()})

		run.Status = rules.RunError
		run.Error = err.Error()
		run.FinishedAt = e.now()
		if err := e.outcomes.FinalizeRuleRun(ctx, run); err != nil {
			ruleLogger.Error("failed to finalize rule run", "error", err)
		}
		summary.ProcessedRules++
		return
	}

	alerts, actions := e.persist(ctx, ruleLogger, guard, rule, result)

	run.Status = rules.RunSuccess
	run.AlertsCreated = alerts
	run.ActionsQueued = actions
	run.FinishedAt = e.now()
	if err := e.outcomes.FinalizeRuleRun(ctx, run); err != nil {
		ruleLogger.Error("failed to finalize rule run", "error", err)
	}

	if e.metrics != nil {
		e.metrics.RecordRuleEvaluated(string(rule.Type), evalSeconds)
	}
	summary.ProcessedRules++
	summary.TotalAlerts += alerts
	summary.TotalActions += actions

	ruleLogger.Debug("rule processed", "alerts", alerts, "actions", actions)
}

// gate applies the pre-evaluation checks in order: kill switch, plan
// entitlement, per-rule throttle. Gated-out rules get no run record; a
// debug log and a skip metric are the only trace.
func (e *Engine) gate(ctx context.Context, logger *slog.Logger, guard *governance.Guard, rule rules.AutomationRule) (bool, error) {
	pause, err := guard.IsAutomationPaused(ctx, rule.TenantID)
	if err != nil {
		return false, err
	}
	if pause.Paused {
		logger.Debug("rule skipped: automation paused", "reason", pause.Reason)
		if e.metrics != nil {
			e.metrics.RecordRuleSkipped(string(rule.Type), gateKillSwitch)
		}
		return true, nil
	}

	plan, err := guard.PlanFor(ctx, rule.TenantID)
	if err != nil {
		return false, err
	}
	if !plan.AllowsRuleType(rule.Type) {
		logger.Debug("rule skipped: plan does not cover rule type", "plan", string(plan))
		if e.metrics != nil {
			e.metrics.RecordRuleSkipped(string(rule.Type), gateEntitlement)
		}
		return true, nil
	}

	count, err := e.outcomes.CountRuleActionsOn(ctx, rule.ID, e.now())
	if err != nil {
		return false, err
	}
	if max := rule.Throttle.EffectiveMaxActionsPerDay(); count >= max {
		logger.Debug("rule skipped: daily action throttle reached", "count", count, "max", max)
		if e.metrics != nil {
			e.metrics.RecordRuleSkipped(string(rule.Type), gateThrottle)
		}
		return true, nil
	}

	return false, nil
}

// evaluate dispatches the rule to its evaluator with a panic bulkhead so a
// misbehaving evaluator degrades to a per-rule error instead of taking the
// process down.
func (e *Engine) evaluate(ctx context.Context, rule rules.AutomationRule) (result evaluator.Result, err error) {
	if verr := rule.Validate(); verr != nil {
		return evaluator.Result{}, &ConfigurationError{RuleID: rule.ID, Message: "invalid rule", Cause: verr}
	}

	eval, err := evaluator.ForType(rule.Type)
	if err != nil {
		return evaluator.Result{}, &ConfigurationError{RuleID: rule.ID, Message: "no evaluator for rule type", Cause: err}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluator panicked: %v", r)
		}
	}()

	return eval.Evaluate(ctx, rule, evaluator.Input{Facts: e.facts, Now: e.now()})
}

// persist vets candidate actions through governance, annotates alerts for
// entities that governance protected, and writes both through the outcome
// store. Returns the persisted alert and action counts.
func (e *Engine) persist(ctx context.Context, logger *slog.Logger, guard *governance.Guard, rule rules.AutomationRule, result evaluator.Result) (int, int) {
	now := e.now()

	// Vet actions first so protected-entity annotations land on the
	// alerts before they are written.
	protectedReasons := make(map[string]string)
	var kept []rules.Action

	if rule.Mode == rules.ModeAuto {
		for i := range result.Actions {
			action := &result.Actions[i]
			verdict, err := guard.FilterAndAdjust(ctx, action, e.currentBid(action))
			if err != nil {
				logger.Error("governance vetting failed, action dropped", "action_type", string(action.Type), "error", err)
				if e.metrics != nil {
					e.metrics.RecordActionDropped(string(action.Type), "governance_error")
				}
				continue
			}
			if !verdict.Keep {
				prot, _ := guard.IsEntityProtected(ctx, action.TenantID, action.Payload.Entity)
				reason := "quota"
				if prot.Protected {
					reason = "protected"
					protectedReasons[action.Payload.Entity.Key()] = verdict.DropReason
				}
				logger.Info("action dropped by governance",
					"action_type", string(action.Type),
					"entity", action.Payload.Entity.Key(),
					"reason", verdict.DropReason,
				)
				if e.metrics != nil {
					e.metrics.RecordActionDropped(string(action.Type), reason)
				}
				continue
			}

			if verdict.RequiresApproval {
				action.Status = rules.StatusPendingApproval
			}
			if action.Payload.GuardrailNote != "" && e.metrics != nil {
				e.metrics.RecordBidClamped(string(action.Type))
			}
			kept = append(kept, *action)
		}
	}

	alerts := 0
	for i := range result.Alerts {
		alert := &result.Alerts[i]
		alert.ID = uuid.NewString()
		alert.CreatedAt = now
		if reason, ok := protectedReasons[alert.Entity.Key()]; ok {
			if alert.Data == nil {
				alert.Data = make(map[string]string)
			}
			alert.Data["protected_reason"] = reason
		}
		if err := e.outcomes.InsertAlert(ctx, alert); err != nil {
			logger.Error("failed to persist alert", "error", err)
			continue
		}
		if e.metrics != nil {
			e.metrics.RecordAlert(string(rule.Type), string(alert.Level))
		}
		alerts++
	}

	actions := 0
	for i := range kept {
		action := &kept[i]
		action.ID = uuid.NewString()
		action.CreatedAt = now
		inserted, err := e.outcomes.InsertAction(ctx, action)
		if err != nil {
			logger.Error("failed to persist action", "error", err)
			continue
		}
		if !inserted {
			logger.Debug("action suppressed by idempotency key",
				"action_type", string(action.Type),
				"entity", action.Payload.Entity.Key(),
			)
			if e.metrics != nil {
				e.metrics.RecordActionDropped(string(action.Type), "duplicate")
			}
			continue
		}
		if e.metrics != nil {
			e.metrics.RecordActionQueued(string(action.Type), string(action.Status))
		}
		actions++
	}

	return alerts, actions
}

// currentBid resolves the entity's standing bid for relative-change
// guardrails. Newly created keywords and negatives have no standing bid.
func (e *Engine) currentBid(action *rules.Action) int64 {
	if action.Type == rules.ActionAdjustBid {
		if v, ok := action.Payload.TriggerMetrics["current_bid_micros"]; ok {
			return int64(v)
		}
	}
	return 0
}

// reportQuotas publishes remaining per-tenant quota after the cycle.
func (e *Engine) reportQuotas(ctx context.Context, guard *governance.Guard, tenants map[string]bool) {
	if e.metrics == nil {
		return
	}
	for tenantID := range tenants {
		quota, err := guard.CheckActionQuota(ctx, tenantID)
		if err != nil {
			continue
		}
		remaining := quota.Limit - quota.Used
		if remaining < 0 {
			remaining = 0
		}
		e.metrics.SetQuotaRemaining(tenantID, float64(remaining))
	}
}
