package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics contains Prometheus collectors for the rule engine.
type Metrics struct {
	registry *prometheus.Registry

	// Cycle lifecycle
	cyclesTotal   *prometheus.CounterVec
	cycleDuration prometheus.Histogram

	// Per-rule evaluation
	rulesEvaluated *prometheus.CounterVec
	rulesSkipped   *prometheus.CounterVec
	ruleErrors     *prometheus.CounterVec
	ruleDuration   *prometheus.HistogramVec

	// Outcomes
	alertsEmitted  *prometheus.CounterVec
	actionsQueued  *prometheus.CounterVec
	actionsDropped *prometheus.CounterVec
	bidsClamped    *prometheus.CounterVec

	// Governance state
	quotaRemaining *prometheus.GaugeVec
}

// NewMetrics creates a Metrics instance backed by its own registry.
//
// A dedicated registry keeps engine metrics isolated from anything else
// running in the process and makes the set testable.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := func(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
		c := prometheus.NewCounterVec(opts, labels)
		registry.MustRegister(c)
		return c
	}

	m := &Metrics{
		registry: registry,

		cyclesTotal: factory(prometheus.CounterOpts{
			Name: "saturn_cycles_total",
			Help: "Total number of evaluation cycles run",
		}, []string{"result"}),

		rulesEvaluated: factory(prometheus.CounterOpts{
			Name: "saturn_rules_evaluated_total",
			Help: "Total number of rule evaluations completed",
		}, []string{"rule_type"}),

		rulesSkipped: factory(prometheus.CounterOpts{
			Name: "saturn_rules_skipped_total",
			Help: "Total number of rules skipped by a pre-evaluation gate",
		}, []string{"rule_type", "gate"}),

		ruleErrors: factory(prometheus.CounterOpts{
			Name: "saturn_rule_errors_total",
			Help: "Total number of rule evaluations that failed",
		}, []string{"rule_type"}),

		alertsEmitted: factory(prometheus.CounterOpts{
			Name: "saturn_alerts_emitted_total",
			Help: "Total number of alerts persisted",
		}, []string{"rule_type", "level"}),

		actionsQueued: factory(prometheus.CounterOpts{
			Name: "saturn_actions_queued_total",
			Help: "Total number of actions persisted",
		}, []string{"action_type", "status"}),

		actionsDropped: factory(prometheus.CounterOpts{
			Name: "saturn_actions_dropped_total",
			Help: "Total number of actions dropped before persistence",
		}, []string{"action_type", "reason"}),

		bidsClamped: factory(prometheus.CounterOpts{
			Name: "saturn_bids_clamped_total",
			Help: "Total number of bid values adjusted by guardrails",
		}, []string{"action_type"}),
	}

	m.cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "saturn_cycle_duration_seconds",
		Help:    "Duration of full evaluation cycles",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	registry.MustRegister(m.cycleDuration)

	m.ruleDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "saturn_rule_duration_seconds",
		Help:    "Duration of individual rule evaluations",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"rule_type"})
	registry.MustRegister(m.ruleDuration)

	m.quotaRemaining = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "saturn_tenant_quota_remaining",
		Help: "Remaining tenant-level action quota observed during the last cycle",
	}, []string{"tenant_id"})
	registry.MustRegister(m.quotaRemaining)

	return m
}

// RecordCycle records a completed cycle with its result ("ok" or "error")
// and duration in seconds.
func (m *Metrics) RecordCycle(result string, seconds float64) {
	m.cyclesTotal.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(seconds)
}

// RecordRuleEvaluated records a finished evaluation for a rule type.
func (m *Metrics) RecordRuleEvaluated(ruleType string, seconds float64) {
	m.rulesEvaluated.WithLabelValues(ruleType).Inc()
	m.ruleDuration.WithLabelValues(ruleType).Observe(seconds)
}

// RecordRuleSkipped records a rule filtered out by a gate before
// evaluation (kill_switch, entitlement, throttle).
func (m *Metrics) RecordRuleSkipped(ruleType, gate string) {
	m.rulesSkipped.WithLabelValues(ruleType, gate).Inc()
}

// RecordRuleError records a failed rule evaluation.
func (m *Metrics) RecordRuleError(ruleType string) {
	m.ruleErrors.WithLabelValues(ruleType).Inc()
}

// RecordAlert records a persisted alert.
func (m *Metrics) RecordAlert(ruleType, level string) {
	m.alertsEmitted.WithLabelValues(ruleType, level).Inc()
}

// RecordActionQueued records a persisted action and its final status.
func (m *Metrics) RecordActionQueued(actionType, status string) {
	m.actionsQueued.WithLabelValues(actionType, status).Inc()
}

// RecordActionDropped records an action filtered out by governance.
func (m *Metrics) RecordActionDropped(actionType, reason string) {
	m.actionsDropped.WithLabelValues(actionType, reason).Inc()
}

// RecordBidClamped records a bid adjusted to stay within guardrails.
func (m *Metrics) RecordBidClamped(actionType string) {
	m.bidsClamped.WithLabelValues(actionType).Inc()
}

// SetQuotaRemaining reports the remaining daily action quota for a tenant.
func (m *Metrics) SetQuotaRemaining(tenantID string, remaining float64) {
	m.quotaRemaining.WithLabelValues(tenantID).Set(remaining)
}

// Registry exposes the underlying registry for testing.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
