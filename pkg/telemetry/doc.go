// Package telemetry groups Saturn's observability concerns.
//
// # Components
//
//   - logging: structured logging on log/slog with JSON and text handlers
//   - metrics: Prometheus collectors for cycles, rule evaluation, gate
//     skips, alert/action outcomes, and tenant quotas
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	m := metrics.NewMetrics()
//	http.Handle("/metrics", m.Handler())
package telemetry
