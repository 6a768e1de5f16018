// Package metrics provides Prometheus instrumentation for the rule
// engine: cycle and rule evaluation counters, gate skip counters,
// alert/action outcome counters, and evaluation latency histograms.
//
// All metric names carry the saturn_ prefix. The collectors live in a
// dedicated registry exposed over HTTP via Handler.
package metrics
