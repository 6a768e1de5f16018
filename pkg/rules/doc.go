// Package rules defines the automation rule domain model shared across the
// Saturn engine: rule records with their typed per-type parameters, the
// alerts and mutation actions that evaluation produces, and per-cycle rule
// run telemetry.
//
// Rule types form a closed set. Each RuleType value binds to exactly one
// parameter struct and one evaluator; unknown values are rejected when a rule
// is validated, never silently skipped at evaluation time.
//
// Monetary values are int64 micros (1e-6 of a currency unit) throughout, so
// no floating-point money ever crosses a package boundary. Ratios derived
// from money (usage percentages, ACoS) are float64 because they are
// display/threshold values, not stored amounts.
package rules
