// Package evaluator contains one pure evaluator per rule type. An evaluator
// turns (rule, recent fact window) into candidate alerts and actions; it
// performs no persistence, no governance filtering, and no side effects
// beyond fact reads.
//
// Actions are only produced when the rule's mode is auto; dry_run and
// suggestion rules yield alerts alone. Every candidate action carries a
// deterministic idempotency key for the evaluation day, so re-running
// against unchanged facts is harmless.
//
// ForType binds each member of the closed rules.RuleType set to its
// evaluator in one place; an unknown type is an error, never a silent skip.
package evaluator
