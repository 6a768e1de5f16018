// Package engine orchestrates rule evaluation cycles.
//
// Each cycle loads every enabled rule and processes it sequentially:
//
//	For each enabled rule:
//	  Kill switch paused?      → skip (no run record)
//	  Plan covers rule type?   → skip otherwise
//	  Daily throttle reached?  → skip
//	  Create rule run
//	  Dispatch to evaluator (panic bulkhead)
//	  Vet candidate actions through governance
//	  Persist alerts, then surviving actions (idempotency-deduplicated)
//	  Finalize rule run
//
// A failing rule is isolated: its error is recorded in the cycle summary
// and its run record, and the cycle continues. Alerts are always persisted;
// actions are persisted only for auto-mode rules and only after governance
// vetting (protected entities, daily quotas, bid guardrails, approval
// thresholds).
package engine
