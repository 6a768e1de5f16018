// Package governance enforces the multi-tenant safety invariants that stand
// between a rule evaluator's candidate actions and the action queue: the
// per-tenant kill switch, protected entities, daily action quotas, bid
// guardrails, and approval thresholds.
//
// A Guard is created fresh for each engine cycle and discarded afterwards.
// It caches governance reads (settings, protected entities, plan tier) per
// tenant for the duration of that one cycle only, so stale governance data
// can never leak between cycles or tenants.
package governance
