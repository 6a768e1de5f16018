package evaluator

import (
	"context"
	"fmt"
	"time"

	"steward-hq/saturn/pkg/facts"
	"steward-hq/saturn/pkg/rules"
)

// Input is the fact window an evaluator reads from.
type Input struct {
	// Facts is the tenant-scoped performance fact source.
	Facts facts.Source

	// Now is the evaluation instant. The evaluation calendar day (UTC)
	// derived from it anchors idempotency keys.
	Now time.Time
}

// Day returns midnight UTC of the evaluation day.
func (in Input) Day() time.Time {
	d := in.Now.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// Result is the candidate output of one rule evaluation, before governance
// filtering. Alert and action IDs and creation times are assigned by the
// engine at persistence time.
type Result struct {
	Alerts  []rules.Alert
	Actions []rules.Action
}

// Evaluator computes candidate alerts and actions for one rule type.
//
// Evaluate must be pure apart from fact reads: same rule, same facts, same
// instant gives the same result. A fact read failure is returned as an
// error; the engine treats it as an empty evaluation for the cycle.
type Evaluator interface {
	Evaluate(ctx context.Context, rule rules.AutomationRule, in Input) (Result, error)
}

// ForType returns the evaluator bound to a rule type.
//
// The switch covers the closed rule-type set exhaustively; extending
// rules.RuleType without extending this switch fails every rule of the new
// type at dispatch, which the engine reports as a configuration problem.
func ForType(rt rules.RuleType) (Evaluator, error) {
	switch rt {
	case rules.RuleBudgetDepletion:
		return BudgetDepletion{}, nil
	case rules.RuleSpendSpike:
		return SpendSpike{}, nil
	case rules.RuleSearchTermHarvest:
		return SearchTermHarvest{}, nil
	case rules.RuleSearchTermPrune:
		return SearchTermPrune{}, nil
	}
	return nil, fmt.Errorf("no evaluator bound for rule type %q", rt)
}

// microsToCurrency converts int64 micros to currency units for threshold
// math and display.
func microsToCurrency(m int64) float64 {
	return float64(m) / 1e6
}
