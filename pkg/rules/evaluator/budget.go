package evaluator

import (
	"context"
	"fmt"

	"steward-hq/saturn/pkg/rules"
)

// BudgetDepletion flags campaigns that have burned through their daily
// budget too early, and pauses them in auto mode.
type BudgetDepletion struct{}

// Evaluate checks each campaign's most recent budget-usage snapshot against
// the rule's percentage threshold.
func (BudgetDepletion) Evaluate(ctx context.Context, rule rules.AutomationRule, in Input) (Result, error) {
	params := *rule.BudgetDepletion
	params.Normalize()

	// Depletion late in the local day is expected; only trigger before
	// the configured hour.
	if params.BeforeHourLocal > 0 && in.Now.Local().Hour() >= params.BeforeHourLocal {
		return Result{}, nil
	}

	usage, err := in.Facts.LatestBudgetUsage(ctx, rule.TenantID)
	if err != nil {
		return Result{}, fmt.Errorf("budget usage read failed: %w", err)
	}

	var out Result
	for _, u := range usage {
		pct := u.UsagePercent()
		if pct < params.PercentThreshold {
			continue
		}

		entity := rules.EntityRef{Type: rules.EntityCampaign, ID: u.CampaignID}
		name := u.CampaignName
		if name == "" {
			name = u.CampaignID
		}

		out.Alerts = append(out.Alerts, rules.Alert{
			RuleID:   rule.ID,
			TenantID: rule.TenantID,
			Entity:   entity,
			Level:    rules.AlertCritical,
			Title:    fmt.Sprintf("Budget %.0f%% depleted: %s", pct, name),
			Message: fmt.Sprintf("Campaign %s has spent %.2f of its %.2f daily budget (%.1f%%, threshold %.0f%%).",
				name, microsToCurrency(u.SpendMicros), microsToCurrency(u.BudgetMicros), pct, params.PercentThreshold),
			Data: map[string]string{
				"usage_percent": fmt.Sprintf("%.1f", pct),
				"spend_micros":  fmt.Sprintf("%d", u.SpendMicros),
				"budget_micros": fmt.Sprintf("%d", u.BudgetMicros),
			},
		})

		if rule.Mode == rules.ModeAuto {
			remaining := u.BudgetMicros - u.SpendMicros
			if remaining < 0 {
				remaining = 0
			}
			out.Actions = append(out.Actions, rules.Action{
				RuleID:   rule.ID,
				TenantID: rule.TenantID,
				Type:     rules.ActionPauseCampaign,
				Payload: rules.ActionPayload{
					Entity:     entity,
					CampaignID: u.CampaignID,
					Reason: fmt.Sprintf("budget %.1f%% depleted (threshold %.0f%%)",
						pct, params.PercentThreshold),
					TriggerMetrics: map[string]float64{
						"usage_percent": pct,
						"spend_micros":  float64(u.SpendMicros),
						"budget_micros": float64(u.BudgetMicros),
					},
					EstimatedImpactMicros: remaining,
				},
				IdempotencyKey: rules.IdempotencyKey(rule.TenantID, rules.ActionPauseCampaign, entity, in.Day()),
				Status:         rules.StatusQueued,
			})
		}
	}

	return out, nil
}
