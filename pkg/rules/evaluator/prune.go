package evaluator

import (
	"context"
	"fmt"

	"steward-hq/saturn/pkg/rules"
)

// SearchTermPrune negates search terms that spend without converting.
type SearchTermPrune struct{}

// Evaluate aggregates search-term facts at the configured scope and emits
// negative-keyword candidates for terms that click or spend past the
// thresholds with no more than MaxConversions conversions.
func (SearchTermPrune) Evaluate(ctx context.Context, rule rules.AutomationRule, in Input) (Result, error) {
	params := *rule.Prune
	params.Normalize()

	since := in.Day().AddDate(0, 0, -params.WindowDays)
	rows, err := in.Facts.SearchTermDaily(ctx, rule.TenantID, since)
	if err != nil {
		return Result{}, fmt.Errorf("search term read failed: %w", err)
	}

	campaignScope := params.Scope == rules.NegateCampaign
	aggs := aggregateTerms(rows, campaignScope)

	var out Result
	for _, agg := range aggs {
		if agg.conversions > int64(params.MaxConversions) {
			continue
		}
		spend := microsToCurrency(agg.costMicros)
		if agg.clicks < int64(params.MinClicks) && spend < params.MinSpend {
			continue
		}

		entity := pruneEntity(agg, campaignScope)
		out.Alerts = append(out.Alerts, rules.Alert{
			RuleID:   rule.ID,
			TenantID: rule.TenantID,
			Entity:   entity,
			Level:    rules.AlertWarning,
			Title:    fmt.Sprintf("Prune candidate: %q", agg.term),
			Message: fmt.Sprintf("Search term %q has %d clicks and %.2f spend with %d conversions over %d days; consider a negative keyword.",
				agg.term, agg.clicks, spend, agg.conversions, params.WindowDays),
			Data: map[string]string{
				"term":        agg.term,
				"clicks":      fmt.Sprintf("%d", agg.clicks),
				"cost_micros": fmt.Sprintf("%d", agg.costMicros),
				"conversions": fmt.Sprintf("%d", agg.conversions),
				"scope":       string(params.Scope),
			},
		})

		if rule.Mode == rules.ModeAuto {
			out.Actions = append(out.Actions, rules.Action{
				RuleID:   rule.ID,
				TenantID: rule.TenantID,
				Type:     rules.ActionAddNegative,
				Payload: rules.ActionPayload{
					Entity:      entity,
					CampaignID:  agg.campaignID,
					AdGroupID:   agg.adGroupID,
					KeywordText: agg.term,
					MatchType:   "negative_exact",
					Reason: fmt.Sprintf("%d clicks and %.2f spend with %d conversions (scope %s)",
						agg.clicks, spend, agg.conversions, params.Scope),
					TriggerMetrics: map[string]float64{
						"clicks":      float64(agg.clicks),
						"cost_micros": float64(agg.costMicros),
						"conversions": float64(agg.conversions),
					},
					EstimatedImpactMicros: agg.costMicros,
				},
				IdempotencyKey: rules.IdempotencyKey(rule.TenantID, rules.ActionAddNegative, entity, in.Day()),
				Status:         rules.StatusQueued,
			})
		}
	}

	return out, nil
}

// pruneEntity resolves the entity a negative keyword attaches to.
func pruneEntity(agg termAggregate, campaignScope bool) rules.EntityRef {
	if campaignScope {
		return rules.EntityRef{Type: rules.EntitySearchTerm, ID: agg.campaignID + ":" + agg.term}
	}
	return agg.entity()
}
