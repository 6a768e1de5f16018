package evaluator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"steward-hq/saturn/pkg/facts"
	"steward-hq/saturn/pkg/rules"
)

// SearchTermHarvest promotes search terms that convert efficiently into
// dedicated exact-match keywords.
type SearchTermHarvest struct{}

// termAggregate accumulates one search term's window totals within an
// ad group.
type termAggregate struct {
	campaignID  string
	adGroupID   string
	term        string
	clicks      int64
	costMicros  int64
	conversions int64
	salesMicros int64
}

// entity resolves the aggregate to the search-term entity automated
// mutation targets.
func (t termAggregate) entity() rules.EntityRef {
	return rules.EntityRef{Type: rules.EntitySearchTerm, ID: t.adGroupID + ":" + t.term}
}

// acos returns cost/sales*100, or -1 when sales are zero.
func (t termAggregate) acos() float64 {
	if t.salesMicros <= 0 {
		return -1
	}
	return float64(t.costMicros) / float64(t.salesMicros) * 100
}

// Evaluate aggregates search-term facts over the window, excludes terms the
// tenant already bids on exactly, and emits harvest candidates.
func (SearchTermHarvest) Evaluate(ctx context.Context, rule rules.AutomationRule, in Input) (Result, error) {
	params := *rule.Harvest
	params.Normalize()

	since := in.Day().AddDate(0, 0, -params.WindowDays)
	rows, err := in.Facts.SearchTermDaily(ctx, rule.TenantID, since)
	if err != nil {
		return Result{}, fmt.Errorf("search term read failed: %w", err)
	}

	existing, err := in.Facts.ExactKeywords(ctx, rule.TenantID)
	if err != nil {
		return Result{}, fmt.Errorf("keyword read failed: %w", err)
	}

	aggs := aggregateTerms(rows, false)

	var out Result
	for _, agg := range aggs {
		if existing[strings.ToLower(agg.term)] {
			continue
		}
		if agg.conversions < int64(params.MinConversions) {
			continue
		}
		acos := agg.acos()
		if acos < 0 || acos > params.MaxACoS {
			continue
		}

		entity := agg.entity()
		out.Alerts = append(out.Alerts, rules.Alert{
			RuleID:   rule.ID,
			TenantID: rule.TenantID,
			Entity:   entity,
			Level:    rules.AlertInfo,
			Title:    fmt.Sprintf("Harvest candidate: %q", agg.term),
			Message: fmt.Sprintf("Search term %q has %d conversions at %.1f%% ACoS over %d days; consider an exact-match keyword.",
				agg.term, agg.conversions, acos, params.WindowDays),
			Data: map[string]string{
				"term":        agg.term,
				"conversions": fmt.Sprintf("%d", agg.conversions),
				"acos":        fmt.Sprintf("%.1f", acos),
				"cost_micros": fmt.Sprintf("%d", agg.costMicros),
			},
		})

		if rule.Mode == rules.ModeAuto {
			// Suggested bid is the term's average cost per click.
			var bidMicros int64
			if agg.clicks > 0 {
				bidMicros = agg.costMicros / agg.clicks
			}
			out.Actions = append(out.Actions, rules.Action{
				RuleID:   rule.ID,
				TenantID: rule.TenantID,
				Type:     rules.ActionCreateKeyword,
				Payload: rules.ActionPayload{
					Entity:      entity,
					CampaignID:  agg.campaignID,
					AdGroupID:   agg.adGroupID,
					KeywordText: agg.term,
					MatchType:   "exact",
					Reason: fmt.Sprintf("%d conversions at %.1f%% ACoS (max %.0f%%)",
						agg.conversions, acos, params.MaxACoS),
					TriggerMetrics: map[string]float64{
						"conversions":  float64(agg.conversions),
						"acos":         acos,
						"clicks":       float64(agg.clicks),
						"cost_micros":  float64(agg.costMicros),
						"sales_micros": float64(agg.salesMicros),
					},
					EstimatedImpactMicros: agg.costMicros,
					BidMicros:             bidMicros,
				},
				IdempotencyKey: rules.IdempotencyKey(rule.TenantID, rules.ActionCreateKeyword, entity, in.Day()),
				Status:         rules.StatusQueued,
			})
		}
	}

	return out, nil
}

// aggregateTerms folds daily rows into per-term windows. With campaignScope
// true, terms aggregate per campaign (the ad group dimension collapses);
// otherwise per ad group.
func aggregateTerms(rows []facts.SearchTermDay, campaignScope bool) []termAggregate {
	byKey := make(map[string]*termAggregate)
	for _, r := range rows {
		adGroup := r.AdGroupID
		if campaignScope {
			adGroup = ""
		}
		key := r.CampaignID + "|" + adGroup + "|" + r.Term
		agg := byKey[key]
		if agg == nil {
			agg = &termAggregate{campaignID: r.CampaignID, adGroupID: r.AdGroupID, term: r.Term}
			if campaignScope {
				agg.adGroupID = ""
			}
			byKey[key] = agg
		}
		agg.clicks += r.Clicks
		agg.costMicros += r.CostMicros
		agg.conversions += r.Conversions
		agg.salesMicros += r.SalesMicros
	}

	out := make([]termAggregate, 0, len(byKey))
	for _, agg := range byKey {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].campaignID != out[j].campaignID {
			return out[i].campaignID < out[j].campaignID
		}
		if out[i].adGroupID != out[j].adGroupID {
			return out[i].adGroupID < out[j].adGroupID
		}
		return out[i].term < out[j].term
	})
	return out
}
