package evaluator

import (
	"context"
	"fmt"
	"math"
	"sort"

	"steward-hq/saturn/pkg/rules"
)

// minPriorDays is the fewest baseline days a spike needs to be meaningful.
const minPriorDays = 3

// SpendSpike flags campaigns whose spend today exceeds a mean + k*stdev
// threshold over the lookback window. Alert-only: this rule never produces
// actions, regardless of mode.
type SpendSpike struct{}

// Evaluate computes a per-campaign baseline from prior days and compares
// today's spend against it.
func (SpendSpike) Evaluate(ctx context.Context, rule rules.AutomationRule, in Input) (Result, error) {
	params := *rule.SpendSpike
	params.Normalize()

	today := in.Day()
	since := today.AddDate(0, 0, -params.LookbackDays)

	days, err := in.Facts.CampaignDaily(ctx, rule.TenantID, since)
	if err != nil {
		return Result{}, fmt.Errorf("campaign daily read failed: %w", err)
	}

	type series struct {
		prior []float64 // spend per prior day, currency units
		today float64
	}
	byCampaign := make(map[string]*series)
	for _, d := range days {
		s := byCampaign[d.CampaignID]
		if s == nil {
			s = &series{}
			byCampaign[d.CampaignID] = s
		}
		spend := microsToCurrency(d.CostMicros)
		if d.Date.Equal(today) {
			s.today += spend
		} else {
			s.prior = append(s.prior, spend)
		}
	}

	ids := make([]string, 0, len(byCampaign))
	for id := range byCampaign {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out Result
	for _, id := range ids {
		s := byCampaign[id]
		if len(s.prior) < minPriorDays {
			continue
		}

		mean, stdev := meanStdev(s.prior)
		threshold := mean + params.StdevMultiplier*stdev
		if s.today <= threshold || s.today < params.MinSpend {
			continue
		}

		out.Alerts = append(out.Alerts, rules.Alert{
			RuleID:   rule.ID,
			TenantID: rule.TenantID,
			Entity:   rules.EntityRef{Type: rules.EntityCampaign, ID: id},
			Level:    rules.AlertWarning,
			Title:    fmt.Sprintf("Spend spike on campaign %s", id),
			Message: fmt.Sprintf("Today's spend %.2f exceeds the %d-day baseline %.2f + %.1fx stdev %.2f (threshold %.2f).",
				s.today, len(s.prior), mean, params.StdevMultiplier, stdev, threshold),
			Data: map[string]string{
				"today_spend": fmt.Sprintf("%.2f", s.today),
				"mean":        fmt.Sprintf("%.2f", mean),
				"stdev":       fmt.Sprintf("%.2f", stdev),
				"threshold":   fmt.Sprintf("%.2f", threshold),
				"prior_days":  fmt.Sprintf("%d", len(s.prior)),
			},
		})
	}

	return out, nil
}

// meanStdev returns the mean and population standard deviation.
func meanStdev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}
