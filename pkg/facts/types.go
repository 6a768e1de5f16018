package facts

import (
	"context"
	"time"
)

// BudgetUsage is the most recent per-minute budget snapshot for a campaign.
type BudgetUsage struct {
	TenantID     string
	CampaignID   string
	CampaignName string
	BudgetMicros int64
	SpendMicros  int64
	ObservedAt   time.Time
}

// UsagePercent returns spend as a percentage of budget, or 0 when the
// budget is zero.
func (b BudgetUsage) UsagePercent() float64 {
	if b.BudgetMicros <= 0 {
		return 0
	}
	return float64(b.SpendMicros) / float64(b.BudgetMicros) * 100
}

// CampaignDay is one campaign's daily cost/clicks/sales aggregate.
type CampaignDay struct {
	TenantID    string
	CampaignID  string
	Date        time.Time // midnight UTC of the aggregated day
	CostMicros  int64
	Clicks      int64
	SalesMicros int64
}

// SearchTermDay is one search term's daily aggregate within an ad group.
type SearchTermDay struct {
	TenantID    string
	CampaignID  string
	AdGroupID   string
	Term        string
	Date        time.Time
	Clicks      int64
	CostMicros  int64
	Conversions int64
	SalesMicros int64
}

// Source reads performance facts for one tenant.
//
// All methods are synchronous point-in-time reads. A read failure for one
// rule yields an empty evaluation for that cycle, which downstream consumers
// cannot distinguish from "no issue found"; callers log read errors loudly
// for that reason.
type Source interface {
	// LatestBudgetUsage returns the newest budget-usage row per campaign.
	LatestBudgetUsage(ctx context.Context, tenantID string) ([]BudgetUsage, error)

	// CampaignDaily returns daily campaign aggregates with Date >= since.
	CampaignDaily(ctx context.Context, tenantID string, since time.Time) ([]CampaignDay, error)

	// SearchTermDaily returns daily search-term aggregates with
	// Date >= since.
	SearchTermDaily(ctx context.Context, tenantID string, since time.Time) ([]SearchTermDay, error)

	// ExactKeywords returns the lowercased text of every exact-match
	// keyword the tenant already bids on, for harvest exclusion.
	ExactKeywords(ctx context.Context, tenantID string) (map[string]bool, error)
}
