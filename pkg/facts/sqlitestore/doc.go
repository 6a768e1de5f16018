// Package sqlitestore implements facts.Source over a SQLite database
// written by the report-ingestion pipeline.
//
// Expected tables (created by ingestion, not by this package):
//
//	budget_usage       (tenant_id, campaign_id, campaign_name, budget_micros, spend_micros, observed_at)
//	campaign_daily     (tenant_id, campaign_id, date, cost_micros, clicks, sales_micros)
//	search_term_daily  (tenant_id, campaign_id, ad_group_id, term, date, clicks, cost_micros, conversions, sales_micros)
//	keywords           (tenant_id, keyword_text, match_type)
//
// Dates are stored as YYYY-MM-DD strings, timestamps as Unix seconds.
package sqlitestore
