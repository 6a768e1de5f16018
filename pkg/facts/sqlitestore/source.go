package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"steward-hq/saturn/pkg/facts"
)

// Source reads performance facts from a SQLite database populated by the
// report-ingestion pipeline. All access is read-only; the engine never
// mutates fact tables.
type Source struct {
	db *sql.DB

	budgetStmt  *sql.Stmt
	dailyStmt   *sql.Stmt
	termStmt    *sql.Stmt
	keywordStmt *sql.Stmt
}

// Config configures the SQLite fact source.
type Config struct {
	// Path is the fact database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// New opens the fact database and prepares the read statements.
func New(cfg Config) (*Source, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("fact db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open fact database: %w", err)
	}

	// The ingestion pipeline is the single writer; readers stay modest.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(0)

	s := &Source{db: db}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return s, nil
}

// prepareStatements prepares SQL statements for reuse.
func (s *Source) prepareStatements() error {
	var err error

	// Newest budget-usage snapshot per campaign via a correlated max.
	s.budgetStmt, err = s.db.Prepare(`
		SELECT b.tenant_id, b.campaign_id, b.campaign_name, b.budget_micros, b.spend_micros, b.observed_at
		FROM budget_usage b
		WHERE b.tenant_id = ?
		  AND b.observed_at = (
			SELECT MAX(observed_at) FROM budget_usage
			WHERE tenant_id = b.tenant_id AND campaign_id = b.campaign_id
		  )
		ORDER BY b.campaign_id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare budget statement: %w", err)
	}

	s.dailyStmt, err = s.db.Prepare(`
		SELECT tenant_id, campaign_id, date, cost_micros, clicks, sales_micros
		FROM campaign_daily
		WHERE tenant_id = ? AND date >= ?
		ORDER BY date
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare daily statement: %w", err)
	}

	s.termStmt, err = s.db.Prepare(`
		SELECT tenant_id, campaign_id, ad_group_id, term, date, clicks, cost_micros, conversions, sales_micros
		FROM search_term_daily
		WHERE tenant_id = ? AND date >= ?
		ORDER BY date
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare term statement: %w", err)
	}

	s.keywordStmt, err = s.db.Prepare(`
		SELECT keyword_text FROM keywords
		WHERE tenant_id = ? AND match_type = 'exact'
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare keyword statement: %w", err)
	}

	return nil
}

// LatestBudgetUsage returns the newest budget-usage row per campaign.
func (s *Source) LatestBudgetUsage(ctx context.Context, tenantID string) ([]facts.BudgetUsage, error) {
	rows, err := s.budgetStmt.QueryContext(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget usage: %w", err)
	}
	defer rows.Close()

	var out []facts.BudgetUsage
	for rows.Next() {
		var row facts.BudgetUsage
		var observed int64
		if err := rows.Scan(&row.TenantID, &row.CampaignID, &row.CampaignName,
			&row.BudgetMicros, &row.SpendMicros, &observed); err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		row.ObservedAt = time.Unix(observed, 0).UTC()
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget rows: %w", err)
	}
	return out, nil
}

// CampaignDaily returns daily campaign aggregates with date >= since.
func (s *Source) CampaignDaily(ctx context.Context, tenantID string, since time.Time) ([]facts.CampaignDay, error) {
	rows, err := s.dailyStmt.QueryContext(ctx, tenantID, dayString(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign daily: %w", err)
	}
	defer rows.Close()

	var out []facts.CampaignDay
	for rows.Next() {
		var row facts.CampaignDay
		var date string
		if err := rows.Scan(&row.TenantID, &row.CampaignID, &date,
			&row.CostMicros, &row.Clicks, &row.SalesMicros); err != nil {
			return nil, fmt.Errorf("failed to scan daily row: %w", err)
		}
		row.Date, err = parseDay(date)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily rows: %w", err)
	}
	return out, nil
}

// SearchTermDaily returns daily search-term aggregates with date >= since.
func (s *Source) SearchTermDaily(ctx context.Context, tenantID string, since time.Time) ([]facts.SearchTermDay, error) {
	rows, err := s.termStmt.QueryContext(ctx, tenantID, dayString(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query search terms: %w", err)
	}
	defer rows.Close()

	var out []facts.SearchTermDay
	for rows.Next() {
		var row facts.SearchTermDay
		var date string
		if err := rows.Scan(&row.TenantID, &row.CampaignID, &row.AdGroupID, &row.Term, &date,
			&row.Clicks, &row.CostMicros, &row.Conversions, &row.SalesMicros); err != nil {
			return nil, fmt.Errorf("failed to scan term row: %w", err)
		}
		row.Date, err = parseDay(date)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating term rows: %w", err)
	}
	return out, nil
}

// ExactKeywords returns the tenant's lowercased exact-match keyword texts.
func (s *Source) ExactKeywords(ctx context.Context, tenantID string) (map[string]bool, error) {
	rows, err := s.keywordStmt.QueryContext(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query keywords: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan keyword row: %w", err)
		}
		out[strings.ToLower(text)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keyword rows: %w", err)
	}
	return out, nil
}

// Close releases prepared statements and the database handle.
func (s *Source) Close() error {
	for _, stmt := range []*sql.Stmt{s.budgetStmt, s.dailyStmt, s.termStmt, s.keywordStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// dayString renders the canonical YYYY-MM-DD form fact tables index on.
func dayString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// parseDay parses the canonical day form back into midnight UTC.
func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid fact date %q: %w", s, err)
	}
	return t, nil
}
