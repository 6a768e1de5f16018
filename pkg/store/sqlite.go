package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"steward-hq/saturn/pkg/governance"
	"steward-hq/saturn/pkg/rules"
)

// SQLiteConfig contains configuration for the SQLite outcome store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/saturn.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Outcomes, Pruner, rules.Source and
// governance.Source over one SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens the database, applies pragmas and creates the schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "open", Cause: err}
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite outcome store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize applies pragmas and creates/verifies the schema.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return &StorageError{Backend: "sqlite", Op: "enable_wal", Cause: err}
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return &StorageError{Backend: "sqlite", Op: "set_busy_timeout", Cause: err}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return &StorageError{Backend: "sqlite", Op: "create_schema", Cause: err}
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return &StorageError{Backend: "sqlite", Op: "insert_schema_version", Cause: err}
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return &StorageError{Backend: "sqlite", Op: "get_schema_version", Cause: err}
	}
	if version != SchemaVersion {
		return &StorageError{Backend: "sqlite", Op: "schema_version_mismatch",
			Cause: fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version)}
	}

	return nil
}

// InsertAlert persists an alert.
func (s *SQLiteStore) InsertAlert(ctx context.Context, alert *rules.Alert) error {
	data, err := json.Marshal(alert.Data)
	if err != nil {
		return &StorageError{Backend: "sqlite", Op: "marshal_alert_data", Cause: err}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO alerts (id, rule_id, tenant_id, entity_type, entity_id, level, title, message, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.RuleID, alert.TenantID,
		string(alert.Entity.Type), alert.Entity.ID,
		string(alert.Level), alert.Title, alert.Message,
		string(data), alert.CreatedAt.Unix(),
	)
	if err != nil {
		return &StorageError{Backend: "sqlite", Op: "insert_alert", Cause: err}
	}
	return nil
}

// InsertAction persists an action; duplicates by idempotency key are
// silently suppressed and reported via the bool return.
func (s *SQLiteStore) InsertAction(ctx context.Context, action *rules.Action) (bool, error) {
	payload, err := json.Marshal(action.Payload)
	if err != nil {
		return false, &StorageError{Backend: "sqlite", Op: "marshal_action_payload", Cause: err}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO actions (id, rule_id, tenant_id, action_type, payload, idempotency_key, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		action.ID, action.RuleID, action.TenantID,
		string(action.Type), string(payload),
		action.IdempotencyKey, string(action.Status), action.CreatedAt.Unix(),
	)
	if err != nil {
		return false, &StorageError{Backend: "sqlite", Op: "insert_action", Cause: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, &StorageError{Backend: "sqlite", Op: "insert_action_rows", Cause: err}
	}
	return affected > 0, nil
}

// CountTenantActionsOn counts a tenant's actions created on the given day.
func (s *SQLiteStore) CountTenantActionsOn(ctx context.Context, tenantID string, day time.Time) (int, error) {
	start, end := dayBounds(day)
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM actions
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ?`,
		tenantID, start.Unix(), end.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, &StorageError{Backend: "sqlite", Op: "count_tenant_actions", Cause: err}
	}
	return count, nil
}

// CountRuleActionsOn counts one rule's actions created on the given day.
func (s *SQLiteStore) CountRuleActionsOn(ctx context.Context, ruleID string, day time.Time) (int, error) {
	start, end := dayBounds(day)
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM actions
		WHERE rule_id = ? AND created_at >= ? AND created_at < ?`,
		ruleID, start.Unix(), end.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, &StorageError{Backend: "sqlite", Op: "count_rule_actions", Cause: err}
	}
	return count, nil
}

// CreateRuleRun records the start of one rule's evaluation.
func (s *SQLiteStore) CreateRuleRun(ctx context.Context, run *rules.RuleRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rule_runs (id, rule_id, tenant_id, cycle_id, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.RuleID, run.TenantID, run.CycleID, string(run.Status), run.StartedAt.Unix(),
	)
	if err != nil {
		return &StorageError{Backend: "sqlite", Op: "create_rule_run", Cause: err}
	}
	return nil
}

// FinalizeRuleRun records the outcome of a previously created run.
func (s *SQLiteStore) FinalizeRuleRun(ctx context.Context, run *rules.RuleRun) error {
	var errVal interface{}
	if run.Error != "" {
		errVal = run.Error
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE rule_runs
		SET status = ?, alerts_created = ?, actions_queued = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		string(run.Status), run.AlertsCreated, run.ActionsQueued, errVal, run.FinishedAt.Unix(), run.ID,
	)
	if err != nil {
		return &StorageError{Backend: "sqlite", Op: "finalize_rule_run", Cause: err}
	}
	return nil
}

// PruneBefore deletes alerts and rule runs created before the cutoff.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	total := 0

	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, &StorageError{Backend: "sqlite", Op: "prune_alerts", Cause: err}
	}
	if n, err := res.RowsAffected(); err == nil {
		total += int(n)
	}

	res, err = s.db.ExecContext(ctx, `DELETE FROM rule_runs WHERE started_at < ?`, cutoff.Unix())
	if err != nil {
		return total, &StorageError{Backend: "sqlite", Op: "prune_rule_runs", Cause: err}
	}
	if n, err := res.RowsAffected(); err == nil {
		total += int(n)
	}

	return total, nil
}

// ListEnabled loads every enabled automation rule, ordered by tenant.
func (s *SQLiteStore) ListEnabled(ctx context.Context) ([]rules.AutomationRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, tenant_id, name, rule_type, mode, severity, params, throttle, created_at, updated_at
		FROM automation_rules
		WHERE enabled = 1
		ORDER BY tenant_id, id`)
	if err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "list_rules", Cause: err}
	}
	defer rows.Close()

	var out []rules.AutomationRule
	for rows.Next() {
		var (
			r                  rules.AutomationRule
			params, throttle   string
			created, updated   int64
		)
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.TenantID, &r.Name,
			(*string)(&r.Type), (*string)(&r.Mode), (*string)(&r.Severity),
			&params, &throttle, &created, &updated); err != nil {
			return nil, &StorageError{Backend: "sqlite", Op: "scan_rule", Cause: err}
		}
		r.Enabled = true
		r.CreatedAt = time.Unix(created, 0).UTC()
		r.UpdatedAt = time.Unix(updated, 0).UTC()

		if err := json.Unmarshal([]byte(throttle), &r.Throttle); err != nil {
			return nil, &StorageError{Backend: "sqlite", Op: "unmarshal_throttle", Cause: err}
		}
		if err := decodeParams(&r, []byte(params)); err != nil {
			return nil, &StorageError{Backend: "sqlite", Op: "unmarshal_params", Cause: err}
		}

		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "iterate_rules", Cause: err}
	}
	return out, nil
}

// decodeParams unmarshals the JSON params blob into the field matching the
// rule's type. Unknown types fail here, at load time.
func decodeParams(r *rules.AutomationRule, raw []byte) error {
	switch r.Type {
	case rules.RuleBudgetDepletion:
		r.BudgetDepletion = &rules.BudgetDepletionParams{}
		return json.Unmarshal(raw, r.BudgetDepletion)
	case rules.RuleSpendSpike:
		r.SpendSpike = &rules.SpendSpikeParams{}
		return json.Unmarshal(raw, r.SpendSpike)
	case rules.RuleSearchTermHarvest:
		r.Harvest = &rules.HarvestParams{}
		return json.Unmarshal(raw, r.Harvest)
	case rules.RuleSearchTermPrune:
		r.Prune = &rules.PruneParams{}
		return json.Unmarshal(raw, r.Prune)
	}
	return fmt.Errorf("unknown rule type %q", r.Type)
}

// Settings returns the tenant's governance settings row, or nil when none
// exists.
func (s *SQLiteStore) Settings(ctx context.Context, tenantID string) (*governance.Settings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT tenant_id, max_bid_change_percent, min_bid_micros, max_bid_micros,
		       daily_spend_cap_micros, monthly_spend_cap_micros, max_actions_per_day,
		       require_approval_above_micros, automation_paused, automation_paused_reason
		FROM governance_settings WHERE tenant_id = ?`, tenantID)

	var (
		out    governance.Settings
		paused int
		reason sql.NullString
	)
	err := row.Scan(&out.TenantID, &out.MaxBidChangePercent, &out.MinBidMicros, &out.MaxBidMicros,
		&out.DailySpendCapMicros, &out.MonthlySpendCapMicros, &out.MaxActionsPerDay,
		&out.RequireApprovalAboveMicros, &paused, &reason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "get_settings", Cause: err}
	}
	out.AutomationPaused = paused != 0
	out.AutomationPausedReason = reason.String
	return &out, nil
}

// ProtectedEntities returns the tenant's protected-entity list.
func (s *SQLiteStore) ProtectedEntities(ctx context.Context, tenantID string) ([]governance.ProtectedEntity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tenant_id, entity_type, entity_id, reason
		FROM protected_entities WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "list_protected", Cause: err}
	}
	defer rows.Close()

	var out []governance.ProtectedEntity
	for rows.Next() {
		var pe governance.ProtectedEntity
		var reason sql.NullString
		if err := rows.Scan(&pe.TenantID, (*string)(&pe.EntityType), &pe.EntityID, &reason); err != nil {
			return nil, &StorageError{Backend: "sqlite", Op: "scan_protected", Cause: err}
		}
		pe.Reason = reason.String
		out = append(out, pe)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Backend: "sqlite", Op: "iterate_protected", Cause: err}
	}
	return out, nil
}

// Plan returns the tenant's subscription tier, defaulting to free when no
// row exists: an unknown tenant gets the most restrictive entitlement.
func (s *SQLiteStore) Plan(ctx context.Context, tenantID string) (governance.PlanTier, error) {
	var plan string
	err := s.db.QueryRowContext(ctx, `SELECT plan FROM tenant_plans WHERE tenant_id = ?`, tenantID).Scan(&plan)
	if err == sql.ErrNoRows {
		return governance.PlanFree, nil
	}
	if err != nil {
		return "", &StorageError{Backend: "sqlite", Op: "get_plan", Cause: err}
	}
	return governance.PlanTier(plan), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
