package store

// SchemaVersion is bumped whenever Schema changes incompatibly.
const SchemaVersion = 1

// Schema creates the outcome tables plus the rule and governance tables a
// self-contained deployment uses. The UNIQUE index on the action
// idempotency key is the engine's cross-invocation dedup guarantee.
const Schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS alerts (
	id          TEXT PRIMARY KEY,
	rule_id     TEXT NOT NULL,
	tenant_id   TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	level       TEXT NOT NULL,
	title       TEXT NOT NULL,
	message     TEXT NOT NULL,
	data        TEXT,
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_tenant_created ON alerts(tenant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_alerts_rule ON alerts(rule_id);

CREATE TABLE IF NOT EXISTS actions (
	id              TEXT PRIMARY KEY,
	rule_id         TEXT NOT NULL,
	tenant_id       TEXT NOT NULL,
	action_type     TEXT NOT NULL,
	payload         TEXT NOT NULL,
	idempotency_key TEXT NOT NULL,
	status          TEXT NOT NULL,
	created_at      INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_actions_idempotency ON actions(idempotency_key);
CREATE INDEX IF NOT EXISTS idx_actions_tenant_created ON actions(tenant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_actions_rule_created ON actions(rule_id, created_at);
CREATE INDEX IF NOT EXISTS idx_actions_status ON actions(status);

CREATE TABLE IF NOT EXISTS rule_runs (
	id              TEXT PRIMARY KEY,
	rule_id         TEXT NOT NULL,
	tenant_id       TEXT NOT NULL,
	cycle_id        TEXT NOT NULL,
	status          TEXT NOT NULL,
	alerts_created  INTEGER NOT NULL DEFAULT 0,
	actions_queued  INTEGER NOT NULL DEFAULT 0,
	error           TEXT,
	started_at      INTEGER NOT NULL,
	finished_at     INTEGER
);

CREATE INDEX IF NOT EXISTS idx_rule_runs_rule ON rule_runs(rule_id, started_at);
CREATE INDEX IF NOT EXISTS idx_rule_runs_cycle ON rule_runs(cycle_id);

CREATE TABLE IF NOT EXISTS automation_rules (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	tenant_id  TEXT NOT NULL,
	name       TEXT NOT NULL,
	rule_type  TEXT NOT NULL,
	mode       TEXT NOT NULL,
	enabled    INTEGER NOT NULL DEFAULT 1,
	severity   TEXT NOT NULL,
	params     TEXT NOT NULL,
	throttle   TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rules_enabled ON automation_rules(enabled, tenant_id);

CREATE TABLE IF NOT EXISTS governance_settings (
	tenant_id                     TEXT PRIMARY KEY,
	max_bid_change_percent        REAL NOT NULL,
	min_bid_micros                INTEGER NOT NULL,
	max_bid_micros                INTEGER NOT NULL,
	daily_spend_cap_micros        INTEGER NOT NULL DEFAULT 0,
	monthly_spend_cap_micros      INTEGER NOT NULL DEFAULT 0,
	max_actions_per_day           INTEGER NOT NULL,
	require_approval_above_micros INTEGER NOT NULL DEFAULT 0,
	automation_paused             INTEGER NOT NULL DEFAULT 0,
	automation_paused_reason      TEXT
);

CREATE TABLE IF NOT EXISTS protected_entities (
	tenant_id   TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	reason      TEXT,
	PRIMARY KEY (tenant_id, entity_type, entity_id)
);

CREATE TABLE IF NOT EXISTS tenant_plans (
	tenant_id TEXT PRIMARY KEY,
	plan      TEXT NOT NULL
);
`

// InsertSchemaVersion records the schema version, ignoring an existing row.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads the recorded schema version.
const GetSchemaVersion = `SELECT version FROM schema_version LIMIT 1`
