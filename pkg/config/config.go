package config

import "time"

// Config is the root configuration structure for Saturn.
// It contains all configuration sections for the rule engine, fact and
// outcome storage, scheduling, and telemetry.
type Config struct {
	// Facts contains configuration for the performance fact source the
	// evaluators read from.
	Facts FactsConfig `yaml:"facts"`

	// Storage contains configuration for the outcome store that holds
	// rules, alerts, actions, rule runs, and governance data.
	Storage StorageConfig `yaml:"storage"`

	// Scheduler contains cycle and retention scheduling configuration.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Telemetry contains observability configuration: logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// FactsConfig selects and configures the performance fact backend.
type FactsConfig struct {
	// Backend is the fact source implementation: "sqlite" or "memory".
	// The memory backend is for tests and local experiments only.
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the path to the facts database file.
	// Default: "data/facts.db"
	SQLitePath string `yaml:"sqlite_path"`

	// BusyTimeout is how long SQLite waits on a locked database before
	// returning SQLITE_BUSY.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// StorageConfig selects and configures the outcome store backend.
type StorageConfig struct {
	// Backend is the outcome store implementation: "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the path to the outcomes database file.
	// Default: "data/saturn.db"
	SQLitePath string `yaml:"sqlite_path"`

	// BusyTimeout is how long SQLite waits on a locked database before
	// returning SQLITE_BUSY.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// RetentionDays is how long alerts and rule runs are kept before the
	// retention job prunes them. Actions are never pruned.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`
}

// SchedulerConfig configures the cron-driven cycle and retention jobs.
type SchedulerConfig struct {
	// CycleSchedule is the cron expression for evaluation cycles.
	// Default: "0 * * * *" (hourly)
	CycleSchedule string `yaml:"cycle_schedule"`

	// RetentionSchedule is the cron expression for the retention pruner.
	// Default: "0 3 * * *" (daily at 03:00)
	RetentionSchedule string `yaml:"retention_schedule"`

	// RunOnStart runs one cycle immediately when the scheduler starts,
	// before the first cron tick.
	// Default: false
	RunOnStart bool `yaml:"run_on_start"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json", "text", "console".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled turns the metrics HTTP endpoint on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics server binds to.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path the metrics are served at.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
