package config

import "time"

// Default values for configuration fields.
const (
	// Facts defaults
	DefaultFactsBackend     = "sqlite"
	DefaultFactsSQLitePath  = "data/facts.db"
	DefaultFactsBusyTimeout = 5 * time.Second

	// Storage defaults
	DefaultStorageBackend     = "sqlite"
	DefaultStorageSQLitePath  = "data/saturn.db"
	DefaultStorageBusyTimeout = 5 * time.Second
	DefaultRetentionDays      = 90

	// Scheduler defaults
	DefaultCycleSchedule     = "0 * * * *"
	DefaultRetentionSchedule = "0 3 * * *"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Metrics defaults
	DefaultMetricsEnabled       = true
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
)

// DefaultConfig returns a configuration populated with all default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
//
// Booleans that default to true (metrics enabled) cannot be distinguished
// from an explicit false after unmarshal; DefaultConfig sets them, and YAML
// files that want them off must say so explicitly.
func ApplyDefaults(cfg *Config) {
	if cfg.Facts.Backend == "" {
		cfg.Facts.Backend = DefaultFactsBackend
	}
	if cfg.Facts.SQLitePath == "" {
		cfg.Facts.SQLitePath = DefaultFactsSQLitePath
	}
	if cfg.Facts.BusyTimeout == 0 {
		cfg.Facts.BusyTimeout = DefaultFactsBusyTimeout
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = DefaultStorageSQLitePath
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = DefaultStorageBusyTimeout
	}
	if cfg.Storage.RetentionDays == 0 {
		cfg.Storage.RetentionDays = DefaultRetentionDays
	}

	if cfg.Scheduler.CycleSchedule == "" {
		cfg.Scheduler.CycleSchedule = DefaultCycleSchedule
	}
	if cfg.Scheduler.RetentionSchedule == "" {
		cfg.Scheduler.RetentionSchedule = DefaultRetentionSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
