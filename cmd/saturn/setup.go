package main

import (
	"fmt"
	"io"
	"log/slog"

	"steward-hq/saturn/pkg/config"
	"steward-hq/saturn/pkg/facts"
	"steward-hq/saturn/pkg/facts/sqlitestore"
	"steward-hq/saturn/pkg/governance"
	"steward-hq/saturn/pkg/rules"
	"steward-hq/saturn/pkg/rules/engine"
	"steward-hq/saturn/pkg/store"
	"steward-hq/saturn/pkg/telemetry/logging"
	"steward-hq/saturn/pkg/telemetry/metrics"
)

// components bundles everything a command needs after wiring.
type components struct {
	engine  *engine.Engine
	pruner  store.Pruner
	metrics *metrics.Metrics
	logger  *slog.Logger

	closers []io.Closer
}

// Close releases backend resources in reverse wiring order.
func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			c.logger.Warn("close failed", "error", err)
		}
	}
}

// loadConfig loads and validates the configuration file, honoring the
// global --verbose flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

// setup wires the fact source, outcome store, governance source, and engine
// from configuration.
func setup(cfg *config.Config) (*components, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	slog.SetDefault(logger)

	c := &components{logger: logger, metrics: metrics.NewMetrics()}

	var factSource facts.Source
	switch cfg.Facts.Backend {
	case "sqlite":
		src, err := sqlitestore.New(sqlitestore.Config{
			Path:        cfg.Facts.SQLitePath,
			BusyTimeout: cfg.Facts.BusyTimeout,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to open fact source: %w", err)
		}
		c.closers = append(c.closers, src)
		factSource = src
	case "memory":
		factSource = facts.NewMemorySource()
	default:
		return nil, fmt.Errorf("unknown facts backend %q", cfg.Facts.Backend)
	}

	var (
		outcomes   store.Outcomes
		ruleSource rules.Source
		govSource  governance.Source
	)
	switch cfg.Storage.Backend {
	case "sqlite":
		sq, err := store.NewSQLiteStore(&store.SQLiteConfig{
			Path:         cfg.Storage.SQLitePath,
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			WALMode:      true,
			BusyTimeout:  cfg.Storage.BusyTimeout,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to open outcome store: %w", err)
		}
		c.closers = append(c.closers, sq)
		outcomes = sq
		ruleSource = sq
		govSource = sq
		c.pruner = sq
	case "memory":
		mem := store.NewMemoryStore()
		outcomes = mem
		ruleSource = rules.NewMemorySource()
		govSource = governance.NewMemorySource()
		c.pruner = mem
	default:
		c.Close()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	eng, err := engine.New(engine.Config{
		Rules:      ruleSource,
		Facts:      factSource,
		Outcomes:   outcomes,
		Governance: govSource,
		Logger:     logger,
		Metrics:    c.metrics,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	c.engine = eng

	return c, nil
}
