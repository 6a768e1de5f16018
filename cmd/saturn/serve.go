package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"steward-hq/saturn/pkg/config"
	"steward-hq/saturn/pkg/scheduler"
	"steward-hq/saturn/pkg/telemetry/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cron-driven evaluation daemon",
	Long: `Start Saturn as a long-running daemon.

Evaluation cycles and retention pruning run on the configured cron
schedules. When metrics are enabled, a Prometheus endpoint is served on
the configured address. The daemon shuts down cleanly on SIGINT/SIGTERM,
letting an in-flight cycle finish.

Examples:
  # Start with the default config
  saturn serve

  # Start with a custom config
  saturn serve --config /etc/saturn/saturn.yaml`,
	RunE: serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := setup(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(c.engine, c.pruner, cfg.Scheduler, cfg.Storage.RetentionDays, c.logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// Logging config can be reloaded live; storage and scheduler sections
	// take effect on restart.
	watcher, err := config.NewWatcher(cfgFile, func(newCfg *config.Config) {
		logger, err := logging.New(logging.Config{
			Level:     newCfg.Telemetry.Logging.Level,
			Format:    newCfg.Telemetry.Logging.Format,
			AddSource: newCfg.Telemetry.Logging.AddSource,
		})
		if err != nil {
			c.logger.Error("reloaded logging config rejected", "error", err)
			return
		}
		slog.SetDefault(logger)
		c.logger.Info("logging configuration applied; other sections take effect on restart")
	}, c.logger)
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Start(); err != nil {
		c.logger.Warn("config watcher disabled", "error", err)
	} else {
		defer watcher.Stop()
	}

	var metricsServer *http.Server
	if cfg.Telemetry.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, c.metrics.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Telemetry.Metrics.ListenAddress,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
		go func() {
			c.logger.Info("metrics endpoint listening",
				"address", cfg.Telemetry.Metrics.ListenAddress,
				"path", cfg.Telemetry.Metrics.Path,
			)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	c.logger.Info("saturn started", "version", Version)
	<-ctx.Done()
	c.logger.Info("shutdown signal received")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			c.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	return nil
}
