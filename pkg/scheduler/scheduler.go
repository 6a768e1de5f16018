package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"steward-hq/saturn/pkg/config"
	"steward-hq/saturn/pkg/rules/engine"
	"steward-hq/saturn/pkg/store"
)

// Scheduler drives periodic evaluation cycles and retention pruning using
// cron expressions.
//
// Cycles never overlap: a tick that arrives while a cycle is still running
// is skipped and logged.
type Scheduler struct {
	engine *engine.Engine
	pruner store.Pruner
	cfg    config.SchedulerConfig

	retentionDays int

	cron    *cron.Cron
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.Mutex
	busy    bool
	running bool
}

// New creates a scheduler for the given engine and pruner. The pruner may
// be nil when the outcome store backend does not support retention.
func New(eng *engine.Engine, pruner store.Pruner, cfg config.SchedulerConfig, retentionDays int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine:        eng,
		pruner:        pruner,
		cfg:           cfg,
		retentionDays: retentionDays,
		cron:          cron.New(),
		logger:        logger.With("component", "scheduler"),
		now:           time.Now,
	}
}

// Start registers the cron jobs and begins scheduling.
//
// With RunOnStart set, one cycle runs synchronously before the first tick
// so a fresh deployment produces output immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already started")
	}

	if _, err := cron.ParseStandard(s.cfg.CycleSchedule); err != nil {
		return fmt.Errorf("invalid cycle schedule %q: %w", s.cfg.CycleSchedule, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.CycleSchedule, func() {
		s.runCycle(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule cycles: %w", err)
	}

	if s.pruner != nil {
		if _, err := cron.ParseStandard(s.cfg.RetentionSchedule); err != nil {
			return fmt.Errorf("invalid retention schedule %q: %w", s.cfg.RetentionSchedule, err)
		}
		if _, err := s.cron.AddFunc(s.cfg.RetentionSchedule, func() {
			s.runRetention(ctx)
		}); err != nil {
			return fmt.Errorf("failed to schedule retention: %w", err)
		}
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started",
		"cycle_schedule", s.cfg.CycleSchedule,
		"retention_schedule", s.cfg.RetentionSchedule,
		"retention_days", s.retentionDays,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	if s.cfg.RunOnStart {
		go s.runCycle(ctx)
	}

	return nil
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		done := s.cron.Stop()
		<-done.Done()
		s.running = false
		s.logger.Info("scheduler stopped")
	}
}

// IsRunning reports whether the scheduler has been started and not stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// runCycle executes one evaluation cycle, skipping if one is in flight.
func (s *Scheduler) runCycle(ctx context.Context) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		s.logger.Warn("cycle tick skipped, previous cycle still running")
		return
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	summary, err := s.engine.RunCycle(ctx)
	if err != nil {
		s.logger.Error("scheduled cycle failed", "error", err)
		return
	}
	if len(summary.Errors) > 0 {
		s.logger.Warn("scheduled cycle completed with rule errors",
			"cycle_id", summary.CycleID,
			"rule_errors", len(summary.Errors),
		)
	}
}

// runRetention prunes alerts and rule runs older than the retention window.
func (s *Scheduler) runRetention(ctx context.Context) {
	cutoff := s.now().AddDate(0, 0, -s.retentionDays)
	s.logger.Info("starting scheduled retention pruning", "cutoff", cutoff)

	deleted, err := s.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
		return
	}

	if deleted > 0 {
		s.logger.Info("scheduled pruning completed", "deleted_count", deleted)
	} else {
		s.logger.Debug("scheduled pruning completed, no records deleted")
	}
}
