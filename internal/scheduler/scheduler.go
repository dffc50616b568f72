// Package scheduler runs periodic background tasks using the gocron library.
// The only task today is SQLite maintenance (VACUUM).
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/commitboard/internal/config"
	"github.com/edgard/commitboard/internal/database"
)

// Scheduler manages scheduled tasks using the gocron library.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// New creates a scheduler with the maintenance task registered when enabled.
// A disabled config yields a scheduler whose Start/Stop are no-ops.
func New(logger *slog.Logger, store database.Store, cfg config.MaintenanceConfig) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "scheduler")

	if !cfg.Enabled {
		log.Info("Maintenance scheduler disabled")
		return &Scheduler{logger: log}, nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.CronJob(cfg.Schedule, true), // true = seconds field allowed
		gocron.NewTask(
			func(ctx context.Context) {
				log.Info("Running scheduled task", "task_name", "db_maintenance")
				startTime := time.Now()
				if taskErr := store.RunMaintenance(ctx); taskErr != nil {
					log.Error("Scheduled task failed", "task_name", "db_maintenance", "error", taskErr)
				}
				log.Info("Finished scheduled task", "task_name", "db_maintenance", "duration", time.Since(startTime))
			},
			context.Background(),
		),
		gocron.WithName("db_maintenance"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule maintenance task: %w", err)
	}

	log.Info("Scheduled maintenance task", "schedule", cfg.Schedule)
	return &Scheduler{scheduler: s, logger: log}, nil
}

// Start begins the scheduler's internal ticking.
func (s *Scheduler) Start() {
	if s.scheduler == nil {
		return
	}
	s.scheduler.Start()
	s.logger.Info("Scheduler started")
}

// Stop gracefully stops the scheduler, waiting for running jobs to complete.
func (s *Scheduler) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
		return err
	}
	s.logger.Info("Scheduler stopped gracefully.")
	return nil
}
