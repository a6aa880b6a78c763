// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/oarticles/internal/model"
)

// defaultJobTimeout bounds a job run when Job.Timeout is zero.
const defaultJobTimeout = 5 * time.Minute

// Job is a unit of scheduled work.
type Job struct {
	Name        string
	Description string
	// Schedule is a standard 5-field cron spec or descriptor, evaluated in UTC.
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler owns the cron instance and the registry of jobs.
type Scheduler struct {
	cron     *cron.Cron
	registry *Registry
	logger   *slog.Logger
}

// New creates a scheduler. Overlapping runs of the same job are skipped
// and panics are recovered.
func New(logger *slog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &Scheduler{
		cron:     c,
		registry: newRegistry(c, logger),
		logger:   logger,
	}
}

// Registry exposes the registered jobs.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Add schedules job.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a run func")
	}
	if job.Timeout <= 0 {
		job.Timeout = defaultJobTimeout
	}
	return s.registry.register(job, s.wrap(job))
}

// wrap runs job under its own timeout and logs the outcome.
func (s *Scheduler) wrap(job Job) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), job.Timeout)
		defer cancel()

		start := time.Now()
		err := job.Run(ctx)
		if err != nil {
			s.logger.Error("scheduled job failed",
				"category", model.EventCategorySystem,
				"job", job.Name,
				"duration", time.Since(start),
				"error", err,
			)
			return err
		}
		s.logger.Info("scheduled job finished", "job", job.Name, "duration", time.Since(start))
		return nil
	}
}

// Start begins running jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "category", model.EventCategorySystem, "error", err)...)
}
