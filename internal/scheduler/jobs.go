// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/service"
)

// Job names.
const (
	JobReconcileStats = "reconcile-daily-stats"
	JobPruneEvents    = "prune-system-events"
)

// Reconciler rebuilds yesterday's daily stats from the engagement log.
type Reconciler interface {
	ReconcileYesterday(ctx context.Context) (service.RebuildResult, error)
}

// EventPruner deletes system events created before cutoff.
type EventPruner interface {
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReconcileJob rebuilds the previous UTC day's aggregates so they match
// the event log even if a live update was lost.
func ReconcileJob(r Reconciler, schedule string, logger *slog.Logger) Job {
	return Job{
		Name:        JobReconcileStats,
		Description: "Rebuild yesterday's daily article stats from engagement events",
		Schedule:    schedule,
		Timeout:     10 * time.Minute,
		Run: func(ctx context.Context) error {
			res, err := r.ReconcileYesterday(ctx)
			if err != nil {
				return fmt.Errorf("reconciling daily stats: %w", err)
			}
			logger.Info("daily stats reconciled", "category", model.EventCategoryStats, "days", res.Days, "removed", res.Removed)
			return nil
		},
	}
}

// PruneEventsJob deletes system events older than retentionDays. It runs
// hourly.
func PruneEventsJob(p EventPruner, retentionDays int, now func() time.Time, logger *slog.Logger) Job {
	return Job{
		Name:        JobPruneEvents,
		Description: fmt.Sprintf("Delete system events older than %d days", retentionDays),
		Schedule:    "@hourly",
		Timeout:     time.Minute,
		Run: func(ctx context.Context) error {
			cutoff := now().UTC().AddDate(0, 0, -retentionDays)
			n, err := p.DeleteEventsBefore(ctx, cutoff)
			if err != nil {
				return fmt.Errorf("pruning system events: %w", err)
			}
			if n > 0 {
				logger.Info("pruned system events", "deleted", n, "cutoff", cutoff)
			}
			return nil
		},
	}
}
