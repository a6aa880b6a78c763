// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/store"
	"github.com/olegiv/oarticles/internal/util"
)

// Aggregator maintains per-article daily statistics. Live updates are single
// upsert statements; rebuilds recompute a row from the engagement log.
type Aggregator struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewAggregator creates an Aggregator.
func NewAggregator(db *sql.DB, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		db:      db,
		queries: store.New(db),
		logger:  logger,
		now:     time.Now,
	}
}

// ApplyView counts one view on day.
func (a *Aggregator) ApplyView(ctx context.Context, articleID int64, day string) (store.DailyArticleStat, error) {
	var row store.DailyArticleStat
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		var err error
		row, err = a.queries.IncrementDailyViews(ctx, articleID, day, a.now().UTC())
		return storeErr(err, "applying view")
	})
	return row, err
}

// ApplyShare counts one share on day.
func (a *Aggregator) ApplyShare(ctx context.Context, articleID int64, day string) (store.DailyArticleStat, error) {
	var row store.DailyArticleStat
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		var err error
		row, err = a.queries.IncrementDailyShares(ctx, articleID, day, a.now().UTC())
		return storeErr(err, "applying share")
	})
	return row, err
}

// ApplyBounce counts one bounce on day. A nil seconds counts the bounce
// without moving the average time on page.
func (a *Aggregator) ApplyBounce(ctx context.Context, articleID int64, day string, seconds *int64) (store.DailyArticleStat, error) {
	var row store.DailyArticleStat
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		var err error
		row, err = a.queries.RecordDailyBounce(ctx, articleID, day, util.NullInt64FromPtr(seconds), a.now().UTC())
		return storeErr(err, "applying bounce")
	})
	return row, err
}

// BlendAverage folds sample into a running integer average over n samples,
// rounding half away from zero like SQLite's ROUND.
func BlendAverage(avg, n, sample int64) int64 {
	return int64(math.Round(float64(avg*n+sample) / float64(n+1)))
}

// replayBounces recomputes bounce counters from samples in log order.
func replayBounces(samples []sql.NullInt64) (bounces, timed, avg int64) {
	for _, s := range samples {
		bounces++
		if !s.Valid {
			continue
		}
		avg = BlendAverage(avg, timed, s.Int64)
		timed++
	}
	return bounces, timed, avg
}

// RebuildDay recomputes the (article, day) row from the engagement log in one
// transaction. A day without events loses its row. The returned row is zero
// when it was removed.
func (a *Aggregator) RebuildDay(ctx context.Context, articleID int64, day string) (store.DailyArticleStat, error) {
	start, err := ParseDay(day)
	if err != nil {
		return store.DailyArticleStat{}, fieldError("date", "Date must be formatted YYYY-MM-DD")
	}
	r := daysRange(start, start)

	var row store.DailyArticleStat
	err = withConflictRetry(ctx, func(ctx context.Context) error {
		row = store.DailyArticleStat{}
		return store.RunInTx(ctx, a.db, func(q *store.Queries) error {
			views, err := q.CountArticleViews(ctx, articleID, r)
			if err != nil {
				return storeErr(err, "counting views")
			}
			shares, err := q.CountArticleShares(ctx, articleID, r)
			if err != nil {
				return storeErr(err, "counting shares")
			}
			samples, err := q.ListArticleBounceSamples(ctx, articleID, r)
			if err != nil {
				return storeErr(err, "listing bounces")
			}
			bounces, timed, avg := replayBounces(samples)

			if views == 0 && shares == 0 && bounces == 0 {
				return storeErr(q.DeleteDailyStat(ctx, articleID, day), "deleting daily stat")
			}

			row, err = q.ReplaceDailyStat(ctx, store.ReplaceDailyStatParams{
				ArticleID:         articleID,
				Date:              day,
				Views:             views,
				Shares:            shares,
				Bounces:           bounces,
				TimedBounces:      timed,
				AverageTimeOnPage: avg,
				UpdatedAt:         a.now().UTC(),
			})
			return storeErr(err, "replacing daily stat")
		})
	})
	if err != nil {
		return store.DailyArticleStat{}, err
	}
	return row, nil
}

// RebuildResult summarizes a range rebuild.
type RebuildResult struct {
	Days    int `json:"days"`
	Removed int `json:"removed"`
}

// RebuildRange rebuilds every (article, day) in the inclusive range that has
// logged events or an existing daily row. A nil articleID covers all articles.
func (a *Aggregator) RebuildRange(ctx context.Context, articleID *int64, from, to string) (RebuildResult, error) {
	start, err := ParseDay(from)
	if err != nil {
		return RebuildResult{}, fieldError("from", "Date must be formatted YYYY-MM-DD")
	}
	end, err := ParseDay(to)
	if err != nil {
		return RebuildResult{}, fieldError("to", "Date must be formatted YYYY-MM-DD")
	}
	if end.Before(start) {
		return RebuildResult{}, fieldError("to", "End date must not be before start date")
	}

	if articleID != nil {
		if _, err := a.queries.GetArticleByID(ctx, *articleID); err != nil {
			return RebuildResult{}, storeErr(err, "loading article")
		}
	}

	target := util.NullInt64FromPtr(articleID)
	engaged, err := a.queries.ListEngagedArticleDays(ctx, target, daysRange(start, end))
	if err != nil {
		return RebuildResult{}, storeErr(err, "listing engaged days")
	}
	existing, err := a.queries.ListDailyStatDays(ctx, target, from, to)
	if err != nil {
		return RebuildResult{}, storeErr(err, "listing daily stat days")
	}

	seen := make(map[store.ArticleDay]bool, len(engaged)+len(existing))
	var res RebuildResult
	for _, d := range append(engaged, existing...) {
		if seen[d] {
			continue
		}
		seen[d] = true

		if err := ctx.Err(); err != nil {
			return res, err
		}
		row, err := a.RebuildDay(ctx, d.ArticleID, d.Date)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return res, fmt.Errorf("rebuilding article %d on %s: %w", d.ArticleID, d.Date, err)
		}
		res.Days++
		if row.ID == 0 {
			res.Removed++
		}
	}

	a.logger.Info("daily stats rebuilt",
		"category", model.EventCategoryStats,
		"from", from, "to", to, "days", res.Days, "removed", res.Removed)
	return res, nil
}

// Reconcile rebuilds every article's stats for one day.
func (a *Aggregator) Reconcile(ctx context.Context, day string) (RebuildResult, error) {
	return a.RebuildRange(ctx, nil, day, day)
}

// ReconcileYesterday rebuilds the previous UTC day.
func (a *Aggregator) ReconcileYesterday(ctx context.Context) (RebuildResult, error) {
	return a.Reconcile(ctx, DayOf(a.now().AddDate(0, 0, -1)))
}
