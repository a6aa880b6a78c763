// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const dailyStatColumns = `id, article_id, date, views, shares, bounces, timed_bounces, average_time_on_page, updated_at`

func scanDailyStat(row interface{ Scan(...any) error }) (DailyArticleStat, error) {
	var d DailyArticleStat
	err := row.Scan(&d.ID, &d.ArticleID, &d.Date, &d.Views, &d.Shares, &d.Bounces,
		&d.TimedBounces, &d.AverageTimeOnPage, &d.UpdatedAt)
	return d, err
}

const incrementDailyViews = `
INSERT INTO daily_article_stats (article_id, date, views, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (article_id, date) DO UPDATE SET
    views = views + 1,
    updated_at = excluded.updated_at
RETURNING ` + dailyStatColumns

// IncrementDailyViews adds one view to the (article, date) row, creating it if needed.
func (q *Queries) IncrementDailyViews(ctx context.Context, articleID int64, date string, now time.Time) (DailyArticleStat, error) {
	return scanDailyStat(q.db.QueryRowContext(ctx, incrementDailyViews, articleID, date, now))
}

const incrementDailyShares = `
INSERT INTO daily_article_stats (article_id, date, shares, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (article_id, date) DO UPDATE SET
    shares = shares + 1,
    updated_at = excluded.updated_at
RETURNING ` + dailyStatColumns

// IncrementDailyShares adds one share to the (article, date) row, creating it if needed.
func (q *Queries) IncrementDailyShares(ctx context.Context, articleID int64, date string, now time.Time) (DailyArticleStat, error) {
	return scanDailyStat(q.db.QueryRowContext(ctx, incrementDailyShares, articleID, date, now))
}

// The excluded row carries the sample in average_time_on_page and a 0/1 flag
// in timed_bounces. Right-hand sides read the pre-update values, so the blend
// uses the old average and old timed_bounces.
const recordDailyBounce = `
INSERT INTO daily_article_stats (article_id, date, bounces, timed_bounces, average_time_on_page, updated_at)
VALUES (?, ?, 1, CASE WHEN ? IS NULL THEN 0 ELSE 1 END, COALESCE(?, 0), ?)
ON CONFLICT (article_id, date) DO UPDATE SET
    bounces = bounces + 1,
    timed_bounces = timed_bounces + excluded.timed_bounces,
    average_time_on_page = CASE
        WHEN excluded.timed_bounces = 0 THEN average_time_on_page
        ELSE CAST(ROUND((average_time_on_page * timed_bounces + excluded.average_time_on_page) * 1.0 / (timed_bounces + 1)) AS INTEGER)
    END,
    updated_at = excluded.updated_at
RETURNING ` + dailyStatColumns

// RecordDailyBounce adds one bounce to the (article, date) row. A valid sample
// is blended into the running average; a NULL sample only counts the bounce.
func (q *Queries) RecordDailyBounce(ctx context.Context, articleID int64, date string, sample sql.NullInt64, now time.Time) (DailyArticleStat, error) {
	return scanDailyStat(q.db.QueryRowContext(ctx, recordDailyBounce, articleID, date, sample, sample, now))
}

const replaceDailyStat = `
INSERT INTO daily_article_stats (article_id, date, views, shares, bounces, timed_bounces, average_time_on_page, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (article_id, date) DO UPDATE SET
    views = excluded.views,
    shares = excluded.shares,
    bounces = excluded.bounces,
    timed_bounces = excluded.timed_bounces,
    average_time_on_page = excluded.average_time_on_page,
    updated_at = excluded.updated_at
RETURNING ` + dailyStatColumns

type ReplaceDailyStatParams struct {
	ArticleID         int64
	Date              string
	Views             int64
	Shares            int64
	Bounces           int64
	TimedBounces      int64
	AverageTimeOnPage int64
	UpdatedAt         time.Time
}

// ReplaceDailyStat overwrites the (article, date) row with recomputed values.
func (q *Queries) ReplaceDailyStat(ctx context.Context, arg ReplaceDailyStatParams) (DailyArticleStat, error) {
	row := q.db.QueryRowContext(ctx, replaceDailyStat,
		arg.ArticleID, arg.Date, arg.Views, arg.Shares, arg.Bounces,
		arg.TimedBounces, arg.AverageTimeOnPage, arg.UpdatedAt)
	return scanDailyStat(row)
}

const deleteDailyStat = `DELETE FROM daily_article_stats WHERE article_id = ? AND date = ?`

func (q *Queries) DeleteDailyStat(ctx context.Context, articleID int64, date string) error {
	_, err := q.db.ExecContext(ctx, deleteDailyStat, articleID, date)
	return err
}

const getDailyStat = `SELECT ` + dailyStatColumns + ` FROM daily_article_stats WHERE article_id = ? AND date = ?`

func (q *Queries) GetDailyStat(ctx context.Context, articleID int64, date string) (DailyArticleStat, error) {
	return scanDailyStat(q.db.QueryRowContext(ctx, getDailyStat, articleID, date))
}

// ListDailyStatsParams selects an article's rows between two inclusive dates.
// Empty dates leave that side open.
type ListDailyStatsParams struct {
	ArticleID int64
	From      string
	To        string
}

func (q *Queries) ListDailyStats(ctx context.Context, arg ListDailyStatsParams) ([]DailyArticleStat, error) {
	query := `SELECT ` + dailyStatColumns + ` FROM daily_article_stats WHERE article_id = ?`
	args := []any{arg.ArticleID}
	if arg.From != "" {
		query += ` AND date >= ?`
		args = append(args, arg.From)
	}
	if arg.To != "" {
		query += ` AND date <= ?`
		args = append(args, arg.To)
	}
	query += ` ORDER BY date ASC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []DailyArticleStat
	for rows.Next() {
		d, err := scanDailyStat(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const countDailyStatsForArticle = `SELECT COUNT(*) FROM daily_article_stats WHERE article_id = ?`

func (q *Queries) CountDailyStatsForArticle(ctx context.Context, articleID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countDailyStatsForArticle, articleID).Scan(&n)
	return n, err
}

// ListDailyStatDays returns the (article, date) pairs of existing rows between
// two inclusive dates, optionally restricted to one article.
func (q *Queries) ListDailyStatDays(ctx context.Context, articleID sql.NullInt64, from, to string) ([]ArticleDay, error) {
	query := `SELECT article_id, date FROM daily_article_stats WHERE date >= ? AND date <= ?`
	args := []any{from, to}
	if articleID.Valid {
		query += ` AND article_id = ?`
		args = append(args, articleID.Int64)
	}
	query += ` ORDER BY date ASC, article_id ASC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ArticleDay
	for rows.Next() {
		var d ArticleDay
		if err := rows.Scan(&d.ArticleID, &d.Date); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
