// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const clientColumns = `ip_address, user_agent, referrer, browser, os, device_type, country_code`

func clientArgs(c ClientInfo) []any {
	return []any{c.IPAddress, c.UserAgent, c.Referrer, c.Browser, c.OS, c.DeviceType, c.CountryCode}
}

func clientDest(c *ClientInfo) []any {
	return []any{&c.IPAddress, &c.UserAgent, &c.Referrer, &c.Browser, &c.OS, &c.DeviceType, &c.CountryCode}
}

const createArticleView = `
INSERT INTO article_views (event_uid, article_id, user_id, ` + clientColumns + `, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, event_uid, article_id, user_id, ` + clientColumns + `, created_at`

type CreateArticleViewParams struct {
	EventUID  string
	ArticleID int64
	UserID    sql.NullInt64
	Client    ClientInfo
	CreatedAt time.Time
}

func (q *Queries) CreateArticleView(ctx context.Context, arg CreateArticleViewParams) (ArticleView, error) {
	args := append([]any{arg.EventUID, arg.ArticleID, arg.UserID}, clientArgs(arg.Client)...)
	args = append(args, arg.CreatedAt)

	var v ArticleView
	dest := append([]any{&v.ID, &v.EventUID, &v.ArticleID, &v.UserID}, clientDest(&v.ClientInfo)...)
	dest = append(dest, &v.CreatedAt)
	err := q.db.QueryRowContext(ctx, createArticleView, args...).Scan(dest...)
	return v, err
}

const createArticleBounce = `
INSERT INTO article_bounces (event_uid, article_id, user_id, ` + clientColumns + `, time_on_page, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, event_uid, article_id, user_id, ` + clientColumns + `, time_on_page, created_at`

type CreateArticleBounceParams struct {
	EventUID   string
	ArticleID  int64
	UserID     sql.NullInt64
	Client     ClientInfo
	TimeOnPage sql.NullInt64
	CreatedAt  time.Time
}

func (q *Queries) CreateArticleBounce(ctx context.Context, arg CreateArticleBounceParams) (ArticleBounce, error) {
	args := append([]any{arg.EventUID, arg.ArticleID, arg.UserID}, clientArgs(arg.Client)...)
	args = append(args, arg.TimeOnPage, arg.CreatedAt)

	var b ArticleBounce
	dest := append([]any{&b.ID, &b.EventUID, &b.ArticleID, &b.UserID}, clientDest(&b.ClientInfo)...)
	dest = append(dest, &b.TimeOnPage, &b.CreatedAt)
	err := q.db.QueryRowContext(ctx, createArticleBounce, args...).Scan(dest...)
	return b, err
}

const createArticleShare = `
INSERT INTO article_shares (event_uid, article_id, user_id, ` + clientColumns + `, platform, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, event_uid, article_id, user_id, ` + clientColumns + `, platform, created_at`

type CreateArticleShareParams struct {
	EventUID  string
	ArticleID int64
	UserID    sql.NullInt64
	Client    ClientInfo
	Platform  string
	CreatedAt time.Time
}

func (q *Queries) CreateArticleShare(ctx context.Context, arg CreateArticleShareParams) (ArticleShare, error) {
	args := append([]any{arg.EventUID, arg.ArticleID, arg.UserID}, clientArgs(arg.Client)...)
	args = append(args, arg.Platform, arg.CreatedAt)

	var s ArticleShare
	dest := append([]any{&s.ID, &s.EventUID, &s.ArticleID, &s.UserID}, clientDest(&s.ClientInfo)...)
	dest = append(dest, &s.Platform, &s.CreatedAt)
	err := q.db.QueryRowContext(ctx, createArticleShare, args...).Scan(dest...)
	return s, err
}

// TimeRange bounds engagement queries to [Start, End). A zero bound is open.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func (r TimeRange) where(column string) (string, []any) {
	var cond string
	var args []any
	if !r.Start.IsZero() {
		cond += " AND " + column + " >= ?"
		args = append(args, r.Start.UTC())
	}
	if !r.End.IsZero() {
		cond += " AND " + column + " < ?"
		args = append(args, r.End.UTC())
	}
	return cond, args
}

// CountViews counts view log rows in range.
func (q *Queries) CountViews(ctx context.Context, r TimeRange) (int64, error) {
	cond, args := r.where("created_at")
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM article_views WHERE 1=1`+cond, args...).Scan(&n)
	return n, err
}

// CountShares counts share log rows in range.
func (q *Queries) CountShares(ctx context.Context, r TimeRange) (int64, error) {
	cond, args := r.where("created_at")
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM article_shares WHERE 1=1`+cond, args...).Scan(&n)
	return n, err
}

// CountArticleViews counts the view log rows of one article in range.
func (q *Queries) CountArticleViews(ctx context.Context, articleID int64, r TimeRange) (int64, error) {
	cond, args := r.where("created_at")
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM article_views WHERE article_id = ?`+cond,
		append([]any{articleID}, args...)...).Scan(&n)
	return n, err
}

// CountArticleShares counts the share log rows of one article in range.
func (q *Queries) CountArticleShares(ctx context.Context, articleID int64, r TimeRange) (int64, error) {
	cond, args := r.where("created_at")
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM article_shares WHERE article_id = ?`+cond,
		append([]any{articleID}, args...)...).Scan(&n)
	return n, err
}

// ListArticleBounceSamples returns the time-on-page samples of one article's
// bounces in range, in log order. Bounces without a sample are returned as NULL.
func (q *Queries) ListArticleBounceSamples(ctx context.Context, articleID int64, r TimeRange) ([]sql.NullInt64, error) {
	cond, args := r.where("created_at")
	rows, err := q.db.QueryContext(ctx,
		`SELECT time_on_page FROM article_bounces WHERE article_id = ?`+cond+` ORDER BY id ASC`,
		append([]any{articleID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var samples []sql.NullInt64
	for rows.Next() {
		var s sql.NullInt64
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// TopArticleRow is one entry of the view ranking.
type TopArticleRow struct {
	ArticleID int64
	Title     string
	Slug      string
	Views     int64
}

// ListTopArticlesByViews ranks articles by the number of view log rows in range.
func (q *Queries) ListTopArticlesByViews(ctx context.Context, r TimeRange, limit int64) ([]TopArticleRow, error) {
	cond, args := r.where("v.created_at")
	query := `
SELECT a.id, a.title, a.slug, COUNT(v.id) AS views
FROM article_views v
JOIN articles a ON a.id = v.article_id
WHERE 1=1` + cond + `
GROUP BY a.id, a.title, a.slug
ORDER BY views DESC, a.id ASC
LIMIT ?`
	rows, err := q.db.QueryContext(ctx, query, append(args, limit)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []TopArticleRow
	for rows.Next() {
		var t TopArticleRow
		if err := rows.Scan(&t.ArticleID, &t.Title, &t.Slug, &t.Views); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// ArticleDay identifies one (article, day) pair with engagement.
type ArticleDay struct {
	ArticleID int64
	Date      string
}

// ListEngagedArticleDays returns every (article, UTC day) pair that has at
// least one view, bounce or share in range, optionally restricted to one article.
func (q *Queries) ListEngagedArticleDays(ctx context.Context, articleID sql.NullInt64, r TimeRange) ([]ArticleDay, error) {
	var parts []string
	var args []any
	for _, table := range []string{"article_views", "article_bounces", "article_shares"} {
		cond, a := r.where("created_at")
		part := `SELECT article_id, substr(created_at, 1, 10) AS day FROM ` + table + ` WHERE 1=1` + cond
		if articleID.Valid {
			part += ` AND article_id = ?`
			a = append(a, articleID.Int64)
		}
		parts = append(parts, part)
		args = append(args, a...)
	}

	query := parts[0] + " UNION " + parts[1] + " UNION " + parts[2] + " ORDER BY day ASC, article_id ASC"
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
