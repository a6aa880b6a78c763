// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/olegiv/oarticles/internal/store"
)

// Ranking bounds.
const (
	DefaultTopArticles = 5
	MaxTopArticles     = 50
)

// DateRange is an optional inclusive range of UTC days. Empty ends are open.
type DateRange struct {
	From string
	To   string
}

// parse validates the range and converts it to a timestamp range.
func (r DateRange) parse() (store.TimeRange, error) {
	var tr store.TimeRange
	var v validator
	var from, to time.Time

	if r.From != "" {
		t, err := ParseDay(r.From)
		v.check(err == nil, "from", "Date must be formatted YYYY-MM-DD")
		from = t
		tr.Start = t
	}
	if r.To != "" {
		t, err := ParseDay(r.To)
		v.check(err == nil, "to", "Date must be formatted YYYY-MM-DD")
		to = t
		tr.End = t.AddDate(0, 0, 1)
	}
	if err := v.err(); err != nil {
		return store.TimeRange{}, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return store.TimeRange{}, fieldError("to", "End date must not be before start date")
	}
	return tr, nil
}

// TopArticle is one entry of the view ranking.
type TopArticle struct {
	ArticleID int64  `json:"article_id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Views     int64  `json:"views"`
}

// OverviewStats summarizes engagement across all articles.
type OverviewStats struct {
	TotalViews        int64        `json:"total_views"`
	TotalShares       int64        `json:"total_shares"`
	PublishedArticles int64        `json:"published_articles"`
	TopArticles       []TopArticle `json:"top_articles"`
}

// ArticleStatsTotals sums an article's daily rows.
type ArticleStatsTotals struct {
	Views             int64 `json:"views"`
	Shares            int64 `json:"shares"`
	Bounces           int64 `json:"bounces"`
	TimedBounces      int64 `json:"timed_bounces"`
	AverageTimeOnPage int64 `json:"average_time_on_page"`
}

// ArticleStats is an article's daily statistics over a range.
type ArticleStats struct {
	ArticleID int64                    `json:"article_id"`
	Daily     []store.DailyArticleStat `json:"daily"`
	Totals    ArticleStatsTotals       `json:"totals"`
}

// StatsService answers reporting queries.
type StatsService struct {
	queries *store.Queries
}

// NewStatsService creates a StatsService.
func NewStatsService(db *sql.DB) *StatsService {
	return &StatsService{queries: store.New(db)}
}

// Overview counts views and shares from the event log in range, the number of
// published articles, and the five most viewed articles in range.
func (s *StatsService) Overview(ctx context.Context, r DateRange) (OverviewStats, error) {
	tr, err := r.parse()
	if err != nil {
		return OverviewStats{}, err
	}

	views, err := s.queries.CountViews(ctx, tr)
	if err != nil {
		return OverviewStats{}, storeErr(err, "counting views")
	}
	shares, err := s.queries.CountShares(ctx, tr)
	if err != nil {
		return OverviewStats{}, storeErr(err, "counting shares")
	}
	published, err := s.queries.CountPublishedArticles(ctx)
	if err != nil {
		return OverviewStats{}, storeErr(err, "counting published articles")
	}
	top, err := s.topArticles(ctx, tr, DefaultTopArticles)
	if err != nil {
		return OverviewStats{}, err
	}

	return OverviewStats{
		TotalViews:        views,
		TotalShares:       shares,
		PublishedArticles: published,
		TopArticles:       top,
	}, nil
}

// TopArticles ranks articles by views in range. limit defaults to 5 and must
// not exceed 50.
func (s *StatsService) TopArticles(ctx context.Context, r DateRange, limit int) ([]TopArticle, error) {
	if limit == 0 {
		limit = DefaultTopArticles
	}
	if limit < 1 || limit > MaxTopArticles {
		return nil, fieldError("limit", "Limit must be between 1 and 50")
	}

	tr, err := r.parse()
	if err != nil {
		return nil, err
	}
	return s.topArticles(ctx, tr, limit)
}

func (s *StatsService) topArticles(ctx context.Context, tr store.TimeRange, limit int) ([]TopArticle, error) {
	rows, err := s.queries.ListTopArticlesByViews(ctx, tr, int64(limit))
	if err != nil {
		return nil, storeErr(err, "ranking articles")
	}

	items := make([]TopArticle, 0, len(rows))
	for _, row := range rows {
		items = append(items, TopArticle(row))
	}
	return items, nil
}

// ArticleStats returns an article's daily rows between inclusive dates in
// ascending order, with totals. The article must exist.
func (s *StatsService) ArticleStats(ctx context.Context, articleID int64, r DateRange) (ArticleStats, error) {
	if _, err := r.parse(); err != nil {
		return ArticleStats{}, err
	}
	if _, err := s.queries.GetArticleByID(ctx, articleID); err != nil {
		return ArticleStats{}, storeErr(err, "loading article")
	}

	rows, err := s.queries.ListDailyStats(ctx, store.ListDailyStatsParams{
		ArticleID: articleID,
		From:      r.From,
		To:        r.To,
	})
	if err != nil {
		return ArticleStats{}, storeErr(err, "listing daily stats")
	}
	if rows == nil {
		rows = []store.DailyArticleStat{}
	}

	var totals ArticleStatsTotals
	var weighted int64
	for _, row := range rows {
		totals.Views += row.Views
		totals.Shares += row.Shares
		totals.Bounces += row.Bounces
		totals.TimedBounces += row.TimedBounces
		weighted += row.AverageTimeOnPage * row.TimedBounces
	}
	if totals.TimedBounces > 0 {
		totals.AverageTimeOnPage = int64(math.Round(float64(weighted) / float64(totals.TimedBounces)))
	}

	return ArticleStats{ArticleID: articleID, Daily: rows, Totals: totals}, nil
}
