// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/olegiv/oarticles/internal/cache"
	"github.com/olegiv/oarticles/internal/render"
)

// Options configures the service bundle.
type Options struct {
	Cache     cache.Cache
	CacheTTL  time.Duration
	Countries CountryLookup
}

// Services bundles every service over one database.
type Services struct {
	Users      *UserService
	Articles   *ArticleService
	Versions   *VersionManager
	Topics     *TopicService
	References *ReferenceService
	Engagement *EngagementRecorder
	Aggregator *Aggregator
	Stats      *StatsService
}

// New wires the services together.
func New(db *sql.DB, logger *slog.Logger, opts Options) *Services {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	versions := NewVersionManager(db, logger)
	articles := NewArticleService(db, versions, opts.Cache, opts.CacheTTL, render.NewMarkdown(), logger)
	aggregator := NewAggregator(db, logger)

	return &Services{
		Users:      NewUserService(db, logger),
		Articles:   articles,
		Versions:   versions,
		Topics:     NewTopicService(db, articles, logger),
		References: NewReferenceService(db, logger),
		Engagement: NewEngagementRecorder(db, aggregator, NewClientEnricher(opts.Countries), logger),
		Aggregator: aggregator,
		Stats:      NewStatsService(db),
	}
}
