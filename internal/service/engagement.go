// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/store"
	"github.com/olegiv/oarticles/internal/util"
)

// MaxTimeOnPage caps a bounce's time-on-page sample, in seconds.
const MaxTimeOnPage = 24 * 60 * 60

// EngagementEvent is the common payload of every engagement event.
type EngagementEvent struct {
	ArticleID int64
	UserID    *int64
	Client    Client
}

// Recorded identifies a stored engagement event.
type Recorded struct {
	EventUID  string    `json:"event_uid"`
	ArticleID int64     `json:"article_id"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// EngagementRecorder appends engagement events to the log and folds them
// into the daily aggregates.
type EngagementRecorder struct {
	queries    *store.Queries
	aggregator *Aggregator
	enricher   *ClientEnricher
	logger     *slog.Logger
	now        func() time.Time
}

// NewEngagementRecorder creates an EngagementRecorder.
func NewEngagementRecorder(db *sql.DB, aggregator *Aggregator, enricher *ClientEnricher, logger *slog.Logger) *EngagementRecorder {
	return &EngagementRecorder{
		queries:    store.New(db),
		aggregator: aggregator,
		enricher:   enricher,
		logger:     logger,
		now:        time.Now,
	}
}

func validateEvent(ev EngagementEvent) *validator {
	var v validator
	v.check(ev.ArticleID > 0, "article_id", "Article id must be positive")
	return &v
}

// RecordView logs a view and counts it for today.
func (r *EngagementRecorder) RecordView(ctx context.Context, ev EngagementEvent) (Recorded, error) {
	if err := validateEvent(ev).err(); err != nil {
		return Recorded{}, err
	}

	now := r.now().UTC()
	view, err := r.queries.CreateArticleView(ctx, store.CreateArticleViewParams{
		EventUID:  uuid.NewString(),
		ArticleID: ev.ArticleID,
		UserID:    util.NullInt64FromPtr(ev.UserID),
		Client:    r.enricher.Enrich(ev.Client),
		CreatedAt: now,
	})
	if err != nil {
		return Recorded{}, storeErr(err, "recording view")
	}

	day := DayOf(now)
	if _, err := r.aggregator.ApplyView(ctx, ev.ArticleID, day); err != nil {
		r.aggregateFailed("view", ev.ArticleID, day, view.EventUID, err)
	}

	r.logger.Debug("view recorded",
		"article_id", ev.ArticleID,
		"referrer_domain", util.ReferrerDomain(view.Referrer),
		"device_type", view.DeviceType)
	return Recorded{EventUID: view.EventUID, ArticleID: ev.ArticleID, Date: day, CreatedAt: now}, nil
}

// RecordBounce logs a bounce with an optional time-on-page sample in seconds.
func (r *EngagementRecorder) RecordBounce(ctx context.Context, ev EngagementEvent, timeOnPage *int64) (Recorded, error) {
	v := validateEvent(ev)
	if timeOnPage != nil {
		v.check(*timeOnPage >= 0, "time_on_page", "Time on page must not be negative")
		v.check(*timeOnPage <= MaxTimeOnPage, "time_on_page", "Time on page must be at most one day")
	}
	if err := v.err(); err != nil {
		return Recorded{}, err
	}

	now := r.now().UTC()
	bounce, err := r.queries.CreateArticleBounce(ctx, store.CreateArticleBounceParams{
		EventUID:   uuid.NewString(),
		ArticleID:  ev.ArticleID,
		UserID:     util.NullInt64FromPtr(ev.UserID),
		Client:     r.enricher.Enrich(ev.Client),
		TimeOnPage: util.NullInt64FromPtr(timeOnPage),
		CreatedAt:  now,
	})
	if err != nil {
		return Recorded{}, storeErr(err, "recording bounce")
	}

	day := DayOf(now)
	if _, err := r.aggregator.ApplyBounce(ctx, ev.ArticleID, day, timeOnPage); err != nil {
		r.aggregateFailed("bounce", ev.ArticleID, day, bounce.EventUID, err)
	}
	return Recorded{EventUID: bounce.EventUID, ArticleID: ev.ArticleID, Date: day, CreatedAt: now}, nil
}

// RecordShare logs a share on one of the supported platforms.
func (r *EngagementRecorder) RecordShare(ctx context.Context, ev EngagementEvent, platform string) (Recorded, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))

	v := validateEvent(ev)
	v.check(platform != "", "platform", "Platform is required")
	v.check(platform == "" || model.IsValidPlatform(platform), "platform", "Platform is not supported")
	if err := v.err(); err != nil {
		return Recorded{}, err
	}

	now := r.now().UTC()
	share, err := r.queries.CreateArticleShare(ctx, store.CreateArticleShareParams{
		EventUID:  uuid.NewString(),
		ArticleID: ev.ArticleID,
		UserID:    util.NullInt64FromPtr(ev.UserID),
		Client:    r.enricher.Enrich(ev.Client),
		Platform:  platform,
		CreatedAt: now,
	})
	if err != nil {
		return Recorded{}, storeErr(err, "recording share")
	}

	day := DayOf(now)
	if _, err := r.aggregator.ApplyShare(ctx, ev.ArticleID, day); err != nil {
		r.aggregateFailed("share", ev.ArticleID, day, share.EventUID, err)
	}
	return Recorded{EventUID: share.EventUID, ArticleID: ev.ArticleID, Date: day, CreatedAt: now}, nil
}

// RecordBookmark logs a bookmark, stored as a share on the bookmark platform.
func (r *EngagementRecorder) RecordBookmark(ctx context.Context, ev EngagementEvent) (Recorded, error) {
	return r.RecordShare(ctx, ev, model.PlatformBookmark)
}

// aggregateFailed reports a daily aggregate that missed a logged event.
// The log row stands; reconcile repairs the aggregate.
func (r *EngagementRecorder) aggregateFailed(kind string, articleID int64, day, eventUID string, err error) {
	r.logger.Error("daily aggregate update failed",
		"category", model.EventCategoryStats,
		"event", kind,
		"article_id", articleID,
		"date", day,
		"event_uid", eventUID,
		"error", err)
}
