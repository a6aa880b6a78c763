// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/oarticles/internal/middleware"
	"github.com/olegiv/oarticles/internal/service"
	"github.com/olegiv/oarticles/internal/util"
)

// BounceRequest represents the body of a bounce event.
type BounceRequest struct {
	TimeOnPage *int64 `json:"time_on_page"`
}

// ShareRequest represents the body of a share event.
type ShareRequest struct {
	Platform string `json:"platform"`
}

// RecordView handles POST /api/v1/articles/{id}/view.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	h.recordEngagement(w, r, func(ctx context.Context, ev service.EngagementEvent) (service.Recorded, error) {
		return h.svc.Engagement.RecordView(ctx, ev)
	})
}

// RecordBounce handles POST /api/v1/articles/{id}/bounce.
// time_on_page is optional.
func (h *Handler) RecordBounce(w http.ResponseWriter, r *http.Request) {
	var req BounceRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	h.recordEngagement(w, r, func(ctx context.Context, ev service.EngagementEvent) (service.Recorded, error) {
		return h.svc.Engagement.RecordBounce(ctx, ev, req.TimeOnPage)
	})
}

// RecordShare handles POST /api/v1/articles/{id}/share.
func (h *Handler) RecordShare(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.recordEngagement(w, r, func(ctx context.Context, ev service.EngagementEvent) (service.Recorded, error) {
		return h.svc.Engagement.RecordShare(ctx, ev, req.Platform)
	})
}

// RecordBookmark handles POST /api/v1/articles/{id}/bookmark.
func (h *Handler) RecordBookmark(w http.ResponseWriter, r *http.Request) {
	h.recordEngagement(w, r, func(ctx context.Context, ev service.EngagementEvent) (service.Recorded, error) {
		return h.svc.Engagement.RecordBookmark(ctx, ev)
	})
}

type recordFunc func(ctx context.Context, ev service.EngagementEvent) (service.Recorded, error)

// recordEngagement builds the event from the request and records it.
// Non-admin callers may only engage with published articles.
func (h *Handler) recordEngagement(w http.ResponseWriter, r *http.Request, record recordFunc) {
	a, ok := h.requireVisibleArticle(w, r)
	if !ok {
		return
	}

	rec, err := record(r.Context(), service.EngagementEvent{
		ArticleID: a.ID,
		UserID:    middleware.PrincipalID(r),
		Client: service.Client{
			IP:        util.ClientIP(r),
			UserAgent: r.UserAgent(),
			Referrer:  r.Referer(),
		},
	})
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}
	WriteCreated(w, rec)
}
