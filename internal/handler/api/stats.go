// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oarticles/internal/scheduler"
	"github.com/olegiv/oarticles/internal/service"
)

// RebuildStatsRequest represents the body of a stats rebuild.
type RebuildStatsRequest struct {
	ArticleID *int64 `json:"article_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

func dateRange(r *http.Request) service.DateRange {
	q := r.URL.Query()
	return service.DateRange{From: q.Get("from"), To: q.Get("to")}
}

// StatsOverview handles GET /api/v1/stats/overview?from=&to=.
func (h *Handler) StatsOverview(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Stats.Overview(r.Context(), dateRange(r))
	if err != nil {
		h.writeServiceError(w, r, "stats", err)
		return
	}
	WriteSuccess(w, o, nil)
}

// TopArticles handles GET /api/v1/stats/top-articles?from=&to=&limit=.
func (h *Handler) TopArticles(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			WriteValidationError(w, map[string]string{"limit": "Limit must be a number"})
			return
		}
		limit = n
	}

	items, err := h.svc.Stats.TopArticles(r.Context(), dateRange(r), limit)
	if err != nil {
		h.writeServiceError(w, r, "stats", err)
		return
	}
	WriteSuccess(w, items, nil)
}

// ArticleStats handles GET /api/v1/articles/{id}/stats?from=&to=.
func (h *Handler) ArticleStats(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "article")
	if !ok {
		return
	}
	st, err := h.svc.Stats.ArticleStats(r.Context(), id, dateRange(r))
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}
	WriteSuccess(w, st, nil)
}

// RebuildStats handles POST /api/v1/stats/rebuild.
// It replays the engagement log into the daily aggregates for the range.
func (h *Handler) RebuildStats(w http.ResponseWriter, r *http.Request) {
	var req RebuildStatsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Aggregator.RebuildRange(r.Context(), req.ArticleID, req.From, req.To)
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}
	WriteSuccess(w, res, nil)
}

// ListJobs handles GET /api/v1/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	if h.jobs == nil {
		WriteSuccess(w, []scheduler.JobInfo{}, nil)
		return
	}
	WriteSuccess(w, h.jobs.List(), nil)
}

// TriggerJob handles POST /api/v1/jobs/{name}/run.
// The job runs synchronously. A failure is logged and reported as a 500.
func (h *Handler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		WriteNotFound(w, "Job not found")
		return
	}

	err := h.jobs.TriggerNow(name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		WriteNotFound(w, "Job not found")
	case err != nil:
		h.logger.Error("manual job run failed", "name", name, "error", err, "category", "scheduler")
		WriteError(w, http.StatusInternalServerError, "job_failed", "Job failed", nil)
	default:
		WriteSuccess(w, map[string]string{"name": name, "status": "completed"}, nil)
	}
}

// UpdateScheduleRequest is the body of PUT /api/v1/jobs/{name}/schedule.
type UpdateScheduleRequest struct {
	Schedule string `json:"schedule"`
}

// UpdateJobSchedule handles PUT /api/v1/jobs/{name}/schedule. The override
// lasts until ResetJobSchedule or a restart.
func (h *Handler) UpdateJobSchedule(w http.ResponseWriter, r *http.Request) {
	var req UpdateScheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Schedule) == "" {
		WriteValidationError(w, map[string]string{"schedule": "Schedule is required"})
		return
	}
	h.changeSchedule(w, r, func(reg *scheduler.Registry, name string) error {
		return reg.UpdateSchedule(name, strings.TrimSpace(req.Schedule))
	})
}

// ResetJobSchedule handles DELETE /api/v1/jobs/{name}/schedule.
func (h *Handler) ResetJobSchedule(w http.ResponseWriter, r *http.Request) {
	h.changeSchedule(w, r, (*scheduler.Registry).ResetSchedule)
}

func (h *Handler) changeSchedule(w http.ResponseWriter, r *http.Request, apply func(*scheduler.Registry, string) error) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		WriteNotFound(w, "Job not found")
		return
	}

	err := apply(h.jobs, name)
	if err == nil {
		var info scheduler.JobInfo
		info, err = h.jobs.Get(name)
		if err == nil {
			WriteSuccess(w, info, nil)
			return
		}
	}

	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		WriteNotFound(w, "Job not found")
	case errors.Is(err, scheduler.ErrInvalidSchedule):
		WriteValidationError(w, map[string]string{"schedule": "Schedule must be a valid cron expression"})
	default:
		h.writeServiceError(w, r, "job", err)
	}
}
