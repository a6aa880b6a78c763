// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oarticles/internal/middleware"
)

// Prefix is where the API router is mounted.
const Prefix = "/api/v1"

var engagementActions = map[string]bool{
	"view":     true,
	"bounce":   true,
	"share":    true,
	"bookmark": true,
}

// IsEngagementRequest reports whether r is a POST to an engagement endpoint.
// These are sent by readers' browsers from the publishing site and are not
// cookie-authenticated writes.
func IsEngagementRequest(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	rest, ok := strings.CutPrefix(r.URL.Path, Prefix+"/articles/")
	if !ok {
		return false
	}
	id, action, ok := strings.Cut(rest, "/")
	return ok && id != "" && engagementActions[action]
}

// Routes returns the API router. It expects the session manager's
// LoadAndSave to run before it.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.LoadPrincipal(h.sm, h.svc.Users))

	r.Get("/health", h.Health)
	r.Get("/health/live", h.Liveness)

	r.Route("/auth", func(r chi.Router) {
		r.With(h.login.Middleware()).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(middleware.RequireAuth).Get("/me", h.Me)
	})

	r.Route("/articles", func(r chi.Router) {
		r.Get("/", h.ListArticles)
		r.Get("/slug/{slug}", h.GetArticleBySlug)
		r.With(middleware.RequireAdmin).Post("/", h.CreateArticle)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetArticle)
			r.Get("/references", h.ListReferences)
			r.Get("/references/{refID}", h.GetReference)

			// Engagement
			r.Group(func(r chi.Router) {
				r.Use(h.engagement.Middleware())
				r.Post("/view", h.RecordView)
				r.Post("/bounce", h.RecordBounce)
				r.Post("/share", h.RecordShare)
				r.Post("/bookmark", h.RecordBookmark)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Put("/", h.UpdateArticle)
				r.Delete("/", h.DeleteArticle)

				r.Get("/versions", h.ListVersions)
				r.Post("/versions", h.CreateVersion)
				r.Get("/versions/{versionID}", h.GetVersion)
				r.Post("/versions/{versionID}/restore", h.RestoreVersion)

				r.Post("/references", h.CreateReference)
				r.Put("/references/{refID}", h.UpdateReference)
				r.Delete("/references/{refID}", h.DeleteReference)

				r.Get("/stats", h.ArticleStats)
			})
		})
	})

	r.Route("/topics", func(r chi.Router) {
		r.Get("/", h.ListTopics)
		r.Get("/{id}", h.GetTopic)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", h.CreateTopic)
			r.Put("/{id}", h.UpdateTopic)
			r.Delete("/{id}", h.DeleteTopic)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/stats/overview", h.StatsOverview)
		r.Get("/stats/top-articles", h.TopArticles)
		r.Post("/stats/rebuild", h.RebuildStats)

		r.Get("/jobs", h.ListJobs)
		r.Post("/jobs/{name}/run", h.TriggerJob)
		r.Put("/jobs/{name}/schedule", h.UpdateJobSchedule)
		r.Delete("/jobs/{name}/schedule", h.ResetJobSchedule)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})
	return r
}

// MountSite registers the crawler documents at the site root.
func (h *Handler) MountSite(r chi.Router) {
	r.Get("/sitemap.xml", h.Sitemap)
	r.Get("/robots.txt", h.Robots)
}
