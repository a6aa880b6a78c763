// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON REST API for articles, topics, references,
// engagement events and statistics.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oarticles/internal/cache"
	"github.com/olegiv/oarticles/internal/middleware"
	"github.com/olegiv/oarticles/internal/scheduler"
	"github.com/olegiv/oarticles/internal/service"
	"github.com/olegiv/oarticles/internal/version"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db         *sql.DB
	svc        *service.Services
	sm         *scs.SessionManager
	login      *middleware.LoginProtection
	engagement *middleware.RateLimiter
	cache      cache.Cache
	cacheKind  string
	jobs       *scheduler.Registry
	version    version.Info
	logger     *slog.Logger
	startTime  time.Time

	siteURL          string
	hideFromCrawlers bool
}

// Options configures a Handler. Nil limiters are replaced with defaults.
type Options struct {
	LoginProtection   *middleware.LoginProtection
	EngagementLimiter *middleware.RateLimiter
	Cache             cache.Cache
	CacheKind         string
	Jobs              *scheduler.Registry
	Version           version.Info

	// SiteURL prefixes sitemap links. HideFromCrawlers makes robots.txt
	// disallow everything.
	SiteURL          string
	HideFromCrawlers bool
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, svc *service.Services, sm *scs.SessionManager, logger *slog.Logger, opts Options) *Handler {
	if opts.LoginProtection == nil {
		opts.LoginProtection = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	}
	if opts.EngagementLimiter == nil {
		opts.EngagementLimiter = middleware.NewRateLimiter("engagement", 5, 20)
	}
	return &Handler{
		db:         db,
		svc:        svc,
		sm:         sm,
		login:      opts.LoginProtection,
		engagement: opts.EngagementLimiter,
		cache:      opts.Cache,
		cacheKind:  opts.CacheKind,
		jobs:       opts.Jobs,
		version:    opts.Version,
		logger:     logger,
		startTime:  time.Now(),

		siteURL:          opts.SiteURL,
		hideFromCrawlers: opts.HideFromCrawlers,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	middleware.WriteAPIError(w, statusCode, code, message, details)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeServiceError maps a service error onto the API error envelope.
// entity names the resource in 404 messages.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, entity string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, capitalizeFirst(entity)+" not found")
	case errors.Is(err, service.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", "The "+entity+" conflicts with an existing one or was changed concurrently", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteUnauthorized(w, "Invalid email or password")
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"entity", entity,
			"error", err,
		)
		WriteInternalError(w)
	}
}

// decodeJSON reads a JSON body into dst. It writes a 400 and returns false
// on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, false)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	return decodeBody(w, r, dst, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}

	msg := "Invalid JSON body"
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		msg = "Request body is required"
	case errors.As(err, &maxErr):
		msg = "Request body too large"
	}
	WriteBadRequest(w, msg, map[string]string{"body": err.Error()})
	return false
}
