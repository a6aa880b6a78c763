// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/oarticles/internal/middleware"
)

// CreateVersionRequest represents the request body for an explicit snapshot.
type CreateVersionRequest struct {
	ChangeNote string `json:"change_note"`
}

// RestoreResponse is returned after rolling an article back.
type RestoreResponse struct {
	Article      ArticleResponse `json:"article"`
	Version      VersionResponse `json:"version"`
	RestoredFrom int64           `json:"restored_from"`
}

// ListVersions handles GET /api/v1/articles/{id}/versions.
// Versions are returned by ascending version number.
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "article")
	if !ok {
		return
	}

	versions, err := h.svc.Versions.ListVersions(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}

	out := make([]VersionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, versionResponse(v))
	}
	WriteSuccess(w, out, nil)
}

// CreateVersion handles POST /api/v1/articles/{id}/versions.
func (h *Handler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "article")
	if !ok {
		return
	}
	var req CreateVersionRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	v, err := h.svc.Versions.Snapshot(r.Context(), id, middleware.PrincipalID(r), req.ChangeNote)
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}
	WriteCreated(w, versionResponse(v))
}

// GetVersion handles GET /api/v1/articles/{id}/versions/{versionID}.
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "article")
	if !ok {
		return
	}
	versionID, ok := parseIDParam(w, r, "versionID", "version")
	if !ok {
		return
	}

	v, err := h.svc.Versions.GetVersion(r.Context(), id, versionID)
	if err != nil {
		h.writeServiceError(w, r, "version", err)
		return
	}
	WriteSuccess(w, versionResponse(v), nil)
}

// RestoreVersion handles POST /api/v1/articles/{id}/versions/{versionID}/restore.
// The restore is itself recorded as a new version.
func (h *Handler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "article")
	if !ok {
		return
	}
	versionID, ok := parseIDParam(w, r, "versionID", "version")
	if !ok {
		return
	}

	res, err := h.svc.Articles.Restore(r.Context(), id, versionID, middleware.PrincipalID(r))
	if err != nil {
		h.writeServiceError(w, r, "version", err)
		return
	}
	WriteSuccess(w, RestoreResponse{
		Article:      articleResponse(res.Article),
		Version:      versionResponse(res.Version),
		RestoredFrom: res.RestoredFrom,
	}, nil)
}
