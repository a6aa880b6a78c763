// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/oarticles/internal/service"
)

// ReferenceRequest represents the request body for creating or replacing a
// reference.
type ReferenceRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (req ReferenceRequest) input() service.ReferenceInput {
	return service.ReferenceInput{Title: req.Title, URL: req.URL, Description: req.Description}
}

// ListReferences handles GET /api/v1/articles/{id}/references.
// References of unpublished articles are visible to admins only.
func (h *Handler) ListReferences(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireVisibleArticle(w, r)
	if !ok {
		return
	}

	refs, err := h.svc.References.List(r.Context(), a.ID)
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}

	out := make([]ReferenceResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, referenceResponse(ref))
	}
	WriteSuccess(w, out, nil)
}

// GetReference handles GET /api/v1/articles/{id}/references/{refID}.
func (h *Handler) GetReference(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireVisibleArticle(w, r)
	if !ok {
		return
	}
	refID, ok := parseIDParam(w, r, "refID", "reference")
	if !ok {
		return
	}

	ref, err := h.svc.References.Get(r.Context(), a.ID, refID)
	if err != nil {
		h.writeServiceError(w, r, "reference", err)
		return
	}
	WriteSuccess(w, referenceResponse(ref), nil)
}

// CreateReference handles POST /api/v1/articles/{id}/references.
func (h *Handler) CreateReference(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "article")
	if !ok {
		return
	}
	var req ReferenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ref, err := h.svc.References.Create(r.Context(), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}
	WriteCreated(w, referenceResponse(ref))
}

// UpdateReference handles PUT /api/v1/articles/{id}/references/{refID}.
func (h *Handler) UpdateReference(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "article")
	if !ok {
		return
	}
	refID, ok := parseIDParam(w, r, "refID", "reference")
	if !ok {
		return
	}
	var req ReferenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ref, err := h.svc.References.Update(r.Context(), id, refID, req.input())
	if err != nil {
		h.writeServiceError(w, r, "reference", err)
		return
	}
	WriteSuccess(w, referenceResponse(ref), nil)
}

// DeleteReference handles DELETE /api/v1/articles/{id}/references/{refID}.
func (h *Handler) DeleteReference(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "article")
	if !ok {
		return
	}
	refID, ok := parseIDParam(w, r, "refID", "reference")
	if !ok {
		return
	}

	if err := h.svc.References.Delete(r.Context(), id, refID); err != nil {
		h.writeServiceError(w, r, "reference", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
