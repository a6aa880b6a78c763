// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/oarticles/internal/service"
)

// TopicRequest represents the request body for creating or replacing a topic.
type TopicRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (req TopicRequest) input() service.TopicInput {
	return service.TopicInput{Name: req.Name, Slug: req.Slug, Description: req.Description}
}

// ListTopics handles GET /api/v1/topics.
func (h *Handler) ListTopics(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	list, err := h.svc.Topics.List(r.Context(), p.PerPage, p.Offset())
	if err != nil {
		h.writeServiceError(w, r, "topic", err)
		return
	}
	WriteSuccess(w, list.Items, p.Meta(list.Total))
}

// GetTopic handles GET /api/v1/topics/{id}.
func (h *Handler) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "topic")
	if !ok {
		return
	}
	t, err := h.svc.Topics.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "topic", err)
		return
	}
	WriteSuccess(w, t, nil)
}

// CreateTopic handles POST /api/v1/topics.
func (h *Handler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req TopicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.Topics.Create(r.Context(), req.input())
	if err != nil {
		h.writeServiceError(w, r, "topic", err)
		return
	}
	WriteCreated(w, t)
}

// UpdateTopic handles PUT /api/v1/topics/{id}.
func (h *Handler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "topic")
	if !ok {
		return
	}
	var req TopicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.Topics.Update(r.Context(), id, req.input())
	if err != nil {
		h.writeServiceError(w, r, "topic", err)
		return
	}
	WriteSuccess(w, t, nil)
}

// DeleteTopic handles DELETE /api/v1/topics/{id}.
// Articles in the topic are kept with their topic cleared.
func (h *Handler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "topic")
	if !ok {
		return
	}
	if err := h.svc.Topics.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "topic", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
