// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oarticles/internal/middleware"
	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/service"
	"github.com/olegiv/oarticles/internal/store"
)

// CreateArticleRequest represents the request body for creating an article.
type CreateArticleRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Content     string `json:"content"`
	TopicID     *int64 `json:"topic_id"`
	Status      string `json:"status"`
}

// UpdateArticleRequest represents the request body for updating an article.
// Omitted fields are kept; topic_id 0 clears the topic.
type UpdateArticleRequest struct {
	Title       *string `json:"title,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`
	TopicID     *int64  `json:"topic_id,omitempty"`
	Status      *string `json:"status,omitempty"`
	ChangeNote  string  `json:"change_note,omitempty"`
}

// ListArticles handles GET /api/v1/articles.
// Query: topic_id, author_id, status (admin only), q, page, per_page.
// Anonymous and non-admin callers see published articles only.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	topicID, ok := parseInt64Query(r, "topic_id")
	if !ok {
		WriteBadRequest(w, "Invalid topic_id", nil)
		return
	}
	authorID, ok := parseInt64Query(r, "author_id")
	if !ok {
		WriteBadRequest(w, "Invalid author_id", nil)
		return
	}

	p := parsePagination(r)
	filter := service.ArticleFilter{
		TopicID:  topicID,
		AuthorID: authorID,
		Status:   r.URL.Query().Get("status"),
		Search:   strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:    p.PerPage,
		Offset:   p.Offset(),
	}
	if !middleware.GetPrincipal(r).IsAdmin() {
		filter.Status = model.StatusPublished
	}

	list, err := h.svc.Articles.List(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}
	WriteSuccess(w, articleResponses(list.Items), p.Meta(list.Total))
}

// GetArticle handles GET /api/v1/articles/{id}.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	a, ok := h.requireVisibleArticle(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, articleResponse(a), nil)
}

// GetArticleBySlug handles GET /api/v1/articles/slug/{slug}.
// Returns the rendered published article.
func (h *Handler) GetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Articles.GetPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}
	WriteSuccess(w, a, nil)
}

// CreateArticle handles POST /api/v1/articles.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.svc.Articles.Create(r.Context(), service.ArticleInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Content:     req.Content,
		TopicID:     req.TopicID,
		Status:      req.Status,
	}, middleware.PrincipalID(r))
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}
	WriteCreated(w, articleResponse(a))
}

// UpdateArticle handles PUT /api/v1/articles/{id}.
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "article")
	if !ok {
		return
	}
	var req UpdateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.svc.Articles.Update(r.Context(), id, service.ArticleUpdate{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Content:     req.Content,
		TopicID:     req.TopicID,
		Status:      req.Status,
		ChangeNote:  req.ChangeNote,
	}, middleware.PrincipalID(r))
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}
	WriteSuccess(w, articleResponse(a), nil)
}

// DeleteArticle handles DELETE /api/v1/articles/{id}.
// Versions, references and engagement data go with it.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "article")
	if !ok {
		return
	}
	if err := h.svc.Articles.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, "article", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireVisibleArticle loads the {id} article. Unpublished articles are
// reported as missing to non-admin callers.
func (h *Handler) requireVisibleArticle(w http.ResponseWriter, r *http.Request) (store.Article, bool) {
	id, ok := parseIDParam(w, r, "id", "article")
	if !ok {
		return store.Article{}, false
	}

	a, err := h.visibleArticle(r.Context(), id, middleware.GetPrincipal(r).IsAdmin())
	if err != nil {
		h.writeServiceError(w, r, "article", err)
		return store.Article{}, false
	}
	return a, true
}

func (h *Handler) visibleArticle(ctx context.Context, id int64, admin bool) (store.Article, error) {
	a, err := h.svc.Articles.Get(ctx, id)
	if err != nil {
		return store.Article{}, err
	}
	if !admin && a.Status != model.StatusPublished {
		return store.Article{}, service.ErrNotFound
	}
	return a, nil
}
