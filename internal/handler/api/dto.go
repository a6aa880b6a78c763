// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"time"

	"github.com/olegiv/oarticles/internal/store"
	"github.com/olegiv/oarticles/internal/util"
)

// ArticleResponse represents an article in API responses.
type ArticleResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	TopicID     *int64     `json:"topic_id"`
	AuthorID    *int64     `json:"author_id"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func articleResponse(a store.Article) ArticleResponse {
	return ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		Description: a.Description,
		Content:     a.Content,
		TopicID:     util.PtrFromNullInt64(a.TopicID),
		AuthorID:    util.PtrFromNullInt64(a.AuthorID),
		Status:      a.Status,
		PublishedAt: util.PtrFromNullTime(a.PublishedAt),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func articleResponses(items []store.Article) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(items))
	for _, a := range items {
		out = append(out, articleResponse(a))
	}
	return out
}

// VersionResponse represents an article version in API responses.
type VersionResponse struct {
	ID            int64     `json:"id"`
	ArticleID     int64     `json:"article_id"`
	VersionNumber int64     `json:"version_number"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Content       string    `json:"content"`
	CreatedBy     *int64    `json:"created_by"`
	ChangeNote    string    `json:"change_note"`
	CreatedAt     time.Time `json:"created_at"`
}

func versionResponse(v store.ArticleVersion) VersionResponse {
	return VersionResponse{
		ID:            v.ID,
		ArticleID:     v.ArticleID,
		VersionNumber: v.VersionNumber,
		Title:         v.Title,
		Description:   v.Description,
		Content:       v.Content,
		CreatedBy:     util.PtrFromNullInt64(v.CreatedBy),
		ChangeNote:    v.ChangeNote,
		CreatedAt:     v.CreatedAt,
	}
}

// ReferenceResponse represents an article reference in API responses.
type ReferenceResponse struct {
	ID          int64     `json:"id"`
	ArticleID   int64     `json:"article_id"`
	Title       string    `json:"title"`
	URL         *string   `json:"url"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func referenceResponse(ref store.ArticleReference) ReferenceResponse {
	return ReferenceResponse{
		ID:          ref.ID,
		ArticleID:   ref.ArticleID,
		Title:       ref.Title,
		URL:         util.PtrFromNullString(ref.Url),
		Description: ref.Description,
		CreatedAt:   ref.CreatedAt,
		UpdatedAt:   ref.UpdatedAt,
	}
}
