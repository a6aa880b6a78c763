// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olegiv/oarticles/internal/store"
	"github.com/olegiv/oarticles/internal/util"
)

// MaxURLLength bounds reference URLs.
const MaxURLLength = 2048

// ReferenceInput describes a reference to create or replace.
type ReferenceInput struct {
	Title       string
	URL         string
	Description string
}

// ReferenceService manages the references attached to articles. Every
// operation is scoped to one article.
type ReferenceService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewReferenceService creates a ReferenceService.
func NewReferenceService(db *sql.DB, logger *slog.Logger) *ReferenceService {
	return &ReferenceService{
		queries: store.New(db),
		logger:  logger,
		now:     time.Now,
	}
}

func validateReference(in ReferenceInput) (ReferenceInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)

	var v validator
	v.check(in.Title != "", "title", "Title is required")
	v.check(utf8.RuneCountInString(in.Title) <= MaxTitleLength, "title", fmt.Sprintf("Title must be at most %d characters", MaxTitleLength))
	v.check(len(in.URL) <= MaxURLLength, "url", fmt.Sprintf("URL must be at most %d characters", MaxURLLength))
	if in.URL != "" {
		u, err := url.Parse(in.URL)
		v.check(err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "", "url", "URL must be an absolute http or https URL")
	}
	v.check(utf8.RuneCountInString(in.Description) <= MaxDescriptionLength, "description", fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLength))
	return in, v.err()
}

// Create attaches a new reference to an article.
func (s *ReferenceService) Create(ctx context.Context, articleID int64, in ReferenceInput) (store.ArticleReference, error) {
	in, err := validateReference(in)
	if err != nil {
		return store.ArticleReference{}, err
	}

	now := s.now().UTC()
	ref, err := s.queries.CreateReference(ctx, store.CreateReferenceParams{
		ArticleID:   articleID,
		Title:       in.Title,
		Url:         util.NullStringFromValue(in.URL),
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return store.ArticleReference{}, storeErr(err, "creating reference")
	}

	s.logger.Info("reference created", "article_id", articleID, "reference_id", ref.ID)
	return ref, nil
}

// List returns an article's references in creation order.
func (s *ReferenceService) List(ctx context.Context, articleID int64) ([]store.ArticleReference, error) {
	if _, err := s.queries.GetArticleByID(ctx, articleID); err != nil {
		return nil, storeErr(err, "loading article")
	}

	refs, err := s.queries.ListReferences(ctx, articleID)
	if err != nil {
		return nil, storeErr(err, "listing references")
	}
	if refs == nil {
		refs = []store.ArticleReference{}
	}
	return refs, nil
}

// Get returns one reference of an article.
func (s *ReferenceService) Get(ctx context.Context, articleID, id int64) (store.ArticleReference, error) {
	ref, err := s.queries.GetReference(ctx, articleID, id)
	if err != nil {
		return store.ArticleReference{}, storeErr(err, "loading reference")
	}
	return ref, nil
}

// Update replaces a reference's fields.
func (s *ReferenceService) Update(ctx context.Context, articleID, id int64, in ReferenceInput) (store.ArticleReference, error) {
	in, err := validateReference(in)
	if err != nil {
		return store.ArticleReference{}, err
	}

	ref, err := s.queries.UpdateReference(ctx, store.UpdateReferenceParams{
		ID:          id,
		ArticleID:   articleID,
		Title:       in.Title,
		Url:         util.NullStringFromValue(in.URL),
		Description: in.Description,
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		return store.ArticleReference{}, storeErr(err, "updating reference")
	}
	return ref, nil
}

// Delete removes a reference from an article.
func (s *ReferenceService) Delete(ctx context.Context, articleID, id int64) error {
	n, err := s.queries.DeleteReference(ctx, articleID, id)
	if err != nil {
		return storeErr(err, "deleting reference")
	}
	if n == 0 {
		return fmt.Errorf("deleting reference %d: %w", id, ErrNotFound)
	}

	s.logger.Info("reference deleted", "article_id", articleID, "reference_id", id)
	return nil
}
