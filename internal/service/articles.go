// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olegiv/oarticles/internal/cache"
	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/render"
	"github.com/olegiv/oarticles/internal/store"
	"github.com/olegiv/oarticles/internal/util"
)

// Listing bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Field limits.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 1000
)

// publishedCachePrefix prefixes cached public article reads.
const publishedCachePrefix = "article:slug:"

// ArticleInput describes a new article.
type ArticleInput struct {
	Title       string
	Slug        string
	Description string
	Content     string
	TopicID     *int64
	Status      string
}

// ArticleUpdate describes a partial article update. Nil fields are kept.
// A TopicID pointing at 0 clears the topic.
type ArticleUpdate struct {
	Title       *string
	Slug        *string
	Description *string
	Content     *string
	TopicID     *int64
	Status      *string
	ChangeNote  string
}

// ArticleFilter selects articles for listing.
type ArticleFilter struct {
	TopicID  *int64
	AuthorID *int64
	Status   string
	Search   string
	Limit    int
	Offset   int
}

// ArticleList is one page of articles plus the total matching count.
type ArticleList struct {
	Items []store.Article
	Total int64
}

// PublishedArticle is the public, rendered view of a published article.
type PublishedArticle struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	ContentHTML string     `json:"content_html"`
	TopicID     *int64     `json:"topic_id"`
	AuthorID    *int64     `json:"author_id"`
	PublishedAt *time.Time `json:"published_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ArticleService manages articles and keeps their version history in step.
type ArticleService struct {
	db        *sql.DB
	queries   *store.Queries
	versions  *VersionManager
	published *cache.TypedCache[PublishedArticle]
	cache     cache.Cache
	markdown  *render.Markdown
	logger    *slog.Logger
	now       func() time.Time
}

// NewArticleService creates an ArticleService. A nil cache falls back to an
// in-process memory cache.
func NewArticleService(db *sql.DB, versions *VersionManager, c cache.Cache, cacheTTL time.Duration, md *render.Markdown, logger *slog.Logger) *ArticleService {
	if c == nil {
		c = cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: cacheTTL})
	}
	return &ArticleService{
		db:        db,
		queries:   store.New(db),
		versions:  versions,
		published: cache.NewTypedCache[PublishedArticle](c, cacheTTL),
		cache:     c,
		markdown:  md,
		logger:    logger,
		now:       time.Now,
	}
}

// Versions exposes the version manager used by the service.
func (s *ArticleService) Versions() *VersionManager {
	return s.versions
}

func validateArticleFields(v *validator, title, slug, description, status string) {
	v.check(strings.TrimSpace(title) != "", "title", "Title is required")
	v.check(utf8.RuneCountInString(title) <= MaxTitleLength, "title", fmt.Sprintf("Title must be at most %d characters", MaxTitleLength))
	v.check(slug != "", "slug", "Slug is required")
	v.check(slug == "" || util.IsValidSlug(slug), "slug", "Slug must contain only lowercase letters, numbers, and single hyphens")
	v.check(utf8.RuneCountInString(description) <= MaxDescriptionLength, "description", fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLength))
	v.check(model.IsValidStatus(status), "status", "Status must be draft, published, or archived")
}

// checkTopic validates that topicID, when set, refers to an existing topic.
func checkTopic(ctx context.Context, q *store.Queries, v *validator, topicID sql.NullInt64) error {
	if !topicID.Valid {
		return nil
	}
	_, err := q.GetTopicByID(ctx, topicID.Int64)
	if errors.Is(err, sql.ErrNoRows) {
		v.check(false, "topic_id", "Topic not found")
		return nil
	}
	return err
}

// Create inserts an article and its first version in one transaction.
func (s *ArticleService) Create(ctx context.Context, in ArticleInput, editorID *int64) (store.Article, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Title)
	}
	if in.Status == "" {
		in.Status = model.StatusDraft
	}

	topicID := sql.NullInt64{}
	if in.TopicID != nil && *in.TopicID != 0 {
		topicID = util.NullInt64FromValue(*in.TopicID)
	}

	var created store.Article
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return store.RunInTx(ctx, s.db, func(q *store.Queries) error {
			var v validator
			validateArticleFields(&v, in.Title, in.Slug, in.Description, in.Status)
			if err := checkTopic(ctx, q, &v, topicID); err != nil {
				return storeErr(err, "checking topic")
			}
			if err := v.err(); err != nil {
				return err
			}

			now := s.now().UTC()
			params := store.CreateArticleParams{
				Title:       in.Title,
				Slug:        in.Slug,
				Description: in.Description,
				Content:     in.Content,
				TopicID:     topicID,
				AuthorID:    util.NullInt64FromPtr(editorID),
				Status:      in.Status,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if in.Status == model.StatusPublished {
				params.PublishedAt = sql.NullTime{Time: now, Valid: true}
			}

			a, err := q.CreateArticle(ctx, params)
			if err != nil {
				return storeErr(err, "creating article")
			}
			if _, err := s.versions.CreateInitialVersion(ctx, q, a, editorID); err != nil {
				return err
			}
			created = a
			return nil
		})
	})
	if err != nil {
		return store.Article{}, err
	}

	s.logger.Info("article created", "article_id", created.ID, "slug", created.Slug, "status", created.Status)
	return created, nil
}

// Get returns an article by id.
func (s *ArticleService) Get(ctx context.Context, id int64) (store.Article, error) {
	a, err := s.queries.GetArticleByID(ctx, id)
	if err != nil {
		return store.Article{}, storeErr(err, "loading article")
	}
	return a, nil
}

// GetBySlug returns an article by slug regardless of status.
func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (store.Article, error) {
	a, err := s.queries.GetArticleBySlug(ctx, slug)
	if err != nil {
		return store.Article{}, storeErr(err, "loading article")
	}
	return a, nil
}

// GetPublishedBySlug returns the rendered public view of a published article.
// Results are cached until the article changes.
func (s *ArticleService) GetPublishedBySlug(ctx context.Context, slug string) (*PublishedArticle, error) {
	return s.published.GetOrSet(ctx, publishedCachePrefix+slug, func() (*PublishedArticle, error) {
		a, err := s.queries.GetArticleBySlug(ctx, slug)
		if err != nil {
			return nil, storeErr(err, "loading article")
		}
		if a.Status != model.StatusPublished {
			return nil, fmt.Errorf("article %q is %s: %w", slug, a.Status, ErrNotFound)
		}

		html, err := s.markdown.Render(a.Content)
		if err != nil {
			return nil, err
		}

		return &PublishedArticle{
			ID:          a.ID,
			Title:       a.Title,
			Slug:        a.Slug,
			Description: a.Description,
			Content:     a.Content,
			ContentHTML: html,
			TopicID:     util.PtrFromNullInt64(a.TopicID),
			AuthorID:    util.PtrFromNullInt64(a.AuthorID),
			PublishedAt: util.PtrFromNullTime(a.PublishedAt),
			UpdatedAt:   a.UpdatedAt,
		}, nil
	})
}

// Update applies a partial update. A new version is written in the same
// transaction when the title or content changed.
func (s *ArticleService) Update(ctx context.Context, id int64, upd ArticleUpdate, editorID *int64) (store.Article, error) {
	var before, after store.Article
	var version *store.ArticleVersion

	err := withConflictRetry(ctx, func(ctx context.Context) error {
		version = nil
		return store.RunInTx(ctx, s.db, func(q *store.Queries) error {
			cur, err := q.GetArticleByID(ctx, id)
			if err != nil {
				return storeErr(err, "loading article")
			}

			next := cur
			if upd.Title != nil {
				next.Title = strings.TrimSpace(*upd.Title)
			}
			if upd.Slug != nil {
				next.Slug = strings.TrimSpace(*upd.Slug)
				if next.Slug == "" {
					next.Slug = util.Slugify(next.Title)
				}
			}
			if upd.Description != nil {
				next.Description = *upd.Description
			}
			if upd.Content != nil {
				next.Content = *upd.Content
			}
			if upd.TopicID != nil {
				next.TopicID = sql.NullInt64{}
				if *upd.TopicID != 0 {
					next.TopicID = util.NullInt64FromValue(*upd.TopicID)
				}
			}
			if upd.Status != nil {
				next.Status = *upd.Status
			}

			var v validator
			validateArticleFields(&v, next.Title, next.Slug, next.Description, next.Status)
			if next.TopicID != cur.TopicID {
				if err := checkTopic(ctx, q, &v, next.TopicID); err != nil {
					return storeErr(err, "checking topic")
				}
			}
			if err := v.err(); err != nil {
				return err
			}

			now := s.now().UTC()
			if next.Status == model.StatusPublished && !next.PublishedAt.Valid {
				next.PublishedAt = sql.NullTime{Time: now, Valid: true}
			}

			updated, err := q.UpdateArticle(ctx, store.UpdateArticleParams{
				ID:          id,
				Title:       next.Title,
				Slug:        next.Slug,
				Description: next.Description,
				Content:     next.Content,
				TopicID:     next.TopicID,
				Status:      next.Status,
				PublishedAt: next.PublishedAt,
				UpdatedAt:   now,
			})
			if err != nil {
				return storeErr(err, "updating article")
			}

			if NeedsVersion(SnapshotOf(cur), SnapshotOf(updated)) {
				note := upd.ChangeNote
				if note == "" {
					note = NoteUpdated
				}
				ver, err := s.versions.CreateVersion(ctx, q, id, SnapshotOf(updated), editorID, note)
				if err != nil {
					return err
				}
				version = &ver
			}

			before, after = cur, updated
			return nil
		})
	})
	if err != nil {
		return store.Article{}, err
	}

	s.invalidate(ctx, before.Slug, after.Slug)

	attrs := []any{"article_id", id, "slug", after.Slug, "status", after.Status}
	if version != nil {
		attrs = append(attrs, "version_number", version.VersionNumber)
	}
	s.logger.Info("article updated", attrs...)
	return after, nil
}

// Delete removes an article. References, versions, engagement events and
// daily stats cascade with it.
func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	var slug string
	err := store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		a, err := q.GetArticleByID(ctx, id)
		if err != nil {
			return storeErr(err, "loading article")
		}
		n, err := q.DeleteArticle(ctx, id)
		if err != nil {
			return storeErr(err, "deleting article")
		}
		if n != 1 {
			return fmt.Errorf("deleting article %d: %w", id, ErrNotFound)
		}
		slug = a.Slug
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, slug)
	s.logger.Info("article deleted", "article_id", id, "slug", slug)
	return nil
}

// List returns a page of articles matching filter, most recently updated first.
func (s *ArticleService) List(ctx context.Context, f ArticleFilter) (ArticleList, error) {
	if f.Status != "" && !model.IsValidStatus(f.Status) {
		return ArticleList{}, fieldError("status", "Status must be draft, published, or archived")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := max(f.Offset, 0)

	params := store.ListArticlesParams{
		TopicID:  util.NullInt64FromPtr(f.TopicID),
		AuthorID: util.NullInt64FromPtr(f.AuthorID),
		Status:   f.Status,
		Search:   f.Search,
		Limit:    int64(limit),
		Offset:   int64(offset),
	}

	items, err := s.queries.ListArticles(ctx, params)
	if err != nil {
		return ArticleList{}, storeErr(err, "listing articles")
	}
	total, err := s.queries.CountArticles(ctx, params)
	if err != nil {
		return ArticleList{}, storeErr(err, "counting articles")
	}
	if items == nil {
		items = []store.Article{}
	}
	return ArticleList{Items: items, Total: total}, nil
}

// Restore rolls the article content back to a past version, recorded as a
// new version.
func (s *ArticleService) Restore(ctx context.Context, id, versionID int64, editorID *int64) (RestoreResult, error) {
	res, err := s.versions.Restore(ctx, id, versionID, editorID)
	if err != nil {
		return RestoreResult{}, err
	}
	s.invalidate(ctx, res.Article.Slug)
	return res, nil
}

// InvalidateAll drops every cached public article.
func (s *ArticleService) InvalidateAll(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, publishedCachePrefix); err != nil {
		s.logger.Warn("failed to invalidate article cache", "category", model.EventCategoryCache, "error", err)
	}
}

func (s *ArticleService) invalidate(ctx context.Context, slugs ...string) {
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		if err := s.published.Delete(ctx, publishedCachePrefix+slug); err != nil {
			s.logger.Warn("failed to invalidate article cache", "category", model.EventCategoryCache, "slug", slug, "error", err)
		}
	}
}
