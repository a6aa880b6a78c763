// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olegiv/oarticles/internal/store"
	"github.com/olegiv/oarticles/internal/util"
)

// MaxTopicNameLength bounds topic names.
const MaxTopicNameLength = 100

// TopicInput describes a topic to create or replace.
type TopicInput struct {
	Name        string
	Slug        string
	Description string
}

// TopicList is one page of topics plus the total count.
type TopicList struct {
	Items []store.Topic
	Total int64
}

// TopicService manages topics.
type TopicService struct {
	queries  *store.Queries
	articles *ArticleService
	logger   *slog.Logger
	now      func() time.Time
}

// NewTopicService creates a TopicService. articles is used to drop cached
// article reads whose topic was removed and may be nil.
func NewTopicService(db *sql.DB, articles *ArticleService, logger *slog.Logger) *TopicService {
	return &TopicService{
		queries:  store.New(db),
		articles: articles,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *TopicService) normalize(in TopicInput) (TopicInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Name)
	}

	var v validator
	v.check(in.Name != "", "name", "Name is required")
	v.check(utf8.RuneCountInString(in.Name) <= MaxTopicNameLength, "name", fmt.Sprintf("Name must be at most %d characters", MaxTopicNameLength))
	v.check(in.Slug != "", "slug", "Slug is required")
	v.check(in.Slug == "" || util.IsValidSlug(in.Slug), "slug", "Slug must contain only lowercase letters, numbers, and single hyphens")
	v.check(utf8.RuneCountInString(in.Description) <= MaxDescriptionLength, "description", fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLength))
	return in, v.err()
}

// Create inserts a topic. Duplicate names or slugs are reported as ErrConflict.
func (s *TopicService) Create(ctx context.Context, in TopicInput) (store.Topic, error) {
	in, err := s.normalize(in)
	if err != nil {
		return store.Topic{}, err
	}

	now := s.now().UTC()
	t, err := s.queries.CreateTopic(ctx, store.CreateTopicParams{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return store.Topic{}, storeErr(err, "creating topic")
	}

	s.logger.Info("topic created", "topic_id", t.ID, "slug", t.Slug)
	return t, nil
}

// Get returns a topic by id.
func (s *TopicService) Get(ctx context.Context, id int64) (store.Topic, error) {
	t, err := s.queries.GetTopicByID(ctx, id)
	if err != nil {
		return store.Topic{}, storeErr(err, "loading topic")
	}
	return t, nil
}

// List returns topics ordered by name.
func (s *TopicService) List(ctx context.Context, limit, offset int) (TopicList, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	items, err := s.queries.ListTopics(ctx, store.ListTopicsParams{Limit: int64(limit), Offset: int64(offset)})
	if err != nil {
		return TopicList{}, storeErr(err, "listing topics")
	}
	total, err := s.queries.CountTopics(ctx)
	if err != nil {
		return TopicList{}, storeErr(err, "counting topics")
	}
	if items == nil {
		items = []store.Topic{}
	}
	return TopicList{Items: items, Total: total}, nil
}

// Update replaces a topic's fields.
func (s *TopicService) Update(ctx context.Context, id int64, in TopicInput) (store.Topic, error) {
	in, err := s.normalize(in)
	if err != nil {
		return store.Topic{}, err
	}

	t, err := s.queries.UpdateTopic(ctx, store.UpdateTopicParams{
		ID:          id,
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		return store.Topic{}, storeErr(err, "updating topic")
	}

	s.logger.Info("topic updated", "topic_id", t.ID, "slug", t.Slug)
	return t, nil
}

// Delete removes a topic. Its articles keep existing without a topic.
func (s *TopicService) Delete(ctx context.Context, id int64) error {
	n, err := s.queries.DeleteTopic(ctx, id)
	if err != nil {
		return storeErr(err, "deleting topic")
	}
	if n == 0 {
		return fmt.Errorf("deleting topic %d: %w", id, ErrNotFound)
	}

	if s.articles != nil {
		s.articles.InvalidateAll(ctx)
	}
	s.logger.Info("topic deleted", "topic_id", id)
	return nil
}
