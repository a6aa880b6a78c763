// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oarticles/internal/testutil"
)

func TestCreateArticle_Validation(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    ArticleInput
		field string
	}{
		{"missing title", ArticleInput{Content: "x"}, "title"},
		{"bad slug", ArticleInput{Title: "T", Slug: "Not A Slug"}, "slug"},
		{"bad status", ArticleInput{Title: "T", Status: "hidden"}, "status"},
		{"unknown topic", ArticleInput{Title: "T", TopicID: ptr(int64(77))}, "topic_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Articles.Create(ctx, tt.in, nil)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestCreateArticle_DuplicateSlug(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Articles.Create(ctx, ArticleInput{Title: "Same"}, nil)
	require.NoError(t, err)

	_, err = svc.Articles.Create(ctx, ArticleInput{Title: "Same"}, nil)
	assert.ErrorIs(t, err, ErrConflict)

	// The failed insert left no orphan version behind.
	assert.Equal(t, 1, testutil.CountRows(t, db, "article_versions"))
}

func TestUpdateArticle_PublishedAt(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	first := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	svc.Articles.now = fixedClock(first, time.Hour)

	a, err := svc.Articles.Create(ctx, ArticleInput{Title: "Pub"}, nil)
	require.NoError(t, err)
	assert.False(t, a.PublishedAt.Valid)

	a, err = svc.Articles.Update(ctx, a.ID, ArticleUpdate{Status: ptr("published")}, nil)
	require.NoError(t, err)
	require.True(t, a.PublishedAt.Valid)
	publishedAt := a.PublishedAt.Time

	a, err = svc.Articles.Update(ctx, a.ID, ArticleUpdate{Status: ptr("archived")}, nil)
	require.NoError(t, err)
	a, err = svc.Articles.Update(ctx, a.ID, ArticleUpdate{Status: ptr("published")}, nil)
	require.NoError(t, err)
	assert.True(t, publishedAt.Equal(a.PublishedAt.Time), "published_at must be kept")
}

func TestUpdateArticle_TopicClear(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	topic, err := svc.Topics.Create(ctx, TopicInput{Name: "Science"})
	require.NoError(t, err)

	a, err := svc.Articles.Create(ctx, ArticleInput{Title: "Atoms", TopicID: &topic.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, topic.ID, a.TopicID.Int64)

	a, err = svc.Articles.Update(ctx, a.ID, ArticleUpdate{TopicID: ptr(int64(0))}, nil)
	require.NoError(t, err)
	assert.False(t, a.TopicID.Valid)

	_, err = svc.Articles.Update(ctx, 9999, ArticleUpdate{Title: ptr("x")}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListArticles_SearchPublished(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	svc.Articles.now = fixedClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Minute)

	inputs := []ArticleInput{
		{Title: "Morning Salah guide", Content: "steps", Status: "published"},
		{Title: "Cooking", Content: "no match here", Status: "published"},
		{Title: "Evening prayers", Description: "all about SALAH times", Status: "published"},
		{Title: "Draft salah notes", Content: "wip", Status: "draft"},
	}
	var ids []int64
	for _, in := range inputs {
		a, err := svc.Articles.Create(ctx, in, nil)
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	list, err := svc.Articles.List(ctx, ArticleFilter{Search: "salah", Status: "published"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	require.Len(t, list.Items, 2)
	assert.Equal(t, ids[2], list.Items[0].ID, "most recently updated first")
	assert.Equal(t, ids[0], list.Items[1].ID)

	// Touching the older one moves it to the front.
	_, err = svc.Articles.Update(ctx, ids[0], ArticleUpdate{Content: ptr("steps, revised")}, nil)
	require.NoError(t, err)

	list, err = svc.Articles.List(ctx, ArticleFilter{Search: "SaLaH", Status: "published", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, ids[0], list.Items[0].ID)

	_, err = svc.Articles.List(ctx, ArticleFilter{Status: "bogus"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDeleteArticle_Cascade(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	a, err := svc.Articles.Create(ctx, ArticleInput{Title: "Doomed", Content: "x", Status: "published"}, nil)
	require.NoError(t, err)
	_, err = svc.References.Create(ctx, a.ID, ReferenceInput{Title: "Source", URL: "https://example.com"})
	require.NoError(t, err)
	_, err = svc.Engagement.RecordView(ctx, EngagementEvent{ArticleID: a.ID})
	require.NoError(t, err)
	_, err = svc.Engagement.RecordBounce(ctx, EngagementEvent{ArticleID: a.ID}, ptr(int64(5)))
	require.NoError(t, err)
	_, err = svc.Engagement.RecordShare(ctx, EngagementEvent{ArticleID: a.ID}, "x")
	require.NoError(t, err)

	require.NoError(t, svc.Articles.Delete(ctx, a.ID))

	for _, table := range []string{"article_references", "article_versions", "article_views", "article_bounces", "article_shares", "daily_article_stats"} {
		assert.Equal(t, 0, testutil.CountRows(t, db, table+" WHERE article_id = ?", a.ID), table)
	}

	_, err = svc.Articles.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Articles.Delete(ctx, a.ID), ErrNotFound)
}

func TestDeleteTopic_ClearsArticleTopic(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	topic, err := svc.Topics.Create(ctx, TopicInput{Name: "History"})
	require.NoError(t, err)
	a, err := svc.Articles.Create(ctx, ArticleInput{Title: "Rome", TopicID: &topic.ID}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Topics.Delete(ctx, topic.ID))

	got, err := svc.Articles.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.TopicID.Valid)
}

func TestGetPublishedBySlug(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	a, err := svc.Articles.Create(ctx, ArticleInput{Title: "Rendered", Content: "# Heading\n\n*hi*<script>x</script>", Status: "published"}, nil)
	require.NoError(t, err)

	pub, err := svc.Articles.GetPublishedBySlug(ctx, a.Slug)
	require.NoError(t, err)
	assert.Contains(t, pub.ContentHTML, "<em>hi</em>")
	assert.NotContains(t, pub.ContentHTML, "<script>")

	// Served from cache until the article changes.
	_, err = db.Exec(`UPDATE articles SET title = 'Sneaky' WHERE id = ?`, a.ID)
	require.NoError(t, err)
	pub, err = svc.Articles.GetPublishedBySlug(ctx, a.Slug)
	require.NoError(t, err)
	assert.Equal(t, "Rendered", pub.Title)

	_, err = svc.Articles.Update(ctx, a.ID, ArticleUpdate{Status: ptr("draft")}, nil)
	require.NoError(t, err)
	_, err = svc.Articles.GetPublishedBySlug(ctx, a.Slug)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Articles.GetPublishedBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTopics_CRUD(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	topic, err := svc.Topics.Create(ctx, TopicInput{Name: "Économie"})
	require.NoError(t, err)
	assert.Equal(t, "economie", topic.Slug)

	_, err = svc.Topics.Create(ctx, TopicInput{Name: "Économie", Slug: "other"})
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := svc.Topics.Update(ctx, topic.ID, TopicInput{Name: "Economy", Description: "money"})
	require.NoError(t, err)
	assert.Equal(t, "economy", updated.Slug)

	list, err := svc.Topics.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	_, err = svc.Topics.Update(ctx, 999, TopicInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Topics.Delete(ctx, 999), ErrNotFound)
}
