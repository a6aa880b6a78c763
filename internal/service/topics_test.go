// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopics_CreateAndList(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	for _, name := range []string{"Rust", "Go", "Zig"} {
		_, err := svc.Topics.Create(ctx, TopicInput{Name: "  " + name + "  "})
		require.NoError(t, err)
	}

	page, err := svc.Topics.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Go", page.Items[0].Name)
	assert.Equal(t, "go", page.Items[0].Slug)

	rest, err := svc.Topics.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, "Zig", rest.Items[0].Name)
}

func TestTopics_Validation(t *testing.T) {
	svc, _ := newTestServices(t)

	tests := []struct {
		name  string
		in    TopicInput
		field string
	}{
		{"missing name", TopicInput{}, "name"},
		{"long name", TopicInput{Name: strings.Repeat("n", MaxTopicNameLength+1)}, "name"},
		{"bad slug", TopicInput{Name: "Go", Slug: "Go Lang"}, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Topics.Create(context.Background(), tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestTopics_Conflict(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Topics.Create(ctx, TopicInput{Name: "Go"})
	require.NoError(t, err)
	_, err = svc.Topics.Create(ctx, TopicInput{Name: "Go", Slug: "golang"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTopics_UpdateAndDelete(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	topic, err := svc.Topics.Create(ctx, TopicInput{Name: "Go"})
	require.NoError(t, err)
	a, err := svc.Articles.Create(ctx, ArticleInput{Title: "Slices", TopicID: &topic.ID}, nil)
	require.NoError(t, err)

	updated, err := svc.Topics.Update(ctx, topic.ID, TopicInput{Name: "Golang", Description: "Gophers"})
	require.NoError(t, err)
	assert.Equal(t, "golang", updated.Slug)
	assert.Equal(t, "Gophers", updated.Description)

	_, err = svc.Topics.Update(ctx, 999, TopicInput{Name: "Nope"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Topics.Delete(ctx, topic.ID))
	assert.ErrorIs(t, svc.Topics.Delete(ctx, topic.ID), ErrNotFound)

	got, err := svc.Articles.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.TopicID.Valid, "article survives without its topic")
}
