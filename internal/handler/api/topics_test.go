// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/store"
)

func TestTopicCRUD(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAdmin(t)

	rec := env.do(t, http.MethodPost, Prefix+"/topics", TopicRequest{Name: "Science", Slug: "science"}, nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = env.do(t, http.MethodPost, Prefix+"/topics", TopicRequest{Name: "Science", Slug: "science"}, cookie)
	expectStatus(t, rec, http.StatusCreated)
	var topic store.Topic
	decodeData(t, rec, &topic)

	rec = env.do(t, http.MethodPost, Prefix+"/topics", TopicRequest{Name: "Science", Slug: "science"}, cookie)
	expectStatus(t, rec, http.StatusConflict)

	rec = env.do(t, http.MethodPost, Prefix+"/topics", TopicRequest{Slug: "Not A Slug"}, cookie)
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	rec = env.do(t, http.MethodGet, Prefix+"/topics", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	var topics []store.Topic
	meta := decodeData(t, rec, &topics)
	if meta.Total != 1 || len(topics) != 1 {
		t.Errorf("got %d topics, total %d", len(topics), meta.Total)
	}

	path := fmt.Sprintf("%s/topics/%d", Prefix, topic.ID)
	rec = env.do(t, http.MethodPut, path, TopicRequest{Name: "Sciences", Slug: "sciences", Description: "All of them"}, cookie)
	expectStatus(t, rec, http.StatusOK)
	decodeData(t, rec, &topic)
	if topic.Slug != "sciences" {
		t.Errorf("Slug = %q", topic.Slug)
	}

	rec = env.do(t, http.MethodGet, path, nil, nil)
	expectStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodGet, Prefix+"/topics/9999", nil, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestDeleteTopicClearsArticles(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAdmin(t)

	rec := env.do(t, http.MethodPost, Prefix+"/topics", TopicRequest{Name: "Energy", Slug: "energy"}, cookie)
	expectStatus(t, rec, http.StatusCreated)
	var topic store.Topic
	decodeData(t, rec, &topic)

	rec = env.do(t, http.MethodPost, Prefix+"/articles", CreateArticleRequest{
		Title:   "Tides",
		TopicID: &topic.ID,
		Status:  model.StatusPublished,
	}, cookie)
	expectStatus(t, rec, http.StatusCreated)
	var a ArticleResponse
	decodeData(t, rec, &a)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("%s/topics/%d", Prefix, topic.ID), nil, cookie)
	expectStatus(t, rec, http.StatusNoContent)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("%s/articles/%d", Prefix, a.ID), nil, nil)
	expectStatus(t, rec, http.StatusOK)
	decodeData(t, rec, &a)
	if a.TopicID != nil {
		t.Errorf("TopicID = %d after topic delete, want nil", *a.TopicID)
	}
}
