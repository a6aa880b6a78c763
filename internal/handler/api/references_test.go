// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/olegiv/oarticles/internal/model"
)

func TestReferenceCRUD(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAdmin(t)
	a := env.createArticle(t, "Cited", model.StatusPublished)
	base := fmt.Sprintf("%s/articles/%d/references", Prefix, a.ID)

	rec := env.do(t, http.MethodPost, base, ReferenceRequest{Title: "Source", URL: "https://example.com/paper"}, nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = env.do(t, http.MethodPost, base, ReferenceRequest{Title: "Source", URL: "https://example.com/paper"}, cookie)
	expectStatus(t, rec, http.StatusCreated)
	var ref ReferenceResponse
	decodeData(t, rec, &ref)
	if ref.URL == nil || *ref.URL != "https://example.com/paper" {
		t.Errorf("URL = %v", ref.URL)
	}

	rec = env.do(t, http.MethodPost, base, ReferenceRequest{Title: "Bad", URL: "javascript:alert(1)"}, cookie)
	expectStatus(t, rec, http.StatusUnprocessableEntity)
	if _, details := decodeError(t, rec); details["url"] == "" {
		t.Errorf("details = %v", details)
	}

	// Public read of a published article's references.
	rec = env.do(t, http.MethodGet, base, nil, nil)
	expectStatus(t, rec, http.StatusOK)
	var refs []ReferenceResponse
	decodeData(t, rec, &refs)
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}

	refPath := fmt.Sprintf("%s/%d", base, ref.ID)
	rec = env.do(t, http.MethodPut, refPath, ReferenceRequest{Title: "Book", Description: "Chapter 3"}, cookie)
	expectStatus(t, rec, http.StatusOK)
	decodeData(t, rec, &ref)
	if ref.Title != "Book" || ref.URL != nil {
		t.Errorf("updated reference = %+v", ref)
	}

	rec = env.do(t, http.MethodGet, refPath, nil, nil)
	expectStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodDelete, refPath, nil, cookie)
	expectStatus(t, rec, http.StatusNoContent)

	rec = env.do(t, http.MethodGet, refPath, nil, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestReferencesOfDraftAreHidden(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAdmin(t)
	a := env.createArticle(t, "Unfinished", model.StatusDraft)
	base := fmt.Sprintf("%s/articles/%d/references", Prefix, a.ID)

	rec := env.do(t, http.MethodPost, base, ReferenceRequest{Title: "Note"}, cookie)
	expectStatus(t, rec, http.StatusCreated)

	rec = env.do(t, http.MethodGet, base, nil, nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = env.do(t, http.MethodGet, base, nil, cookie)
	expectStatus(t, rec, http.StatusOK)
}

func TestReferenceScopedToArticle(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAdmin(t)
	a := env.createArticle(t, "First", model.StatusPublished)
	b := env.createArticle(t, "Second", model.StatusPublished)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("%s/articles/%d/references", Prefix, a.ID), ReferenceRequest{Title: "Mine"}, cookie)
	expectStatus(t, rec, http.StatusCreated)
	var ref ReferenceResponse
	decodeData(t, rec, &ref)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("%s/articles/%d/references/%d", Prefix, b.ID, ref.ID), nil, nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = env.do(t, http.MethodPost, Prefix+"/articles/9999/references", ReferenceRequest{Title: "Orphan"}, cookie)
	expectStatus(t, rec, http.StatusNotFound)
}
