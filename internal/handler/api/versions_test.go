// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/olegiv/oarticles/internal/model"
)

func TestVersionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAdmin(t)
	a := env.createArticle(t, "First Title", model.StatusDraft)
	base := fmt.Sprintf("%s/articles/%d", Prefix, a.ID)

	title := "Second Title"
	rec := env.do(t, http.MethodPut, base, UpdateArticleRequest{Title: &title}, cookie)
	expectStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodGet, base+"/versions", nil, cookie)
	expectStatus(t, rec, http.StatusOK)
	var versions []VersionResponse
	decodeData(t, rec, &versions)
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2", len(versions))
	}
	if versions[0].VersionNumber != 1 || versions[1].VersionNumber != 2 {
		t.Errorf("version numbers = %d, %d", versions[0].VersionNumber, versions[1].VersionNumber)
	}

	rec = env.do(t, http.MethodGet, fmt.Sprintf("%s/versions/%d", base, versions[0].ID), nil, cookie)
	expectStatus(t, rec, http.StatusOK)
	var v1 VersionResponse
	decodeData(t, rec, &v1)
	if v1.Title != "First Title" {
		t.Errorf("v1 title = %q", v1.Title)
	}

	rec = env.do(t, http.MethodPost, fmt.Sprintf("%s/versions/%d/restore", base, v1.ID), nil, cookie)
	expectStatus(t, rec, http.StatusOK)
	var restored RestoreResponse
	decodeData(t, rec, &restored)
	if restored.RestoredFrom != 1 {
		t.Errorf("RestoredFrom = %d, want 1", restored.RestoredFrom)
	}
	if restored.Version.VersionNumber != 3 {
		t.Errorf("restore created version %d, want 3", restored.Version.VersionNumber)
	}
	if restored.Article.Title != "First Title" {
		t.Errorf("article title = %q after restore", restored.Article.Title)
	}

	rec = env.do(t, http.MethodPost, base+"/versions", CreateVersionRequest{ChangeNote: "checkpoint"}, cookie)
	expectStatus(t, rec, http.StatusCreated)
	var snap VersionResponse
	decodeData(t, rec, &snap)
	if snap.VersionNumber != 4 || snap.ChangeNote != "checkpoint" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestVersionErrors(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAdmin(t)
	a := env.createArticle(t, "Owner", model.StatusPublished)
	other := env.createArticle(t, "Other", model.StatusPublished)

	otherVersions, err := env.svc.Versions.ListVersions(t.Context(), other.ID)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		cookie *http.Cookie
		want   int
	}{
		{"anonymous list", http.MethodGet, fmt.Sprintf("%s/articles/%d/versions", Prefix, a.ID), nil, http.StatusUnauthorized},
		{"missing article", http.MethodGet, Prefix + "/articles/9999/versions", cookie, http.StatusNotFound},
		{"foreign version", http.MethodGet, fmt.Sprintf("%s/articles/%d/versions/%d", Prefix, a.ID, otherVersions[0].ID), cookie, http.StatusNotFound},
		{"restore foreign version", http.MethodPost, fmt.Sprintf("%s/articles/%d/versions/%d/restore", Prefix, a.ID, otherVersions[0].ID), cookie, http.StatusNotFound},
		{"bad version id", http.MethodGet, fmt.Sprintf("%s/articles/%d/versions/x", Prefix, a.ID), cookie, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, nil, tt.cookie)
			expectStatus(t, rec, tt.want)
		})
	}
}
