// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/service"
	"github.com/olegiv/oarticles/internal/testutil"
)

// seedContent creates one topic, a published article with a reference and
// two versions, and a draft without a topic.
func seedContent(t *testing.T) *service.Services {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	svc := service.New(db, testutil.TestLoggerSilent(), service.Options{})
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "writer@example.com", "admin")

	topic, err := svc.Topics.Create(ctx, service.TopicInput{Name: "Go", Description: "The Go language"})
	require.NoError(t, err)

	published, err := svc.Articles.Create(ctx, service.ArticleInput{
		Title:   "Channels",
		Content: "Do not communicate by sharing memory.",
		TopicID: &topic.ID,
		Status:  model.StatusPublished,
	}, &author.ID)
	require.NoError(t, err)

	content := "Share memory by communicating."
	_, err = svc.Articles.Update(ctx, published.ID, service.ArticleUpdate{Content: &content, ChangeNote: "rephrase"}, &author.ID)
	require.NoError(t, err)

	_, err = svc.References.Create(ctx, published.ID, service.ReferenceInput{
		Title: "Effective Go",
		URL:   "https://go.dev/doc/effective_go",
	})
	require.NoError(t, err)

	_, err = svc.Articles.Create(ctx, service.ArticleInput{Title: "Generics", Content: "Later."}, nil)
	require.NoError(t, err)
	return svc
}

func findArticle(t *testing.T, data *ExportData, slug string) ExportArticle {
	t.Helper()
	for _, a := range data.Articles {
		if a.Slug == slug {
			return a
		}
	}
	t.Fatalf("article %q not exported", slug)
	return ExportArticle{}
}

func TestExport(t *testing.T) {
	svc := seedContent(t)
	e := NewExporter(svc, testutil.TestLoggerSilent())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	data, err := e.Export(context.Background(), ExportOptions{IncludeVersions: true})
	require.NoError(t, err)

	assert.Equal(t, ExportVersion, data.Version)
	assert.Equal(t, fixed, data.ExportedAt)
	require.Len(t, data.Topics, 1)
	assert.Equal(t, "go", data.Topics[0].Slug)
	require.Len(t, data.Articles, 2)

	channels := findArticle(t, data, "channels")
	assert.Equal(t, "go", channels.TopicSlug)
	assert.Equal(t, "writer@example.com", channels.AuthorEmail)
	assert.Equal(t, "Share memory by communicating.", channels.Content)
	assert.NotNil(t, channels.PublishedAt)
	require.Len(t, channels.References, 1)
	assert.Equal(t, "https://go.dev/doc/effective_go", channels.References[0].URL)
	require.Len(t, channels.Versions, 2)
	assert.Equal(t, int64(1), channels.Versions[0].Number)
	assert.Equal(t, "rephrase", channels.Versions[1].ChangeNote)

	generics := findArticle(t, data, "generics")
	assert.Equal(t, model.StatusDraft, generics.Status)
	assert.Empty(t, generics.TopicSlug)
	assert.Empty(t, generics.AuthorEmail)
	assert.Nil(t, generics.PublishedAt)
}

func TestExport_StatusFilterWithoutVersions(t *testing.T) {
	svc := seedContent(t)
	e := NewExporter(svc, testutil.TestLoggerSilent())

	data, err := e.Export(context.Background(), ExportOptions{Status: model.StatusPublished})
	require.NoError(t, err)

	require.Len(t, data.Articles, 1)
	assert.Equal(t, "channels", data.Articles[0].Slug)
	assert.Empty(t, data.Articles[0].Versions)
	assert.Len(t, data.Articles[0].References, 1)
}

func TestExportToWriter(t *testing.T) {
	svc := seedContent(t)
	e := NewExporter(svc, testutil.TestLoggerSilent())

	var buf bytes.Buffer
	require.NoError(t, e.ExportToWriter(context.Background(), ExportOptions{}, &buf))

	var decoded ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Articles, 2)
	assert.Contains(t, buf.String(), "\n  \"topics\"")
}

func TestExportToFile(t *testing.T) {
	svc := seedContent(t)
	e := NewExporter(svc, testutil.TestLoggerSilent())
	path := filepath.Join(t.TempDir(), "export.json")

	require.NoError(t, e.ExportToFile(context.Background(), ExportOptions{}, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded ExportData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ExportVersion, decoded.Version)
}

func TestExportToFile_BadPath(t *testing.T) {
	e := NewExporter(seedContent(t), testutil.TestLoggerSilent())
	err := e.ExportToFile(context.Background(), ExportOptions{}, filepath.Join(t.TempDir(), "missing", "x.json"))
	assert.Error(t, err)
}
