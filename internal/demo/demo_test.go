// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package demo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oarticles/internal/service"
	"github.com/olegiv/oarticles/internal/testutil"
)

func TestLoad(t *testing.T) {
	fx, err := Load()
	require.NoError(t, err)
	assert.Len(t, fx.Topics, 3)
	assert.Len(t, fx.Articles, 3)

	first := fx.Articles[0]
	require.NotNil(t, first.Engagement)
	require.Len(t, first.Engagement.Bounces, 4)
	assert.Nil(t, first.Engagement.Bounces[2], "null bounce keeps no sample")
	assert.Equal(t, int64(45), *first.Engagement.Bounces[1])
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "topics: [name: x"},
		{"article without title", "articles:\n  - content: body\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func newServices(t *testing.T) (*service.Services, func(string) int) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	svc := service.New(db, testutil.TestLoggerSilent(), service.Options{})
	return svc, func(from string) int { return testutil.CountRows(t, db, from) }
}

func TestSeed(t *testing.T) {
	svc, count := newServices(t)
	ctx := context.Background()
	logger := testutil.TestLoggerSilent()

	sum, err := Seed(ctx, svc, nil, logger)
	require.NoError(t, err)
	assert.False(t, sum.Skipped)
	assert.Equal(t, 3, sum.Topics)
	assert.Equal(t, 3, sum.Articles)
	assert.Equal(t, 4, sum.Versions)
	assert.Equal(t, 1, sum.References)
	assert.Equal(t, 42+6+6, sum.Events)

	assert.Equal(t, 3, count("topics"))
	assert.Equal(t, 4, count("article_versions"))
	assert.Equal(t, 42, count("article_views"))
	assert.Equal(t, 6, count("article_shares"))
	assert.Equal(t, 6, count("article_bounces"))

	a, err := svc.Articles.GetBySlug(ctx, "getting-started-with-oarticles")
	require.NoError(t, err)

	stats, err := svc.Stats.ArticleStats(ctx, a.ID, service.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Totals.Views)
	assert.Equal(t, int64(5), stats.Totals.Shares)
	assert.Equal(t, int64(4), stats.Totals.Bounces)

	again, err := Seed(ctx, svc, nil, logger)
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Equal(t, 3, count("articles"))
}

func TestSeedFixtures_UnknownTopic(t *testing.T) {
	svc, _ := newServices(t)

	fx, err := Parse([]byte("articles:\n  - title: Orphan\n    topic: nowhere\n"))
	require.NoError(t, err)

	_, err = SeedFixtures(context.Background(), svc, fx, nil, testutil.TestLoggerSilent())
	assert.ErrorContains(t, err, `unknown topic "nowhere"`)
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "demo.db")
	for _, suffix := range []string{"", "-wal", "-shm"} {
		require.NoError(t, os.WriteFile(dbPath+suffix, []byte("x"), 0o644))
	}

	require.NoError(t, Reset(dbPath))
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_, err := os.Stat(dbPath + suffix)
		assert.True(t, os.IsNotExist(err), "expected %s to be removed", dbPath+suffix)
	}

	require.NoError(t, Reset(dbPath), "resetting a missing database is a no-op")
}
