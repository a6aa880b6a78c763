// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/olegiv/oarticles/internal/cache"
	"github.com/olegiv/oarticles/internal/testutil"
)

// fixedClock returns a clock that reports t and advances by step on each call.
func fixedClock(t time.Time, step time.Duration) func() time.Time {
	cur := t
	return func() time.Time {
		now := cur
		cur = cur.Add(step)
		return now
	}
}

func newTestServices(t *testing.T) (*Services, *sql.DB) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })

	return New(db, testutil.TestLoggerSilent(), Options{Cache: mem, CacheTTL: time.Minute}), db
}

func ptr[T any](v T) *T {
	return &v
}
