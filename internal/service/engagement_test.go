// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oarticles/internal/store"
	"github.com/olegiv/oarticles/internal/testutil"
)

var engagementDay = time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC)

type fakeCountries map[string]string

func (f fakeCountries) LookupCountry(ip string) string {
	return f[ip]
}

func TestRecordView_Concurrent(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	svc.Engagement.now = func() time.Time { return engagementDay }
	a := testutil.CreateArticle(t, db, "Busy", "busy", "published")

	const viewers = 100
	var wg sync.WaitGroup
	errs := make(chan error, viewers)
	for range viewers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Engagement.RecordView(ctx, EngagementEvent{ArticleID: a.ID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	row, err := store.New(db).GetDailyStat(ctx, a.ID, DayOf(engagementDay))
	require.NoError(t, err)
	assert.Equal(t, int64(viewers), row.Views)
	assert.Equal(t, viewers, testutil.CountRows(t, db, "article_views WHERE article_id = ?", a.ID))
}

func TestRecordBounce_RunningAverage(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	svc.Engagement.now = fixedClock(engagementDay, time.Second)
	a := testutil.CreateArticle(t, db, "Bouncy", "bouncy", "published")

	for _, s := range []int64{10, 20, 30} {
		_, err := svc.Engagement.RecordBounce(ctx, EngagementEvent{ArticleID: a.ID}, ptr(s))
		require.NoError(t, err)
	}

	q := store.New(db)
	row, err := q.GetDailyStat(ctx, a.ID, DayOf(engagementDay))
	require.NoError(t, err)
	assert.Equal(t, int64(3), row.Bounces)
	assert.Equal(t, int64(20), row.AverageTimeOnPage)

	_, err = svc.Engagement.RecordBounce(ctx, EngagementEvent{ArticleID: a.ID}, ptr(int64(0)))
	require.NoError(t, err)

	row, err = q.GetDailyStat(ctx, a.ID, DayOf(engagementDay))
	require.NoError(t, err)
	assert.Equal(t, int64(4), row.Bounces)
	assert.Equal(t, int64(15), row.AverageTimeOnPage)

	// A bounce without a sample is counted but not averaged.
	_, err = svc.Engagement.RecordBounce(ctx, EngagementEvent{ArticleID: a.ID}, nil)
	require.NoError(t, err)

	row, err = q.GetDailyStat(ctx, a.ID, DayOf(engagementDay))
	require.NoError(t, err)
	assert.Equal(t, int64(5), row.Bounces)
	assert.Equal(t, int64(4), row.TimedBounces)
	assert.Equal(t, int64(15), row.AverageTimeOnPage)
}

func TestRecordEngagement_Validation(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	a := testutil.CreateArticle(t, db, "Valid", "valid", "published")

	tests := []struct {
		name  string
		run   func() error
		field string
	}{
		{"zero article", func() error {
			_, err := svc.Engagement.RecordView(ctx, EngagementEvent{})
			return err
		}, "article_id"},
		{"negative time on page", func() error {
			_, err := svc.Engagement.RecordBounce(ctx, EngagementEvent{ArticleID: a.ID}, ptr(int64(-1)))
			return err
		}, "time_on_page"},
		{"empty platform", func() error {
			_, err := svc.Engagement.RecordShare(ctx, EngagementEvent{ArticleID: a.ID}, "  ")
			return err
		}, "platform"},
		{"unknown platform", func() error {
			_, err := svc.Engagement.RecordShare(ctx, EngagementEvent{ArticleID: a.ID}, "myspace")
			return err
		}, "platform"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	assert.Equal(t, 0, testutil.CountRows(t, db, "article_bounces"))
	assert.Equal(t, 0, testutil.CountRows(t, db, "article_shares"))
}

func TestRecordEngagement_MissingArticle(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Engagement.RecordView(ctx, EngagementEvent{ArticleID: 4242})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Engagement.RecordShare(ctx, EngagementEvent{ArticleID: 4242}, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 0, testutil.CountRows(t, db, "daily_article_stats"))
}

func TestRecordShareAndBookmark(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()
	svc.Engagement.now = fixedClock(engagementDay, time.Second)
	a := testutil.CreateArticle(t, db, "Shared", "shared", "published")

	rec, err := svc.Engagement.RecordShare(ctx, EngagementEvent{ArticleID: a.ID}, "Telegram")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.EventUID)
	assert.Equal(t, "2026-05-14", rec.Date)

	_, err = svc.Engagement.RecordBookmark(ctx, EngagementEvent{ArticleID: a.ID})
	require.NoError(t, err)

	var platforms []string
	rows, err := db.Query("SELECT platform FROM article_shares WHERE article_id = ? ORDER BY id", a.ID)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var p string
		require.NoError(t, rows.Scan(&p))
		platforms = append(platforms, p)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"telegram", "bookmark"}, platforms)

	row, err := store.New(db).GetDailyStat(ctx, a.ID, "2026-05-14")
	require.NoError(t, err)
	assert.Equal(t, int64(2), row.Shares)
}

func TestRecordView_StoresClientMetadata(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	logger := testutil.TestLoggerSilent()
	enricher := NewClientEnricher(fakeCountries{"203.0.113.7": "DE"})
	rec := NewEngagementRecorder(db, NewAggregator(db, logger), enricher, logger)
	a := testutil.CreateArticle(t, db, "Meta", "meta", "published")
	user := testutil.CreateUser(t, db, "reader@example.com", "user")

	_, err := rec.RecordView(context.Background(), EngagementEvent{
		ArticleID: a.ID,
		UserID:    &user.ID,
		Client: Client{
			IP:        "203.0.113.7",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			Referrer:  "https://news.example.org/today",
		},
	})
	require.NoError(t, err)

	var browser, device, country, referrer string
	var userID int64
	err = db.QueryRow(`SELECT browser, device_type, country_code, referrer, user_id FROM article_views WHERE article_id = ?`, a.ID).
		Scan(&browser, &device, &country, &referrer, &userID)
	require.NoError(t, err)
	assert.Equal(t, "Firefox", browser)
	assert.Equal(t, "desktop", device)
	assert.Equal(t, "DE", country)
	assert.Equal(t, "https://news.example.org/today", referrer)
	assert.Equal(t, user.ID, userID)
}

func TestParseUserAgent_DeviceTypes(t *testing.T) {
	tests := []struct {
		name   string
		ua     string
		device string
	}{
		{"empty", "", ""},
		{"desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", "desktop"},
		{"mobile", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Mobile/15E148 Safari/604.1", "mobile"},
		{"tablet", "Mozilla/5.0 (iPad; CPU OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Mobile/15E148 Safari/604.1", "tablet"},
		{"bot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", "bot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, device := parseUserAgent(tt.ua)
			if device != tt.device {
				t.Errorf("parseUserAgent(%q) device = %q, want %q", tt.ua, device, tt.device)
			}
		})
	}
}
