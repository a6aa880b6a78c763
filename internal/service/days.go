// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"time"

	"github.com/olegiv/oarticles/internal/store"
)

// DayLayout is the format of the date column of daily stats.
const DayLayout = "2006-01-02"

// DayOf returns the UTC calendar day of t.
func DayOf(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD day as UTC midnight.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

// daysRange returns the timestamp range covering the inclusive days from..to.
func daysRange(from, to time.Time) store.TimeRange {
	return store.TimeRange{Start: from, End: to.AddDate(0, 0, 1)}
}
