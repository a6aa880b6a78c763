// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// parseIDParam reads a positive int64 URL parameter. It writes a 400 and
// returns false when the value is missing or malformed.
func parseIDParam(w http.ResponseWriter, r *http.Request, param, entity string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "Invalid "+entity+" ID", nil)
		return 0, false
	}
	return id, true
}

// pagination is the page window requested by page/per_page query parameters.
type pagination struct {
	Page    int
	PerPage int
}

func (p pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Meta builds response metadata for total matching items.
func (p pagination) Meta(total int64) *Meta {
	pages := int(total) / p.PerPage
	if int(total)%p.PerPage != 0 {
		pages++
	}
	return &Meta{Total: total, Page: p.Page, PerPage: p.PerPage, Pages: pages}
}

// parsePagination reads page (default 1) and per_page (default 20, at most
// 100). Invalid values fall back to the defaults.
func parsePagination(r *http.Request) pagination {
	return pagination{
		Page:    parseIntQuery(r, "page", 1, 1, 0),
		PerPage: parseIntQuery(r, "per_page", defaultPerPage, 1, maxPerPage),
	}
}

// parseIntQuery returns defaultVal when the parameter is missing, invalid,
// below minVal, or above a positive maxVal.
func parseIntQuery(r *http.Request, param string, defaultVal, minVal, maxVal int) int {
	str := r.URL.Query().Get(param)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil || val < minVal || (maxVal > 0 && val > maxVal) {
		return defaultVal
	}
	return val
}

// parseInt64Query reads an optional positive int64 query parameter.
// ok is false when the parameter is present but malformed.
func parseInt64Query(r *http.Request, param string) (val *int64, ok bool) {
	str := r.URL.Query().Get(param)
	if str == "" {
		return nil, true
	}
	n, err := strconv.ParseInt(str, 10, 64)
	if err != nil || n <= 0 {
		return nil, false
	}
	return &n, true
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
