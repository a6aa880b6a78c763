// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"unicode/utf8"

	"github.com/mileusna/useragent"

	"github.com/olegiv/oarticles/internal/store"
)

// Bounds on stored client strings.
const (
	maxUserAgentLength = 512
	maxReferrerLength  = 2048
)

// Client is the raw request metadata of an engagement event.
type Client struct {
	IP        string
	UserAgent string
	Referrer  string
}

// CountryLookup resolves an IP address to an ISO country code.
type CountryLookup interface {
	LookupCountry(ip string) string
}

// ClientEnricher derives browser, OS, device and country from raw client
// metadata.
type ClientEnricher struct {
	countries CountryLookup
}

// NewClientEnricher creates a ClientEnricher. countries may be nil, in which
// case no country is recorded.
func NewClientEnricher(countries CountryLookup) *ClientEnricher {
	return &ClientEnricher{countries: countries}
}

// Enrich returns the stored form of c.
func (e *ClientEnricher) Enrich(c Client) store.ClientInfo {
	info := store.ClientInfo{
		IPAddress: c.IP,
		UserAgent: truncate(c.UserAgent, maxUserAgentLength),
		Referrer:  truncate(c.Referrer, maxReferrerLength),
	}

	info.Browser, info.OS, info.DeviceType = parseUserAgent(c.UserAgent)

	if e != nil && e.countries != nil && c.IP != "" {
		info.CountryCode = e.countries.LookupCountry(c.IP)
	}
	return info
}

// parseUserAgent extracts browser, OS, and device type from a user agent string.
func parseUserAgent(uaString string) (browser, os, device string) {
	if uaString == "" {
		return "", "", ""
	}

	ua := useragent.Parse(uaString)
	browser, os = ua.Name, ua.OS
	if browser == "" {
		browser = "Unknown"
	}
	if os == "" {
		os = "Unknown"
	}

	switch {
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	case ua.Bot:
		device = "bot"
	default:
		device = "desktop"
	}
	return browser, os, device
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
