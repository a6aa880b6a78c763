// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the enumerations shared by the store, services
// and handlers: roles, article statuses, share platforms and event kinds.
package model

import "slices"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Article statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// ArticleStatuses lists every valid article status.
var ArticleStatuses = []string{StatusDraft, StatusPublished, StatusArchived}

// IsValidStatus reports whether s is a known article status.
func IsValidStatus(s string) bool {
	return slices.Contains(ArticleStatuses, s)
}

// Share platforms.
const (
	PlatformFacebook = "facebook"
	PlatformTwitter  = "twitter"
	PlatformX        = "x"
	PlatformWhatsApp = "whatsapp"
	PlatformTelegram = "telegram"
	PlatformLinkedIn = "linkedin"
	PlatformEmail    = "email"
	PlatformCopy     = "copy"
	PlatformBookmark = "bookmark"
	PlatformOther    = "other"
)

// SharePlatforms lists every platform accepted on a share event.
var SharePlatforms = []string{
	PlatformFacebook, PlatformTwitter, PlatformX, PlatformWhatsApp, PlatformTelegram,
	PlatformLinkedIn, PlatformEmail, PlatformCopy, PlatformBookmark, PlatformOther,
}

// IsValidPlatform reports whether p is an accepted share platform.
func IsValidPlatform(p string) bool {
	return slices.Contains(SharePlatforms, p)
}

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth       = "auth"
	EventCategoryContent    = "content"
	EventCategoryEngagement = "engagement"
	EventCategoryStats      = "stats"
	EventCategoryUser       = "user"
	EventCategoryConfig     = "config"
	EventCategoryCache      = "cache"
	EventCategorySystem     = "system"
)
