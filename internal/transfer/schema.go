// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer exports articles with their topics, references and
// version history as a portable JSON document.
package transfer

import "time"

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// ExportData represents the complete export structure.
type ExportData struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Topics     []ExportTopic   `json:"topics"`
	Articles   []ExportArticle `json:"articles"`
}

// ExportTopic represents a topic.
type ExportTopic struct {
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportArticle represents an article with its references and, optionally,
// its versions. Topic and author are referenced by slug and email.
type ExportArticle struct {
	Title       string               `json:"title"`
	Slug        string               `json:"slug"`
	Description string               `json:"description,omitempty"`
	Content     string               `json:"content"`
	Status      string               `json:"status"`
	TopicSlug   string               `json:"topic,omitempty"`
	AuthorEmail string               `json:"author_email,omitempty"`
	References  []ExportReference    `json:"references,omitempty"`
	Versions    []ExportVersionEntry `json:"versions,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	PublishedAt *time.Time           `json:"published_at,omitempty"`
}

// ExportReference represents an article reference.
type ExportReference struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExportVersionEntry represents one version of an article.
type ExportVersionEntry struct {
	Number     int64     `json:"number"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ChangeNote string    `json:"change_note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ExportOptions selects what to export.
type ExportOptions struct {
	// Status limits articles to one status; empty exports all.
	Status          string
	IncludeVersions bool
}
