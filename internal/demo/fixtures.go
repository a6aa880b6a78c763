// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package demo seeds sample content and resets demo databases.
package demo

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures is the demo data set.
type Fixtures struct {
	Topics   []TopicFixture   `yaml:"topics"`
	Articles []ArticleFixture `yaml:"articles"`
}

// TopicFixture is a demo topic. An empty slug is derived from the name.
type TopicFixture struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// ArticleFixture is a demo article. Topic refers to a topic slug.
type ArticleFixture struct {
	Title       string             `yaml:"title"`
	Topic       string             `yaml:"topic"`
	Status      string             `yaml:"status"`
	Description string             `yaml:"description"`
	Content     string             `yaml:"content"`
	Revisions   []RevisionFixture  `yaml:"revisions"`
	References  []ReferenceFixture `yaml:"references"`
	Engagement  *EngagementFixture `yaml:"engagement"`
}

// RevisionFixture is a later edit of the article body.
type RevisionFixture struct {
	Note    string `yaml:"note"`
	Content string `yaml:"content"`
}

// ReferenceFixture is an external source cited by an article.
type ReferenceFixture struct {
	Title       string `yaml:"title"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// EngagementFixture is replayed through the engagement recorder.
// A null bounce is a bounce without a time sample.
type EngagementFixture struct {
	Views     int      `yaml:"views"`
	Shares    []string `yaml:"shares"`
	Bookmarks int      `yaml:"bookmarks"`
	Bounces   []*int64 `yaml:"bounces"`
}

// Load returns the embedded demo fixtures.
func Load() (*Fixtures, error) {
	return Parse(fixturesYAML)
}

// Parse decodes fixtures.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}

	for i, a := range f.Articles {
		if a.Title == "" {
			return nil, fmt.Errorf("article %d: title is required", i)
		}
	}
	return &f, nil
}
