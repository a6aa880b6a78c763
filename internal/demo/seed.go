// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package demo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/service"
)

// demoClient is the reader attributed to replayed engagement.
var demoClient = service.Client{
	IP:        "203.0.113.10",
	UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	Referrer:  "https://news.example.com/today",
}

// Summary counts what Seed created.
type Summary struct {
	Skipped    bool `json:"skipped"`
	Topics     int  `json:"topics"`
	Articles   int  `json:"articles"`
	Versions   int  `json:"versions"`
	References int  `json:"references"`
	Events     int  `json:"events"`
}

// Seed loads the embedded fixtures through the services. A database that
// already has topics is left untouched.
func Seed(ctx context.Context, svc *service.Services, editorID *int64, logger *slog.Logger) (Summary, error) {
	fx, err := Load()
	if err != nil {
		return Summary{}, err
	}
	return SeedFixtures(ctx, svc, fx, editorID, logger)
}

// SeedFixtures is Seed with caller-supplied fixtures.
func SeedFixtures(ctx context.Context, svc *service.Services, fx *Fixtures, editorID *int64, logger *slog.Logger) (Summary, error) {
	var sum Summary

	existing, err := svc.Topics.List(ctx, 1, 0)
	if err != nil {
		return sum, fmt.Errorf("checking existing topics: %w", err)
	}
	if existing.Total > 0 {
		logger.Info("demo content already present, skipping seed")
		sum.Skipped = true
		return sum, nil
	}

	topics := make(map[string]int64, len(fx.Topics))
	for _, t := range fx.Topics {
		topic, err := svc.Topics.Create(ctx, service.TopicInput{Name: t.Name, Slug: t.Slug, Description: t.Description})
		if err != nil {
			return sum, fmt.Errorf("creating topic %q: %w", t.Name, err)
		}
		topics[topic.Slug] = topic.ID
		sum.Topics++
	}

	for _, a := range fx.Articles {
		if err := seedArticle(ctx, svc, a, topics, editorID, &sum); err != nil {
			return sum, fmt.Errorf("seeding article %q: %w", a.Title, err)
		}
	}

	logger.Info("demo content seeded",
		"category", model.EventCategoryContent,
		"topics", sum.Topics,
		"articles", sum.Articles,
		"versions", sum.Versions,
		"events", sum.Events,
	)
	return sum, nil
}

func seedArticle(ctx context.Context, svc *service.Services, a ArticleFixture, topics map[string]int64, editorID *int64, sum *Summary) error {
	in := service.ArticleInput{
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		Status:      a.Status,
	}
	if a.Topic != "" {
		id, ok := topics[a.Topic]
		if !ok {
			return fmt.Errorf("unknown topic %q", a.Topic)
		}
		in.TopicID = &id
	}

	article, err := svc.Articles.Create(ctx, in, editorID)
	if err != nil {
		return err
	}
	sum.Articles++
	sum.Versions++

	for _, rev := range a.Revisions {
		content := rev.Content
		if _, err := svc.Articles.Update(ctx, article.ID, service.ArticleUpdate{Content: &content, ChangeNote: rev.Note}, editorID); err != nil {
			return fmt.Errorf("applying revision %q: %w", rev.Note, err)
		}
		sum.Versions++
	}

	for _, ref := range a.References {
		if _, err := svc.References.Create(ctx, article.ID, service.ReferenceInput{Title: ref.Title, URL: ref.URL, Description: ref.Description}); err != nil {
			return fmt.Errorf("adding reference %q: %w", ref.URL, err)
		}
		sum.References++
	}

	if a.Engagement == nil {
		return nil
	}
	return replayEngagement(ctx, svc.Engagement, article.ID, *a.Engagement, sum)
}

func replayEngagement(ctx context.Context, rec *service.EngagementRecorder, articleID int64, e EngagementFixture, sum *Summary) error {
	ev := service.EngagementEvent{ArticleID: articleID, Client: demoClient}

	for range e.Views {
		if _, err := rec.RecordView(ctx, ev); err != nil {
			return err
		}
		sum.Events++
	}
	for _, platform := range e.Shares {
		if _, err := rec.RecordShare(ctx, ev, platform); err != nil {
			return err
		}
		sum.Events++
	}
	for range e.Bookmarks {
		if _, err := rec.RecordBookmark(ctx, ev); err != nil {
			return err
		}
		sum.Events++
	}
	for _, seconds := range e.Bounces {
		if _, err := rec.RecordBounce(ctx, ev, seconds); err != nil {
			return err
		}
		sum.Events++
	}
	return nil
}
