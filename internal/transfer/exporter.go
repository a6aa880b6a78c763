// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/olegiv/oarticles/internal/service"
	"github.com/olegiv/oarticles/internal/store"
)

// Exporter handles exporting articles to JSON format.
type Exporter struct {
	svc    *service.Services
	logger *slog.Logger
	now    func() time.Time
}

// NewExporter creates a new Exporter instance.
func NewExporter(svc *service.Services, logger *slog.Logger) *Exporter {
	return &Exporter{
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
}

// Export generates an ExportData structure based on the provided options.
func (e *Exporter) Export(ctx context.Context, opts ExportOptions) (*ExportData, error) {
	data := &ExportData{
		Version:    ExportVersion,
		ExportedAt: e.now().UTC(),
		Topics:     []ExportTopic{},
		Articles:   []ExportArticle{},
	}

	topicMap, err := e.exportTopics(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := e.exportArticles(ctx, data, topicMap, opts); err != nil {
		return nil, err
	}

	e.logger.Info("export completed",
		"topics", len(data.Topics),
		"articles", len(data.Articles),
		"versions", opts.IncludeVersions,
	)
	return data, nil
}

// ExportToWriter exports data as indented JSON to w.
func (e *Exporter) ExportToWriter(ctx context.Context, opts ExportOptions, w io.Writer) error {
	data, err := e.Export(ctx, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// ExportToFile exports data to a JSON file at path.
func (e *Exporter) ExportToFile(ctx context.Context, opts ExportOptions, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing export file: %w", cerr)
		}
	}()
	return e.ExportToWriter(ctx, opts, f)
}

func (e *Exporter) exportTopics(ctx context.Context, data *ExportData) (map[int64]string, error) {
	slugs := make(map[int64]string)
	for offset := 0; ; offset += service.MaxPageSize {
		page, err := e.svc.Topics.List(ctx, service.MaxPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("listing topics: %w", err)
		}
		for _, t := range page.Items {
			slugs[t.ID] = t.Slug
			data.Topics = append(data.Topics, ExportTopic{
				Name:        t.Name,
				Slug:        t.Slug,
				Description: t.Description,
				CreatedAt:   t.CreatedAt,
			})
		}
		if len(page.Items) < service.MaxPageSize {
			return slugs, nil
		}
	}
}

func (e *Exporter) exportArticles(ctx context.Context, data *ExportData, topicMap map[int64]string, opts ExportOptions) error {
	authors := make(map[int64]string)
	for offset := 0; ; offset += service.MaxPageSize {
		page, err := e.svc.Articles.List(ctx, service.ArticleFilter{
			Status: opts.Status,
			Limit:  service.MaxPageSize,
			Offset: offset,
		})
		if err != nil {
			return fmt.Errorf("listing articles: %w", err)
		}
		for _, a := range page.Items {
			ea, err := e.exportArticle(ctx, a, topicMap, authors, opts.IncludeVersions)
			if err != nil {
				return err
			}
			data.Articles = append(data.Articles, ea)
		}
		if len(page.Items) < service.MaxPageSize {
			return nil
		}
	}
}

func (e *Exporter) exportArticle(
	ctx context.Context,
	a store.Article,
	topicMap map[int64]string,
	authors map[int64]string,
	includeVersions bool,
) (ExportArticle, error) {
	ea := ExportArticle{
		Title:       a.Title,
		Slug:        a.Slug,
		Description: a.Description,
		Content:     a.Content,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.TopicID.Valid {
		ea.TopicSlug = topicMap[a.TopicID.Int64]
	}
	if a.AuthorID.Valid {
		ea.AuthorEmail = e.authorEmail(ctx, a.AuthorID.Int64, authors)
	}
	if a.PublishedAt.Valid {
		t := a.PublishedAt.Time
		ea.PublishedAt = &t
	}

	refs, err := e.svc.References.List(ctx, a.ID)
	if err != nil {
		return ExportArticle{}, fmt.Errorf("listing references for %q: %w", a.Slug, err)
	}
	for _, ref := range refs {
		ea.References = append(ea.References, ExportReference{
			Title:       ref.Title,
			URL:         ref.Url.String,
			Description: ref.Description,
		})
	}

	if includeVersions {
		versions, err := e.svc.Versions.ListVersions(ctx, a.ID)
		if err != nil {
			return ExportArticle{}, fmt.Errorf("listing versions for %q: %w", a.Slug, err)
		}
		for _, v := range versions {
			ea.Versions = append(ea.Versions, ExportVersionEntry{
				Number:     v.VersionNumber,
				Title:      v.Title,
				Content:    v.Content,
				ChangeNote: v.ChangeNote,
				CreatedAt:  v.CreatedAt,
			})
		}
	}
	return ea, nil
}

// authorEmail resolves a user ID once per export. Missing users export
// without an author.
func (e *Exporter) authorEmail(ctx context.Context, id int64, cache map[int64]string) string {
	if email, ok := cache[id]; ok {
		return email
	}
	user, err := e.svc.Users.Get(ctx, id)
	if err != nil {
		e.logger.Warn("failed to resolve article author", "user_id", id, "error", err)
	}
	cache[id] = user.Email
	return user.Email
}
