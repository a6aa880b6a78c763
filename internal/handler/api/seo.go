// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/seo"
	"github.com/olegiv/oarticles/internal/service"
)

// Sitemap handles GET /sitemap.xml. It lists every published article and
// every topic under the configured site URL.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	b := seo.NewSitemapBuilder(h.siteURL)
	b.AddHomepage()

	if err := h.addSitemapArticles(r.Context(), b); err != nil {
		h.writeServiceError(w, r, "sitemap", err)
		return
	}
	if err := h.addSitemapTopics(r.Context(), b); err != nil {
		h.writeServiceError(w, r, "sitemap", err)
		return
	}

	out, err := b.Build()
	if err != nil {
		h.writeServiceError(w, r, "sitemap", err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(out)
}

func (h *Handler) addSitemapArticles(ctx context.Context, b *seo.SitemapBuilder) error {
	for offset := 0; ; offset += service.MaxPageSize {
		page, err := h.svc.Articles.List(ctx, service.ArticleFilter{
			Status: model.StatusPublished,
			Limit:  service.MaxPageSize,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		for _, a := range page.Items {
			b.AddArticle(seo.SitemapEntry{Slug: a.Slug, UpdatedAt: a.UpdatedAt})
		}
		if len(page.Items) < service.MaxPageSize {
			return nil
		}
	}
}

func (h *Handler) addSitemapTopics(ctx context.Context, b *seo.SitemapBuilder) error {
	for offset := 0; ; offset += service.MaxPageSize {
		page, err := h.svc.Topics.List(ctx, service.MaxPageSize, offset)
		if err != nil {
			return err
		}
		for _, t := range page.Items {
			b.AddTopic(seo.SitemapEntry{Slug: t.Slug, UpdatedAt: t.UpdatedAt})
		}
		if len(page.Items) < service.MaxPageSize {
			return nil
		}
	}
}

// Robots handles GET /robots.txt.
func (h *Handler) Robots(w http.ResponseWriter, _ *http.Request) {
	body := seo.BuildRobots(seo.RobotsConfig{
		SiteURL:     h.siteURL,
		DisallowAll: h.hideFromCrawlers,
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
