// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/store"
	"github.com/olegiv/oarticles/internal/util"
)

// Change notes recorded on automatically created versions.
const (
	NoteCreated = "created"
	NoteUpdated = "updated"
)

// MaxChangeNoteLength bounds editor-supplied change notes.
const MaxChangeNoteLength = 500

// Snapshot is the versioned subset of an article.
type Snapshot struct {
	Title       string
	Description string
	Content     string
}

// SnapshotOf extracts the versioned fields of a.
func SnapshotOf(a store.Article) Snapshot {
	return Snapshot{Title: a.Title, Description: a.Description, Content: a.Content}
}

// NeedsVersion reports whether moving from before to after warrants a new
// version. Description-only edits do not.
func NeedsVersion(before, after Snapshot) bool {
	return before.Title != after.Title || before.Content != after.Content
}

// RestoreResult is the outcome of restoring an article to a past version.
type RestoreResult struct {
	Article store.Article
	Version store.ArticleVersion
	// RestoredFrom is the version number whose content was carried forward.
	RestoredFrom int64
}

// VersionManager maintains the append-only version history of articles.
// Version numbers are allocated by a single INSERT ... SELECT MAX()+1 guarded
// by UNIQUE(article_id, version_number); a lost race surfaces as ErrConflict
// and callers retry the whole transaction once.
type VersionManager struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewVersionManager creates a VersionManager.
func NewVersionManager(db *sql.DB, logger *slog.Logger) *VersionManager {
	return &VersionManager{
		db:      db,
		queries: store.New(db),
		logger:  logger,
		now:     time.Now,
	}
}

// CreateInitialVersion records version 1 of a freshly inserted article.
// q must belong to the transaction that inserted the article.
func (m *VersionManager) CreateInitialVersion(ctx context.Context, q *store.Queries, a store.Article, editorID *int64) (store.ArticleVersion, error) {
	v, err := m.CreateVersion(ctx, q, a.ID, SnapshotOf(a), editorID, NoteCreated)
	if err != nil {
		return store.ArticleVersion{}, err
	}
	if v.VersionNumber != 1 {
		m.logger.Error("new article did not start at version 1",
			"category", model.EventCategoryContent,
			"article_id", a.ID, "version_number", v.VersionNumber)
		return store.ArticleVersion{}, fmt.Errorf("article %d initial version is %d: %w", a.ID, v.VersionNumber, ErrInconsistent)
	}
	return v, nil
}

// CreateVersion appends the next version of an article with the given
// snapshot. q should belong to the caller's transaction.
func (m *VersionManager) CreateVersion(ctx context.Context, q *store.Queries, articleID int64, snap Snapshot, editorID *int64, note string) (store.ArticleVersion, error) {
	if len(note) > MaxChangeNoteLength {
		return store.ArticleVersion{}, fieldError("change_note", fmt.Sprintf("Change note must be at most %d characters", MaxChangeNoteLength))
	}

	v, err := q.CreateArticleVersion(ctx, store.CreateArticleVersionParams{
		ArticleID:   articleID,
		Title:       snap.Title,
		Description: snap.Description,
		Content:     snap.Content,
		CreatedBy:   util.NullInt64FromPtr(editorID),
		ChangeNote:  note,
		CreatedAt:   m.now().UTC(),
	})
	if err != nil {
		return store.ArticleVersion{}, storeErr(err, "creating article version")
	}
	return v, nil
}

// Snapshot records the article's current fields as a new version.
func (m *VersionManager) Snapshot(ctx context.Context, articleID int64, editorID *int64, note string) (store.ArticleVersion, error) {
	var v store.ArticleVersion
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return store.RunInTx(ctx, m.db, func(q *store.Queries) error {
			a, err := q.GetArticleByID(ctx, articleID)
			if err != nil {
				return storeErr(err, "loading article")
			}
			v, err = m.CreateVersion(ctx, q, a.ID, SnapshotOf(a), editorID, note)
			return err
		})
	})
	if err != nil {
		return store.ArticleVersion{}, err
	}

	m.logger.Info("article version created", "article_id", articleID, "version_number", v.VersionNumber)
	return v, nil
}

// ListVersions returns an article's versions by ascending version number.
func (m *VersionManager) ListVersions(ctx context.Context, articleID int64) ([]store.ArticleVersion, error) {
	if _, err := m.queries.GetArticleByID(ctx, articleID); err != nil {
		return nil, storeErr(err, "loading article")
	}

	versions, err := m.queries.ListArticleVersions(ctx, articleID)
	if err != nil {
		return nil, storeErr(err, "listing versions")
	}
	if versions == nil {
		versions = []store.ArticleVersion{}
	}
	return versions, nil
}

// GetVersion returns one version of an article. A version belonging to a
// different article is reported as ErrNotFound.
func (m *VersionManager) GetVersion(ctx context.Context, articleID, versionID int64) (store.ArticleVersion, error) {
	v, err := m.queries.GetArticleVersion(ctx, articleID, versionID)
	if err != nil {
		return store.ArticleVersion{}, storeErr(err, "loading version")
	}
	return v, nil
}

// Restore overwrites the article's title, description and content with
// those of a past version and records the result as a new version.
// History is never rewound.
func (m *VersionManager) Restore(ctx context.Context, articleID, versionID int64, editorID *int64) (RestoreResult, error) {
	var res RestoreResult
	err := withConflictRetry(ctx, func(ctx context.Context) error {
		return store.RunInTx(ctx, m.db, func(q *store.Queries) error {
			if _, err := q.GetArticleByID(ctx, articleID); err != nil {
				return storeErr(err, "loading article")
			}

			target, err := q.GetArticleVersion(ctx, articleID, versionID)
			if err != nil {
				return storeErr(err, "loading version")
			}

			a, err := q.UpdateArticleContent(ctx, store.UpdateArticleContentParams{
				ID:          articleID,
				Title:       target.Title,
				Description: target.Description,
				Content:     target.Content,
				UpdatedAt:   m.now().UTC(),
			})
			if err != nil {
				return storeErr(err, "restoring article")
			}

			snap := Snapshot{Title: target.Title, Description: target.Description, Content: target.Content}
			v, err := m.CreateVersion(ctx, q, articleID, snap, editorID, fmt.Sprintf("restored from v%d", target.VersionNumber))
			if err != nil {
				return err
			}

			res = RestoreResult{Article: a, Version: v, RestoredFrom: target.VersionNumber}
			return nil
		})
	})
	if err != nil {
		return RestoreResult{}, err
	}

	m.logger.Info("article restored",
		"article_id", articleID,
		"from_version", res.RestoredFrom,
		"new_version", res.Version.VersionNumber)
	return res, nil
}
