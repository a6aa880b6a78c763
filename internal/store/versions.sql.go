// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const versionColumns = `id, article_id, version_number, title, description, content, created_by, change_note, created_at`

func scanVersion(row interface{ Scan(...any) error }) (ArticleVersion, error) {
	var v ArticleVersion
	err := row.Scan(&v.ID, &v.ArticleID, &v.VersionNumber, &v.Title, &v.Description,
		&v.Content, &v.CreatedBy, &v.ChangeNote, &v.CreatedAt)
	return v, err
}

// createArticleVersion allocates the next number and inserts in one statement.
// UNIQUE(article_id, version_number) rejects a concurrent duplicate.
const createArticleVersion = `
INSERT INTO article_versions (article_id, version_number, title, description, content, created_by, change_note, created_at)
SELECT ?, COALESCE(MAX(version_number), 0) + 1, ?, ?, ?, ?, ?, ?
FROM article_versions WHERE article_id = ?
RETURNING ` + versionColumns

type CreateArticleVersionParams struct {
	ArticleID   int64
	Title       string
	Description string
	Content     string
	CreatedBy   sql.NullInt64
	ChangeNote  string
	CreatedAt   time.Time
}

func (q *Queries) CreateArticleVersion(ctx context.Context, arg CreateArticleVersionParams) (ArticleVersion, error) {
	row := q.db.QueryRowContext(ctx, createArticleVersion,
		arg.ArticleID, arg.Title, arg.Description, arg.Content, arg.CreatedBy, arg.ChangeNote, arg.CreatedAt,
		arg.ArticleID)
	return scanVersion(row)
}

const getArticleVersion = `SELECT ` + versionColumns + ` FROM article_versions WHERE id = ? AND article_id = ?`

// GetArticleVersion looks a version up within the scope of its article.
func (q *Queries) GetArticleVersion(ctx context.Context, articleID, id int64) (ArticleVersion, error) {
	return scanVersion(q.db.QueryRowContext(ctx, getArticleVersion, id, articleID))
}

const getLatestArticleVersion = `
SELECT ` + versionColumns + ` FROM article_versions
WHERE article_id = ?
ORDER BY version_number DESC
LIMIT 1`

func (q *Queries) GetLatestArticleVersion(ctx context.Context, articleID int64) (ArticleVersion, error) {
	return scanVersion(q.db.QueryRowContext(ctx, getLatestArticleVersion, articleID))
}

const listArticleVersions = `
SELECT ` + versionColumns + ` FROM article_versions
WHERE article_id = ?
ORDER BY version_number ASC`

func (q *Queries) ListArticleVersions(ctx context.Context, articleID int64) ([]ArticleVersion, error) {
	rows, err := q.db.QueryContext(ctx, listArticleVersions, articleID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ArticleVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

const countArticleVersions = `SELECT COUNT(*) FROM article_versions WHERE article_id = ?`

func (q *Queries) CountArticleVersions(ctx context.Context, articleID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countArticleVersions, articleID).Scan(&n)
	return n, err
}
