// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const referenceColumns = `id, article_id, title, url, description, created_at, updated_at`

func scanReference(row interface{ Scan(...any) error }) (ArticleReference, error) {
	var r ArticleReference
	err := row.Scan(&r.ID, &r.ArticleID, &r.Title, &r.Url, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const createReference = `
INSERT INTO article_references (article_id, title, url, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + referenceColumns

type CreateReferenceParams struct {
	ArticleID   int64
	Title       string
	Url         sql.NullString
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateReference(ctx context.Context, arg CreateReferenceParams) (ArticleReference, error) {
	row := q.db.QueryRowContext(ctx, createReference,
		arg.ArticleID, arg.Title, arg.Url, arg.Description, arg.CreatedAt, arg.UpdatedAt)
	return scanReference(row)
}

const getReference = `SELECT ` + referenceColumns + ` FROM article_references WHERE id = ? AND article_id = ?`

// GetReference looks a reference up within the scope of its article.
func (q *Queries) GetReference(ctx context.Context, articleID, id int64) (ArticleReference, error) {
	return scanReference(q.db.QueryRowContext(ctx, getReference, id, articleID))
}

const listReferences = `SELECT ` + referenceColumns + ` FROM article_references WHERE article_id = ? ORDER BY id ASC`

func (q *Queries) ListReferences(ctx context.Context, articleID int64) ([]ArticleReference, error) {
	rows, err := q.db.QueryContext(ctx, listReferences, articleID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ArticleReference
	for rows.Next() {
		r, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countReferences = `SELECT COUNT(*) FROM article_references WHERE article_id = ?`

func (q *Queries) CountReferences(ctx context.Context, articleID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countReferences, articleID).Scan(&n)
	return n, err
}

const updateReference = `
UPDATE article_references SET title = ?, url = ?, description = ?, updated_at = ?
WHERE id = ? AND article_id = ?
RETURNING ` + referenceColumns

type UpdateReferenceParams struct {
	ID          int64
	ArticleID   int64
	Title       string
	Url         sql.NullString
	Description string
	UpdatedAt   time.Time
}

func (q *Queries) UpdateReference(ctx context.Context, arg UpdateReferenceParams) (ArticleReference, error) {
	row := q.db.QueryRowContext(ctx, updateReference,
		arg.Title, arg.Url, arg.Description, arg.UpdatedAt, arg.ID, arg.ArticleID)
	return scanReference(row)
}

const deleteReference = `DELETE FROM article_references WHERE id = ? AND article_id = ?`

func (q *Queries) DeleteReference(ctx context.Context, articleID, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteReference, id, articleID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
