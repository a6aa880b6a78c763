// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

const articleColumns = `id, title, slug, description, content, topic_id, author_id, status, published_at, created_at, updated_at`

func scanArticle(row interface{ Scan(...any) error }) (Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Description, &a.Content,
		&a.TopicID, &a.AuthorID, &a.Status, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

const createArticle = `
INSERT INTO articles (title, slug, description, content, topic_id, author_id, status, published_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + articleColumns

type CreateArticleParams struct {
	Title       string
	Slug        string
	Description string
	Content     string
	TopicID     sql.NullInt64
	AuthorID    sql.NullInt64
	Status      string
	PublishedAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error) {
	row := q.db.QueryRowContext(ctx, createArticle,
		arg.Title, arg.Slug, arg.Description, arg.Content, arg.TopicID, arg.AuthorID,
		arg.Status, arg.PublishedAt, arg.CreatedAt, arg.UpdatedAt)
	return scanArticle(row)
}

const getArticleByID = `SELECT ` + articleColumns + ` FROM articles WHERE id = ?`

func (q *Queries) GetArticleByID(ctx context.Context, id int64) (Article, error) {
	return scanArticle(q.db.QueryRowContext(ctx, getArticleByID, id))
}

const getArticleBySlug = `SELECT ` + articleColumns + ` FROM articles WHERE slug = ?`

func (q *Queries) GetArticleBySlug(ctx context.Context, slug string) (Article, error) {
	return scanArticle(q.db.QueryRowContext(ctx, getArticleBySlug, slug))
}

const updateArticle = `
UPDATE articles
SET title = ?, slug = ?, description = ?, content = ?, topic_id = ?, status = ?, published_at = ?, updated_at = ?
WHERE id = ?
RETURNING ` + articleColumns

type UpdateArticleParams struct {
	ID          int64
	Title       string
	Slug        string
	Description string
	Content     string
	TopicID     sql.NullInt64
	Status      string
	PublishedAt sql.NullTime
	UpdatedAt   time.Time
}

func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) (Article, error) {
	row := q.db.QueryRowContext(ctx, updateArticle,
		arg.Title, arg.Slug, arg.Description, arg.Content, arg.TopicID,
		arg.Status, arg.PublishedAt, arg.UpdatedAt, arg.ID)
	return scanArticle(row)
}

const updateArticleContent = `
UPDATE articles SET title = ?, description = ?, content = ?, updated_at = ?
WHERE id = ?
RETURNING ` + articleColumns

type UpdateArticleContentParams struct {
	ID          int64
	Title       string
	Description string
	Content     string
	UpdatedAt   time.Time
}

// UpdateArticleContent overwrites only the versioned fields of an article.
func (q *Queries) UpdateArticleContent(ctx context.Context, arg UpdateArticleContentParams) (Article, error) {
	row := q.db.QueryRowContext(ctx, updateArticleContent,
		arg.Title, arg.Description, arg.Content, arg.UpdatedAt, arg.ID)
	return scanArticle(row)
}

const deleteArticle = `DELETE FROM articles WHERE id = ?`

// DeleteArticle removes an article and reports how many rows were deleted.
// References, versions, engagement rows and daily stats cascade.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteArticle, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countPublishedArticles = `SELECT COUNT(*) FROM articles WHERE status = 'published'`

func (q *Queries) CountPublishedArticles(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPublishedArticles).Scan(&n)
	return n, err
}

// ListArticlesParams filters article listings. Zero values disable a filter.
type ListArticlesParams struct {
	TopicID  sql.NullInt64
	AuthorID sql.NullInt64
	Status   string
	// Search is matched case-insensitively as a substring of
	// title, description or content.
	Search string
	Limit  int64
	Offset int64
}

func (arg ListArticlesParams) where() (string, []any) {
	var conds []string
	var args []any

	if arg.TopicID.Valid {
		conds = append(conds, "topic_id = ?")
		args = append(args, arg.TopicID.Int64)
	}
	if arg.AuthorID.Valid {
		conds = append(conds, "author_id = ?")
		args = append(args, arg.AuthorID.Int64)
	}
	if arg.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, arg.Status)
	}
	if s := strings.TrimSpace(arg.Search); s != "" {
		needle := strings.ToLower(s)
		conds = append(conds, "(instr(casefold(title), ?) > 0 OR instr(casefold(description), ?) > 0 OR instr(casefold(content), ?) > 0)")
		args = append(args, needle, needle, needle)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListArticles returns one page of articles, most recently updated first.
func (q *Queries) ListArticles(ctx context.Context, arg ListArticlesParams) ([]Article, error) {
	where, args := arg.where()
	query := `SELECT ` + articleColumns + ` FROM articles` + where +
		` ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// CountArticles counts the articles matching the same predicate as ListArticles.
func (q *Queries) CountArticles(ctx context.Context, arg ListArticlesParams) (int64, error) {
	where, args := arg.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`+where, args...).Scan(&n)
	return n, err
}
