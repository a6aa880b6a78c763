// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const topicColumns = `id, name, slug, description, created_at, updated_at`

func scanTopic(row interface{ Scan(...any) error }) (Topic, error) {
	var t Topic
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const createTopic = `
INSERT INTO topics (name, slug, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + topicColumns

type CreateTopicParams struct {
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (q *Queries) CreateTopic(ctx context.Context, arg CreateTopicParams) (Topic, error) {
	row := q.db.QueryRowContext(ctx, createTopic, arg.Name, arg.Slug, arg.Description, arg.CreatedAt, arg.UpdatedAt)
	return scanTopic(row)
}

const getTopicByID = `SELECT ` + topicColumns + ` FROM topics WHERE id = ?`

func (q *Queries) GetTopicByID(ctx context.Context, id int64) (Topic, error) {
	return scanTopic(q.db.QueryRowContext(ctx, getTopicByID, id))
}

const getTopicBySlug = `SELECT ` + topicColumns + ` FROM topics WHERE slug = ?`

func (q *Queries) GetTopicBySlug(ctx context.Context, slug string) (Topic, error) {
	return scanTopic(q.db.QueryRowContext(ctx, getTopicBySlug, slug))
}

const listTopics = `SELECT ` + topicColumns + ` FROM topics ORDER BY name ASC LIMIT ? OFFSET ?`

type ListTopicsParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListTopics(ctx context.Context, arg ListTopicsParams) ([]Topic, error) {
	rows, err := q.db.QueryContext(ctx, listTopics, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const countTopics = `SELECT COUNT(*) FROM topics`

func (q *Queries) CountTopics(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countTopics).Scan(&n)
	return n, err
}

const updateTopic = `
UPDATE topics SET name = ?, slug = ?, description = ?, updated_at = ?
WHERE id = ?
RETURNING ` + topicColumns

type UpdateTopicParams struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	UpdatedAt   time.Time
}

func (q *Queries) UpdateTopic(ctx context.Context, arg UpdateTopicParams) (Topic, error) {
	row := q.db.QueryRowContext(ctx, updateTopic, arg.Name, arg.Slug, arg.Description, arg.UpdatedAt, arg.ID)
	return scanTopic(row)
}

const deleteTopic = `DELETE FROM topics WHERE id = ?`

// DeleteTopic removes a topic and reports how many rows were deleted.
func (q *Queries) DeleteTopic(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTopic, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
