// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/olegiv/oarticles/internal/store"
)

// TestLogger creates a quiet test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a logger that only outputs errors.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary file database with migrations applied.
// Returns the database and a cleanup function that should be deferred.
func TestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "oarticles-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	return db, func() { _ = db.Close() }
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, db *sql.DB, email, role string) store.User {
	t.Helper()

	now := time.Now().UTC()
	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		Name:         email,
		Role:         role,
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// CreateArticle inserts an article directly, without a version row.
func CreateArticle(t *testing.T, db *sql.DB, title, slug, status string) store.Article {
	t.Helper()

	now := time.Now().UTC()
	params := store.CreateArticleParams{
		Title:     title,
		Slug:      slug,
		Content:   "Content of " + title,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == "published" {
		params.PublishedAt = sql.NullTime{Time: now, Valid: true}
	}

	a, err := store.New(db).CreateArticle(context.Background(), params)
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	return a
}

// CountRows runs SELECT COUNT(*) FROM <from> with args and returns the count.
func CountRows(t *testing.T, db *sql.DB, from string, args ...any) int {
	t.Helper()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM "+from, args...).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", from, err)
	}
	return n
}
