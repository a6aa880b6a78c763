// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/oarticles/internal/auth"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme1234"
	DefaultAdminName     = "Administrator"
)

// AdminSeed describes the bootstrap administrator.
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

func (a AdminSeed) withDefaults() AdminSeed {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	if a.Email == "" {
		a.Email = DefaultAdminEmail
	}
	if a.Password == "" {
		a.Password = DefaultAdminPassword
	}
	if a.Name == "" {
		a.Name = DefaultAdminName
	}
	return a
}

// Seed creates the bootstrap admin user. It is safe to call on every start:
// an existing user with the same email is left untouched.
func Seed(ctx context.Context, db *sql.DB, admin AdminSeed) error {
	admin = admin.withDefaults()
	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, admin.Email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        admin.Email,
		Name:         admin.Name,
		Role:         "admin",
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if IsUniqueViolation(err) {
			// Another process seeded concurrently.
			return nil
		}
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user", "id", user.ID, "email", user.Email)
	return nil
}

// FindAdmin returns the user admin was seeded as.
func FindAdmin(ctx context.Context, db *sql.DB, admin AdminSeed) (User, error) {
	return New(db).GetUserByEmail(ctx, admin.withDefaults().Email)
}
