// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/oarticles/internal/auth"
	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/store"
)

// ErrInvalidCredentials is returned when an email and password do not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService authenticates users.
type UserService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewUserService creates a UserService.
func NewUserService(db *sql.DB, logger *slog.Logger) *UserService {
	return &UserService{queries: store.New(db), logger: logger, now: time.Now}
}

// Authenticate checks email and password. Hashes made with outdated
// parameters are upgraded on success.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (store.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return store.User{}, ErrInvalidCredentials
	}

	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("login failed", "category", model.EventCategoryAuth, "email", email, "reason", "unknown user")
		return store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, storeErr(err, "loading user")
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.logger.Warn("login failed", "category", model.EventCategoryAuth, "email", email, "reason", "bad password")
		return store.User{}, ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, user.ID, hash, s.now().UTC()); err != nil {
				s.logger.Warn("password rehash failed", "category", model.EventCategoryAuth, "user_id", user.ID, "error", err)
			}
		}
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (store.User, error) {
	u, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return store.User{}, storeErr(err, "loading user")
	}
	return u, nil
}
