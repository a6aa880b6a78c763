// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, rate limiting and request hardening.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oarticles/internal/model"
	"github.com/olegiv/oarticles/internal/session"
	"github.com/olegiv/oarticles/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyPrincipal holds the signed-in Principal.
const ContextKeyPrincipal ContextKey = "principal"

// User roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Principal is the authenticated caller.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the principal may manage content.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// UserLookup loads a user by id.
type UserLookup interface {
	Get(ctx context.Context, id int64) (store.User, error)
}

// LoadPrincipal resolves the session user into a Principal on the request
// context. Anonymous requests pass through untouched; a session pointing
// at a missing user is destroyed.
func LoadPrincipal(sm *scs.SessionManager, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := session.UserID(r.Context(), sm)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.Get(r.Context(), userID)
			if err != nil {
				slog.Warn("session user not loadable", "category", model.EventCategoryAuth, "user_id", userID, "error", err)
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}

			p := &Principal{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// GetPrincipal returns the request's principal, or nil for anonymous callers.
func GetPrincipal(r *http.Request) *Principal {
	p, _ := r.Context().Value(ContextKeyPrincipal).(*Principal)
	return p
}

// PrincipalID returns a pointer to the caller's user id, or nil.
func PrincipalID(r *http.Request) *int64 {
	if p := GetPrincipal(r); p != nil {
		id := p.ID
		return &id
	}
	return nil
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPrincipal(r) == nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r)
		if p == nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		if !p.IsAdmin() {
			slog.Warn("access denied",
				"category", model.EventCategoryAuth,
				"status", http.StatusForbidden,
				"method", r.Method,
				"path", r.URL.Path,
				"user_id", p.ID,
				"user_role", p.Role,
			)
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
