// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/olegiv/oarticles/internal/middleware"
	"github.com/olegiv/oarticles/internal/service"
	"github.com/olegiv/oarticles/internal/session"
)

// LoginRequest represents the request body for signing in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if locked, remaining := h.login.IsAccountLocked(email); locked {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(remaining.Seconds()))))
		WriteError(w, http.StatusTooManyRequests, "account_locked", "Too many failed attempts. Try again later.", nil)
		return
	}

	user, err := h.svc.Users.Authenticate(r.Context(), email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.login.RecordFailedAttempt(email)
		WriteUnauthorized(w, "Invalid email or password")
		return
	}
	if err != nil {
		h.writeServiceError(w, r, "user", err)
		return
	}
	h.login.RecordSuccessfulLogin(email)

	if err := session.Login(r.Context(), h.sm, user.ID); err != nil {
		h.writeServiceError(w, r, "session", err)
		return
	}

	WriteSuccess(w, middleware.Principal{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}, nil)
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := session.Logout(r.Context(), h.sm); err != nil {
		h.writeServiceError(w, r, "session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, middleware.GetPrincipal(r), nil)
}
