// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/olegiv/oarticles/internal/middleware"
)

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAdmin(t)

	rec := env.do(t, http.MethodGet, Prefix+"/auth/me", nil, cookie)
	expectStatus(t, rec, http.StatusOK)

	var p middleware.Principal
	decodeData(t, rec, &p)
	if p.Email != testAdminEmail {
		t.Errorf("Email = %q, want %q", p.Email, testAdminEmail)
	}
	if p.Role != middleware.RoleAdmin {
		t.Errorf("Role = %q, want %q", p.Role, middleware.RoleAdmin)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Email: testAdminEmail, Password: "nope"}},
		{"unknown user", LoginRequest{Email: "ghost@example.com", Password: "whatever"}},
		{"empty", LoginRequest{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, Prefix+"/auth/login", tt.req, nil)
			expectStatus(t, rec, http.StatusUnauthorized)
			if code, _ := decodeError(t, rec); code != "unauthorized" {
				t.Errorf("code = %q, want unauthorized", code)
			}
		})
	}
}

func TestLoginLockout(t *testing.T) {
	env := newTestEnvWith(t, Options{
		LoginProtection: middleware.NewLoginProtection(middleware.LoginProtectionConfig{
			IPRateLimit:       100,
			IPBurst:           100,
			MaxFailedAttempts: 3,
		}),
	})

	for i := 0; i < 3; i++ {
		rec := env.do(t, http.MethodPost, Prefix+"/auth/login", LoginRequest{Email: testAdminEmail, Password: "bad"}, nil)
		expectStatus(t, rec, http.StatusUnauthorized)
	}

	// Locked even with the right password.
	rec := env.do(t, http.MethodPost, Prefix+"/auth/login", LoginRequest{Email: testAdminEmail, Password: testAdminPassword}, nil)
	expectStatus(t, rec, http.StatusTooManyRequests)
	if code, _ := decodeError(t, rec); code != "account_locked" {
		t.Errorf("code = %q, want account_locked", code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestMeRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, Prefix+"/auth/me", nil, nil)
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.loginAdmin(t)

	rec := env.do(t, http.MethodPost, Prefix+"/auth/logout", nil, cookie)
	expectStatus(t, rec, http.StatusNoContent)

	rec = env.do(t, http.MethodGet, Prefix+"/auth/me", nil, cookie)
	expectStatus(t, rec, http.StatusUnauthorized)
}
