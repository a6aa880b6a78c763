// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oarticles/internal/session"
	"github.com/olegiv/oarticles/internal/store"
)

type fakeUsers map[int64]store.User

func (f fakeUsers) Get(_ context.Context, id int64) (store.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return store.User{}, sql.ErrNoRows
}

func withPrincipal(p *Principal) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/overview", nil)
	if p != nil {
		req = req.WithContext(WithPrincipal(req.Context(), p))
	}
	return req
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		wantCode  int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"editor", &Principal{ID: 2, Role: RoleEditor}, http.StatusForbidden},
		{"admin", &Principal{ID: 1, Role: RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireAdmin(simpleOKHandler).ServeHTTP(rec, withPrincipal(tt.principal))
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireAuth(simpleOKHandler).ServeHTTP(rec, withPrincipal(nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	RequireAuth(simpleOKHandler).ServeHTTP(rec, withPrincipal(&Principal{ID: 2, Role: RoleEditor}))
	if rec.Code != http.StatusOK {
		t.Errorf("editor status = %d, want 200", rec.Code)
	}
}

func TestPrincipalHelpers(t *testing.T) {
	var nilPrincipal *Principal
	if nilPrincipal.IsAdmin() {
		t.Error("nil principal must not be admin")
	}
	if id := PrincipalID(withPrincipal(nil)); id != nil {
		t.Errorf("PrincipalID() = %v, want nil", *id)
	}
	if id := PrincipalID(withPrincipal(&Principal{ID: 7})); id == nil || *id != 7 {
		t.Errorf("PrincipalID() = %v, want 7", id)
	}
}

func TestLoadPrincipal(t *testing.T) {
	sm := scs.New()
	users := fakeUsers{1: {ID: 1, Email: "admin@example.com", Role: RoleAdmin}}

	tests := []struct {
		name   string
		userID int64
		wantID int64
	}{
		{"anonymous", 0, 0},
		{"known user", 1, 1},
		{"deleted user", 99, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *Principal
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetPrincipal(r)
			})
			setup := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.userID != 0 {
					if err := session.Login(r.Context(), sm, tt.userID); err != nil {
						t.Fatalf("Login: %v", err)
					}
				}
				LoadPrincipal(sm, users)(inner).ServeHTTP(w, r)
			})

			sm.LoadAndSave(setup).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			switch {
			case tt.wantID == 0 && got != nil:
				t.Errorf("principal = %+v, want nil", got)
			case tt.wantID != 0 && (got == nil || got.ID != tt.wantID):
				t.Errorf("principal = %+v, want id %d", got, tt.wantID)
			}
		})
	}
}
