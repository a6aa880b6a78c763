// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oarticles/internal/auth"
	"github.com/olegiv/oarticles/internal/service"
	"github.com/olegiv/oarticles/internal/store"
	"github.com/olegiv/oarticles/internal/testutil"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse battery staple"
)

// testEnv is an API router over a fresh database.
type testEnv struct {
	db     *sql.DB
	svc    *service.Services
	h      *Handler
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, Options{})
}

func newTestEnvWith(t *testing.T, opts Options) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	if err := store.Seed(context.Background(), db, store.AdminSeed{
		Email:    testAdminEmail,
		Password: testAdminPassword,
		Name:     "Admin",
	}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	logger := testutil.TestLoggerSilent()
	svc := service.New(db, logger, service.Options{})
	sm := scs.New()
	h := NewHandler(db, svc, sm, logger, opts)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Mount(Prefix, h.Routes())
	h.MountSite(r)

	return &testEnv{db: db, svc: svc, h: h, router: r}
}

// do sends a request with an optional JSON body and session cookie.
func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	req.RemoteAddr = "203.0.113.7:4000"

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// login signs in and returns the session cookie.
func (e *testEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	rec := e.do(t, http.MethodPost, Prefix+"/auth/login", LoginRequest{Email: email, Password: password}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Value != "" {
			return c
		}
	}
	t.Fatal("login returned no session cookie")
	return nil
}

func (e *testEnv) loginAdmin(t *testing.T) *http.Cookie {
	t.Helper()
	return e.login(t, testAdminEmail, testAdminPassword)
}

// createUser inserts a user with a known password, signs in and returns the
// session cookie.
func (e *testEnv) createUser(t *testing.T, email, role string) *http.Cookie {
	t.Helper()

	const password = "reader password 123"
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	now := time.Now().UTC()
	if _, err := store.New(e.db).CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		Name:         email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return e.login(t, email, password)
}

// createArticle creates an article through the service as the seeded admin.
func (e *testEnv) createArticle(t *testing.T, title, status string) store.Article {
	t.Helper()

	a, err := e.svc.Articles.Create(context.Background(), service.ArticleInput{
		Title:   title,
		Content: "Content of " + title,
		Status:  status,
	}, nil)
	if err != nil {
		t.Fatalf("Create(%q): %v", title, err)
	}
	return a
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body = %s", rec.Code, want, rec.Body.String())
	}
}

// decodeData unmarshals the response envelope's data into dst and returns meta.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) *Meta {
	t.Helper()

	var env struct {
		Data json.RawMessage `json:"data"`
		Meta *Meta           `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding envelope: %v, body = %s", err, rec.Body.String())
	}
	if dst != nil {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decoding data: %v, data = %s", err, env.Data)
		}
	}
	return env.Meta
}

// decodeError returns the error envelope of a failed response.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code string, details map[string]string) {
	t.Helper()

	var env struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding error: %v, body = %s", err, rec.Body.String())
	}
	return env.Error.Code, env.Error.Details
}

func int64Ptr(v int64) *int64 { return &v }
