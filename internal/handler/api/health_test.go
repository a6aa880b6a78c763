// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/olegiv/oarticles/internal/cache"
	"github.com/olegiv/oarticles/internal/version"
)

func TestHealthPublic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, Prefix+"/health", nil, nil)
	expectStatus(t, rec, http.StatusOK)

	var raw map[string]json.RawMessage
	decodeData(t, rec, &raw)
	if string(raw["status"]) != `"healthy"` {
		t.Errorf("status = %s", raw["status"])
	}
	if _, ok := raw["checks"]; ok {
		t.Error("public health response exposes checks")
	}
}

func TestHealthAdmin(t *testing.T) {
	mc := cache.NewMemoryCache(cache.MemoryCacheOptions{})
	defer func() { _ = mc.Close() }()

	env := newTestEnvWith(t, Options{
		Cache:     mc,
		CacheKind: "memory",
		Version:   version.Info{Version: "v1.2.3"},
	})
	cookie := env.loginAdmin(t)

	rec := env.do(t, http.MethodGet, Prefix+"/health?verbose=true", nil, cookie)
	expectStatus(t, rec, http.StatusOK)

	var hs HealthStatus
	decodeData(t, rec, &hs)
	if hs.Status != statusHealthy || hs.Version != "v1.2.3" {
		t.Errorf("health = %+v", hs)
	}
	if hs.Checks["database"].Status != statusHealthy {
		t.Errorf("database check = %+v", hs.Checks["database"])
	}
	if c := hs.Checks["cache"]; c.Status != statusHealthy || c.Message != "memory" {
		t.Errorf("cache check = %+v", c)
	}
	if hs.System == nil || hs.System.GoVersion == "" {
		t.Error("verbose health lacks system info")
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	env := newTestEnv(t)
	_ = env.db.Close()

	rec := env.do(t, http.MethodGet, Prefix+"/health", nil, nil)
	expectStatus(t, rec, http.StatusServiceUnavailable)
}

func TestLiveness(t *testing.T) {
	env := newTestEnv(t)
	expectStatus(t, env.do(t, http.MethodGet, Prefix+"/health/live", nil, nil), http.StatusOK)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
