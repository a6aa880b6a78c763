// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/oarticles/internal/middleware"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"

	healthProbeKey = "health:probe"
)

// HealthStatusPublic is the health response for non-admin callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed health response for admins.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains runtime information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /api/v1/health.
// A failing database makes the service unhealthy (503); a failing cache only
// degrades it since reads fall back to the database. Admins get the checks,
// and ?verbose=true adds runtime details.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]Check{"database": h.checkDatabase(ctx)}
	if h.cache != nil {
		checks["cache"] = h.checkCache(ctx)
	}

	status := statusHealthy
	code := http.StatusOK
	switch {
	case checks["database"].Status != statusHealthy:
		status = statusUnhealthy
		code = http.StatusServiceUnavailable
	case h.cache != nil && checks["cache"].Status != statusHealthy:
		status = statusDegraded
	}

	if !middleware.GetPrincipal(r).IsAdmin() {
		WriteJSON(w, code, Response{Data: HealthStatusPublic{Status: status}})
		return
	}

	detail := HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.String(),
		Checks:    checks,
	}
	if r.URL.Query().Get("verbose") == "true" {
		detail.System = systemInfo()
	}
	WriteJSON(w, code, Response{Data: detail})
}

// Liveness handles GET /api/v1/health/live.
func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, map[string]string{"status": "alive"}, nil)
}

func (h *Handler) checkDatabase(ctx context.Context) Check {
	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start)
	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency.String()}
	}
	return Check{Status: statusHealthy, Message: "Connected", Latency: latency.String()}
}

// checkCache round-trips a probe key.
func (h *Handler) checkCache(ctx context.Context) Check {
	start := time.Now()
	err := h.cache.Set(ctx, healthProbeKey, []byte("ok"), 10*time.Second)
	if err == nil {
		_, err = h.cache.Get(ctx, healthProbeKey)
	}
	latency := time.Since(start)
	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency.String()}
	}
	msg := "Available"
	if h.cacheKind != "" {
		msg = h.cacheKind
	}
	return Check{Status: statusHealthy, Message: msg, Latency: latency.String()}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
