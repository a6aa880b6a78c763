// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/oarticles/internal/cache"
	"github.com/olegiv/oarticles/internal/config"
	"github.com/olegiv/oarticles/internal/demo"
	"github.com/olegiv/oarticles/internal/geoip"
	"github.com/olegiv/oarticles/internal/handler/api"
	"github.com/olegiv/oarticles/internal/logging"
	"github.com/olegiv/oarticles/internal/middleware"
	"github.com/olegiv/oarticles/internal/scheduler"
	"github.com/olegiv/oarticles/internal/service"
	"github.com/olegiv/oarticles/internal/session"
	"github.com/olegiv/oarticles/internal/store"
	"github.com/olegiv/oarticles/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "oArticles - article publishing and engagement analytics API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OART_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OART_DB_PATH           SQLite database path (default: ./data/oarticles.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OART_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OART_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OART_SITE_URL          Public base URL for sitemap.xml (default: http://localhost:8080)\n")
	_, _ = fmt.Fprintf(os.Stderr, "  OART_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OART_GEOIP_DB_PATH     GeoLite2-Country database for engagement countries (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OART_SEED_DEMO         Load demo articles and engagement on first start\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Printf("oarticles %s\n", info)
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// WARN and ERROR records also go to the system event log.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	c, cacheKind := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTLDuration(),
		MaxSize:    cfg.CacheMaxSize,
	}, logger)
	defer func() { _ = c.Close() }()

	var countries service.CountryLookup
	if cfg.GeoIPEnabled() {
		lookup, err := geoip.Open(cfg.GeoIPDBPath)
		if err != nil {
			slog.Warn("geoip database unavailable, country codes disabled", "path", cfg.GeoIPDBPath, "error", err)
		} else {
			countries = lookup
			defer func() { _ = lookup.Close() }()
		}
	}

	svc := service.New(db, logger, service.Options{
		Cache:     c,
		CacheTTL:  cfg.CacheTTLDuration(),
		Countries: countries,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seed(ctx, cfg, db, svc, logger); err != nil {
		return err
	}

	sched := scheduler.New(logger)
	if err := sched.Add(scheduler.ReconcileJob(svc.Aggregator, cfg.ReconcileSchedule, logger)); err != nil {
		return fmt.Errorf("scheduling reconcile: %w", err)
	}
	if cfg.EventRetentionDays > 0 {
		if err := sched.Add(scheduler.PruneEventsJob(store.New(db), cfg.EventRetentionDays, time.Now, logger)); err != nil {
			return fmt.Errorf("scheduling event pruning: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	sm := session.New(db, cfg.IsDevelopment())

	login := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	engagement := middleware.NewRateLimiter("engagement", cfg.EngagementRateLimit, cfg.EngagementRateBurst)
	go login.Run(ctx, 10*time.Minute)
	go engagement.Run(ctx, 10*time.Minute)

	apiHandler := api.NewHandler(db, svc, sm, logger, api.Options{
		LoginProtection:   login,
		EngagementLimiter: engagement,
		Cache:             c,
		CacheKind:         cacheKind,
		Jobs:              sched.Registry(),
		Version:           info,
		SiteURL:           cfg.SiteURL,
		HideFromCrawlers:  cfg.IsDevelopment(),
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sm.LoadAndSave)
	r.Use(middleware.SkipCSRF(api.IsEngagementRequest))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))

	r.Mount(api.Prefix, apiHandler.Routes())
	apiHandler.MountSite(r)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteNotFound(w, "Endpoint not found")
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.String(), "cache", cacheKind)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// seed bootstraps the admin user and, when enabled, the demo content.
func seed(ctx context.Context, cfg *config.Config, db *sql.DB, svc *service.Services, logger *slog.Logger) error {
	if !cfg.DoSeed {
		return nil
	}

	admin := store.AdminSeed{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
	if err := store.Seed(ctx, db, admin); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	if !cfg.SeedDemo {
		return nil
	}

	user, err := store.FindAdmin(ctx, db, admin)
	if err != nil {
		return fmt.Errorf("loading admin user: %w", err)
	}
	if _, err := demo.Seed(ctx, svc, &user.ID, logger); err != nil {
		return fmt.Errorf("seeding demo content: %w", err)
	}
	return nil
}
