// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"OART_DB_PATH" envDefault:"./data/oarticles.db"`
	SessionSecret string `env:"OART_SESSION_SECRET,required"`
	ServerHost    string `env:"OART_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"OART_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"OART_ENV" envDefault:"development"`
	LogLevel      string `env:"OART_LOG_LEVEL" envDefault:"info"`

	// Public base URL used in sitemap and robots.txt links.
	SiteURL string `env:"OART_SITE_URL" envDefault:"http://localhost:8080"`

	// Cache configuration. Redis is used when RedisURL is set, memory otherwise.
	// CacheTTL is in seconds.
	RedisURL     string `env:"OART_REDIS_URL"`
	CachePrefix  string `env:"OART_CACHE_PREFIX" envDefault:"oarticles:"`
	CacheTTL     int    `env:"OART_CACHE_TTL" envDefault:"300"`
	CacheMaxSize int    `env:"OART_CACHE_MAX_SIZE" envDefault:"10000"`

	// Path to GeoLite2-Country.mmdb file
	GeoIPDBPath string `env:"OART_GEOIP_DB_PATH"`

	// Seeding configuration
	DoSeed        bool   `env:"OART_DO_SEED" envDefault:"true"`
	SeedDemo      bool   `env:"OART_SEED_DEMO" envDefault:"false"`
	AdminEmail    string `env:"OART_ADMIN_EMAIL"`
	AdminPassword string `env:"OART_ADMIN_PASSWORD"`

	// Engagement endpoints: requests per second and burst per client IP
	EngagementRateLimit float64 `env:"OART_ENGAGEMENT_RATE_LIMIT" envDefault:"5"`
	EngagementRateBurst int     `env:"OART_ENGAGEMENT_RATE_BURST" envDefault:"20"`

	// Cron spec of the nightly daily-stats reconcile (UTC)
	ReconcileSchedule string `env:"OART_RECONCILE_SCHEDULE" envDefault:"15 0 * * *"`
	// System events older than this many days are pruned; 0 keeps them forever
	EventRetentionDays int `env:"OART_EVENT_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("OART_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("OART_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return fmt.Errorf("OART_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("OART_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if c.CacheTTL < 1 {
		return fmt.Errorf("OART_CACHE_TTL must be positive, got %d", c.CacheTTL)
	}
	if c.EngagementRateLimit <= 0 || c.EngagementRateBurst < 1 {
		return fmt.Errorf("OART_ENGAGEMENT_RATE_LIMIT and OART_ENGAGEMENT_RATE_BURST must be positive")
	}
	if c.EventRetentionDays < 0 {
		return fmt.Errorf("OART_EVENT_RETENTION_DAYS must not be negative, got %d", c.EventRetentionDays)
	}
	if u, err := url.Parse(c.SiteURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("OART_SITE_URL must be an absolute http(s) URL, got %q", c.SiteURL)
	}
	if _, err := cron.ParseStandard(c.ReconcileSchedule); err != nil {
		return fmt.Errorf("OART_RECONCILE_SCHEDULE %q is not a valid cron spec: %w", c.ReconcileSchedule, err)
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
