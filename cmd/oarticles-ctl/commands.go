// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/olegiv/oarticles/internal/demo"
	"github.com/olegiv/oarticles/internal/service"
	"github.com/olegiv/oarticles/internal/store"
	"github.com/olegiv/oarticles/internal/transfer"
	"github.com/olegiv/oarticles/internal/version"
)

// ctlConfig is the subset of server settings the CLI needs. Unlike the
// server it does not require a session secret.
type ctlConfig struct {
	DBPath        string `env:"OART_DB_PATH" envDefault:"./data/oarticles.db"`
	LogLevel      string `env:"OART_LOG_LEVEL" envDefault:"warn"`
	AdminEmail    string `env:"OART_ADMIN_EMAIL"`
	AdminPassword string `env:"OART_ADMIN_PASSWORD"`
}

// app carries state shared by subcommands.
type app struct {
	cfg    ctlConfig
	out    io.Writer
	logger *slog.Logger
}

func newRootCmd(out io.Writer, info version.Info) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "oarticles-ctl",
		Short:         "oArticles maintenance CLI",
		Version:       info.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			dbFlag := cmd.Flags().Lookup("db")
			if err := env.Parse(&a.cfg); err != nil {
				return fmt.Errorf("parsing config: %w", err)
			}
			if dbFlag != nil && dbFlag.Changed {
				a.cfg.DBPath = dbFlag.Value.String()
			}
			a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(a.cfg.LogLevel)}))
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().String("db", "", "SQLite database path (default $OART_DB_PATH or ./data/oarticles.db)")

	root.AddCommand(
		a.migrateCmd(),
		a.seedCmd(),
		a.rebuildStatsCmd(),
		a.statsCmd(),
		a.exportCmd(),
		a.demoCmd(),
		versionCmd(info),
	)
	return root
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return l
}

// open opens the database and applies pending migrations.
func (a *app) open() (*sql.DB, error) {
	db, err := store.NewDB(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			v, err := store.MigrationStatus(db)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, "database at migration version %d\n", v)
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	var withDemo bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin user and optionally demo content",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			ctx := cmd.Context()
			admin := store.AdminSeed{Email: a.cfg.AdminEmail, Password: a.cfg.AdminPassword}
			if err := store.Seed(ctx, db, admin); err != nil {
				return fmt.Errorf("seeding admin: %w", err)
			}
			_, _ = fmt.Fprintln(a.out, "admin user ready")
			if !withDemo {
				return nil
			}

			user, err := store.FindAdmin(ctx, db, admin)
			if err != nil {
				return fmt.Errorf("loading admin user: %w", err)
			}
			svc := service.New(db, a.logger, service.Options{})
			sum, err := demo.Seed(ctx, svc, &user.ID, a.logger)
			if err != nil {
				return fmt.Errorf("seeding demo content: %w", err)
			}
			return a.printJSON(sum)
		},
	}
	cmd.Flags().BoolVar(&withDemo, "demo", false, "also load demo topics, articles and engagement")
	return cmd
}

func (a *app) rebuildStatsCmd() *cobra.Command {
	var article, from, to string
	cmd := &cobra.Command{
		Use:   "rebuild-stats",
		Short: "Rebuild daily article stats from the engagement log",
		Long: `Replays engagement events into the daily aggregates for every day in
the inclusive range. Days with no events lose their aggregate rows.

Examples:
  oarticles-ctl rebuild-stats --from 2026-01-01 --to 2026-01-31
  oarticles-ctl rebuild-stats --article 42 --from 2026-02-01 --to 2026-02-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var articleID *int64
			if article != "" {
				id, err := strconv.ParseInt(article, 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid article id %q", article)
				}
				articleID = &id
			}

			db, err := a.open()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			svc := service.New(db, a.logger, service.Options{})
			res, err := svc.Aggregator.RebuildRange(cmd.Context(), articleID, from, to)
			if err != nil {
				return describe(err)
			}
			return a.printJSON(res)
		},
	}
	cmd.Flags().StringVar(&article, "article", "", "limit the rebuild to one article id")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report engagement statistics",
	}

	var from, to string
	overview := &cobra.Command{
		Use:   "overview",
		Short: "Print totals and top articles as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			svc := service.New(db, a.logger, service.Options{})
			o, err := svc.Stats.Overview(cmd.Context(), service.DateRange{From: from, To: to})
			if err != nil {
				return describe(err)
			}
			return a.printJSON(o)
		},
	}
	overview.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	overview.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")

	cmd.AddCommand(overview)
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		output   string
		status   string
		versions bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export topics and articles as JSON",
		Long: `Writes topics and articles with their references to stdout or a file.
Topics and authors are referenced by slug and email.

Examples:
  oarticles-ctl export --status published
  oarticles-ctl export --versions -o backup.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.open()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			svc := service.New(db, a.logger, service.Options{})
			exporter := transfer.NewExporter(svc, a.logger)
			opts := transfer.ExportOptions{Status: status, IncludeVersions: versions}
			if output == "" {
				return describe(exporter.ExportToWriter(cmd.Context(), opts, a.out))
			}
			if err := exporter.ExportToFile(cmd.Context(), opts, output); err != nil {
				return describe(err)
			}
			_, _ = fmt.Fprintf(a.out, "exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&status, "status", "", "only export articles with this status")
	cmd.Flags().BoolVar(&versions, "versions", false, "include version history")
	return cmd
}

func (a *app) demoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Manage demo data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete the database files so the next start reseeds them",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := demo.Reset(a.cfg.DBPath); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, "removed %s\n", a.cfg.DBPath)
			return nil
		},
	})
	return cmd
}

func versionCmd(info version.Info) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "oarticles-ctl %s\n", info)
			return err
		},
	}
}

// describe flattens validation errors into a readable message.
func describe(err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("invalid input: %v", verr.Fields)
	}
	return err
}
