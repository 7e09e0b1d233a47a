// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/committee-roster/cliparse"
	"github.com/danielhkuo/committee-roster/db"
)

// overrides holds persistent flag values that win over file and env config
type overrides struct {
	configPath   string
	port         int
	databaseURL  string
	databaseType string
	adminSalt    string
	logLevel     string
}

// RootCmd returns the committee-roster command tree
func RootCmd() *cobra.Command {
	var o overrides

	rootCmd := &cobra.Command{
		Use:   "committee-roster",
		Short: "Committee eligibility and seat-weight engine",
		Long: `committee-roster serves the clerk console API for committee rosters:
eligibility preflight, admission and removal, seat weights, weight table
imports and BOE eligibility flag runs.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "YAML config file (default $CONFIG_FILE)")
	flags.IntVarP(&o.port, "port", "p", 0, "Server port")
	flags.StringVarP(&o.databaseURL, "database-url", "d", "", "Database URL or SQLite path")
	flags.StringVar(&o.databaseType, "database-type", "", "Database type (postgres or sqlite)")
	flags.StringVar(&o.adminSalt, "admin-salt", "", "Admin key salt")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd(&o))
	rootCmd.AddCommand(migrateCmd(&o))
	rootCmd.AddCommand(flagsCmd(&o))
	rootCmd.AddCommand(weightsCmd(&o))
	rootCmd.AddCommand(termCmd(&o))

	return rootCmd
}

// config loads layered configuration, applies flag overrides, validates it
// and installs the default logger.
func (o *overrides) config(stderr io.Writer) (cliparse.Config, error) {
	cfg, err := cliparse.Load(o.configPath)
	if err != nil {
		return cliparse.Config{}, err
	}

	if o.port != 0 {
		cfg.Port = o.port
	}
	if o.databaseURL != "" {
		cfg.DatabaseURL = o.databaseURL
	}
	if o.databaseType != "" {
		cfg.DatabaseType = o.databaseType
	}
	if o.adminSalt != "" {
		cfg.AdminKeySalt = o.adminSalt
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return cliparse.Config{}, err
	}

	logger, err := NewLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cliparse.Config{}, err
	}
	slog.SetDefault(logger)

	return cfg, nil
}

// open loads config and connects to the database
func (o *overrides) open(ctx context.Context, stderr io.Writer) (cliparse.Config, *sqlx.DB, error) {
	cfg, err := o.config(stderr)
	if err != nil {
		return cliparse.Config{}, nil, err
	}

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return cliparse.Config{}, nil, err
	}
	return cfg, conn, nil
}

// NewLogger builds a slog logger writing text or JSON at the given level
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", cliparse.ErrInvalidConfig, level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("%w: log format %q", cliparse.ErrInvalidConfig, format)
}
