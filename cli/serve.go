// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/committee-roster/db"
	"github.com/danielhkuo/committee-roster/metrics"
	"github.com/danielhkuo/committee-roster/middleware"
	"github.com/danielhkuo/committee-roster/router"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, conn, err := o.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer conn.Close()

			// Create schema (tables)
			if err := db.CreateSchema(ctx, conn); err != nil {
				return err
			}
			slog.Info("database schema ready", "type", cfg.DatabaseType)

			mux := router.NewRouter(conn, cfg, metrics.NewManager())
			server := http.Server{
				Handler:           middleware.CORS(mux),
				Addr:              ":" + strconv.Itoa(cfg.Port),
				ReadHeaderTimeout: 10 * time.Second,
			}

			return runServer(ctx, &server)
		},
	}
}

// runServer serves until ctx is cancelled, then waits for in-flight
// requests to drain before returning.
func runServer(ctx context.Context, server *http.Server) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("listening", "addr", server.Addr)
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-drained
	slog.Info("server closed")
	return nil
}
