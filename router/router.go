// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/committee-roster/cliparse"
	"github.com/danielhkuo/committee-roster/flagging"
	"github.com/danielhkuo/committee-roster/handlers"
	"github.com/danielhkuo/committee-roster/metrics"
	"github.com/danielhkuo/committee-roster/middleware"
	"github.com/danielhkuo/committee-roster/roster"
	"github.com/danielhkuo/committee-roster/terms"
	"github.com/danielhkuo/committee-roster/weights"
)

// NewRouter wires the services and handlers onto a ServeMux. m may be nil,
// in which case /metrics serves an empty registry.
func NewRouter(db *sqlx.DB, cfg cliparse.Config, m *metrics.Manager) *http.ServeMux {
	mux := http.NewServeMux()

	// Services
	weightSvc := weights.NewService(db, m)
	flagSvc := flagging.NewService(db, m)
	rosterSvc := roster.NewService(db, weightSvc, m)
	termSvc := terms.NewService(db)

	// Initialize handlers
	eligibilityHandler := handlers.NewEligibilityHandler(db, cfg, m)
	weightHandler := handlers.NewWeightHandler(db, cfg, weightSvc)
	flagHandler := handlers.NewFlagHandler(cfg, flagSvc)
	rosterHandler := handlers.NewRosterHandler(cfg, rosterSvc)
	termHandler := handlers.NewTermHandler(cfg, termSvc)

	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithMetrics(m, endpoint, middleware.WithLogging(h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Eligibility preflight (read-only)
	handle("GET /eligibility", "eligibility", eligibilityHandler.Check)

	// Seat weights
	handle("GET /designation-weight", "designation_weight", weightHandler.GetDesignationWeight)
	handle("PATCH /committees/lted-weight", "lted_weight", weightHandler.UpdateLtedWeight)
	handle("POST /weighted-table/import", "weight_import", weightHandler.ImportWeightTable)

	// Roster changes
	handle("POST /committees/{id}/members", "add_member", rosterHandler.AddMember)
	handle("DELETE /committees/{id}/members/{voterId}", "remove_member", rosterHandler.RemoveMember)

	// BOE eligibility flags
	handle("POST /eligibility-flags/run", "flag_run", flagHandler.Run)
	handle("GET /eligibility-flags", "flag_list", flagHandler.List)
	handle("POST /eligibility-flags/{id}/confirm", "flag_confirm", flagHandler.Confirm)
	handle("POST /eligibility-flags/{id}/dismiss", "flag_dismiss", flagHandler.Dismiss)

	// Terms
	handle("GET /terms/active", "term_active", termHandler.Active)
	handle("POST /terms/{id}/activate", "term_activate", termHandler.Activate)

	// Prometheus
	if m == nil {
		m = metrics.NewManager()
	}
	mux.Handle("GET /metrics", m.Handler())

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("committee-roster API v1"))
	})

	return mux
}
