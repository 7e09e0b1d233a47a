// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/committee-roster/auth"
	"github.com/danielhkuo/committee-roster/cliparse"
	"github.com/danielhkuo/committee-roster/eligibility"
	"github.com/danielhkuo/committee-roster/metrics"
	"github.com/danielhkuo/committee-roster/middleware"
	"github.com/danielhkuo/committee-roster/store"
)

// authenticate resolves the operator of a mutating request. It writes a
// 401 and returns false when the headers are missing or wrong.
func authenticate(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) (string, bool) {
	actor, err := auth.ActorFromRequest(r, cfg.AdminKeySalt)
	if errors.Is(err, auth.ErrMissingActor) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Actor header is required")
		return "", false
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return "", false
	}
	return actor, true
}

type EligibilityHandler struct {
	db      *sqlx.DB
	cfg     cliparse.Config
	metrics *metrics.Manager
}

func NewEligibilityHandler(db *sqlx.DB, cfg cliparse.Config, m *metrics.Manager) *EligibilityHandler {
	return &EligibilityHandler{db: db, cfg: cfg, metrics: m}
}

// Check handles GET /eligibility?voterRecordId=&committeeListId=[&termId=]
// It is a read-only preflight; admissions evaluate again when they commit.
func (h *EligibilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	voterID := r.URL.Query().Get("voterRecordId")
	committeeID := r.URL.Query().Get("committeeListId")
	if voterID == "" || committeeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voterRecordId and committeeListId are required")
		return
	}

	termID, err := store.ResolveTermID(r.Context(), h.db, r.URL.Query().Get("termId"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	result, err := eligibility.Evaluate(r.Context(), h.db, voterID, committeeID, termID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	h.metrics.RecordEligibility(result)

	slog.Info("eligibility checked",
		"voter_record_id", voterID,
		"committee_id", committeeID,
		"eligible", result.Eligible,
	)

	middleware.JSONResponse(w, http.StatusOK, result)
}
