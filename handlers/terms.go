// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/committee-roster/cliparse"
	"github.com/danielhkuo/committee-roster/middleware"
	"github.com/danielhkuo/committee-roster/terms"
)

type TermHandler struct {
	cfg cliparse.Config
	svc *terms.Service
}

func NewTermHandler(cfg cliparse.Config, svc *terms.Service) *TermHandler {
	return &TermHandler{cfg: cfg, svc: svc}
}

// Active handles GET /terms/active
func (h *TermHandler) Active(w http.ResponseWriter, r *http.Request) {
	term, err := h.svc.Active(r.Context())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, term)
}

// Activate handles POST /terms/{id}/activate
func (h *TermHandler) Activate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticate(w, r, h.cfg)
	if !ok {
		return
	}

	term, err := h.svc.Activate(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, term)
}
