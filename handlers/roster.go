// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/committee-roster/cliparse"
	"github.com/danielhkuo/committee-roster/middleware"
	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/roster"
)

type RosterHandler struct {
	cfg cliparse.Config
	svc *roster.Service
}

func NewRosterHandler(cfg cliparse.Config, svc *roster.Service) *RosterHandler {
	return &RosterHandler{cfg: cfg, svc: svc}
}

// AddMember handles POST /committees/{id}/members
func (h *RosterHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticate(w, r, h.cfg)
	if !ok {
		return
	}

	committeeID := r.PathValue("id")
	if committeeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "committee id is required")
		return
	}

	var req models.AddMemberRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.VoterRecordID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voterRecordId is required")
		return
	}

	override := roster.Override{Apply: req.Override, Reason: req.OverrideReason}
	resp, err := h.svc.AddMember(r.Context(), committeeID, req.VoterRecordID, override, actor)
	if err != nil {
		var refused *roster.RefusedError
		if errors.As(err, &refused) {
			middleware.JSONResponse(w, http.StatusConflict, models.AdmissionRefusedResponse{
				Error:       http.StatusText(http.StatusConflict),
				Message:     refused.Error(),
				Eligibility: refused.Eligibility,
			})
			return
		}
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// RemoveMember handles DELETE /committees/{id}/members/{voterId}
func (h *RosterHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := authenticate(w, r, h.cfg)
	if !ok {
		return
	}

	committeeID := r.PathValue("id")
	voterID := r.PathValue("voterId")
	if committeeID == "" || voterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "committee id and voter id are required")
		return
	}

	resp, err := h.svc.RemoveMember(r.Context(), committeeID, voterID, actor)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
