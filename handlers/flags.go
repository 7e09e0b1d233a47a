// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielhkuo/committee-roster/cliparse"
	"github.com/danielhkuo/committee-roster/flagging"
	"github.com/danielhkuo/committee-roster/middleware"
	"github.com/danielhkuo/committee-roster/models"
)

type FlagHandler struct {
	cfg cliparse.Config
	svc *flagging.Service
}

func NewFlagHandler(cfg cliparse.Config, svc *flagging.Service) *FlagHandler {
	return &FlagHandler{cfg: cfg, svc: svc}
}

// Run handles POST /eligibility-flags/run. The body is optional.
func (h *FlagHandler) Run(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticate(w, r, h.cfg); !ok {
		return
	}

	var req models.RunFlaggingRequest
	if _, err := middleware.ParseOptionalJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	summary, err := h.svc.Run(r.Context(), req.TermID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summary)
}

// List handles GET /eligibility-flags?status=&reason=&termId=&committeeListId=&page=&pageSize=
func (h *FlagHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.FlagFilter{
		TermID:          q.Get("termId"),
		CommitteeListID: q.Get("committeeListId"),
	}

	if v := q.Get("status"); v != "" {
		status, err := models.ParseFlagStatus(v)
		if err != nil {
			middleware.WriteError(w, r, err)
			return
		}
		filter.Status = &status
	}
	if v := q.Get("reason"); v != "" {
		reason, err := models.ParseFlagReason(v)
		if err != nil {
			middleware.WriteError(w, r, err)
			return
		}
		filter.Reason = &reason
	}

	var err error
	if filter.Page, err = intParam(q.Get("page")); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "page must be a number")
		return
	}
	if filter.PageSize, err = intParam(q.Get("pageSize")); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "pageSize must be a number")
		return
	}

	page, err := h.svc.List(r.Context(), filter)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, page)
}

// Confirm handles POST /eligibility-flags/{id}/confirm
func (h *FlagHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Confirm)
}

// Dismiss handles POST /eligibility-flags/{id}/dismiss
func (h *FlagHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Dismiss)
}

type reviewFunc func(ctx context.Context, flagID, reviewer, notes string) (models.EligibilityFlag, error)

func (h *FlagHandler) review(w http.ResponseWriter, r *http.Request, decide reviewFunc) {
	actor, ok := authenticate(w, r, h.cfg)
	if !ok {
		return
	}

	flagID := r.PathValue("id")
	if flagID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "flag id is required")
		return
	}

	var req models.ReviewFlagRequest
	if _, err := middleware.ParseOptionalJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	flag, err := decide(r.Context(), flagID, actor, req.Notes)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, flag)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
