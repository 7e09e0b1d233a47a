// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/committee-roster/cliparse"
	"github.com/danielhkuo/committee-roster/middleware"
	"github.com/danielhkuo/committee-roster/models"
	"github.com/danielhkuo/committee-roster/weights"
)

type WeightHandler struct {
	db  *sqlx.DB
	cfg cliparse.Config
	svc *weights.Service
}

func NewWeightHandler(db *sqlx.DB, cfg cliparse.Config, svc *weights.Service) *WeightHandler {
	return &WeightHandler{db: db, cfg: cfg, svc: svc}
}

// GetDesignationWeight handles GET /designation-weight?committeeListId=[&termId=]
func (h *WeightHandler) GetDesignationWeight(w http.ResponseWriter, r *http.Request) {
	committeeID := r.URL.Query().Get("committeeListId")
	if committeeID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "committeeListId is required")
		return
	}

	dw, err := weights.Calculate(r.Context(), h.db, committeeID, r.URL.Query().Get("termId"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, dw)
}

// UpdateLtedWeight handles PATCH /committees/lted-weight
func (h *WeightHandler) UpdateLtedWeight(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticate(w, r, h.cfg); !ok {
		return
	}

	var req models.UpdateLtedWeightRequest
	if err := middleware.ParseStrictJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CommitteeListID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "committeeListId is required")
		return
	}
	// Only an explicit null clears the weight
	if !req.LtedWeight.Set {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ltedWeight is required (null clears it)")
		return
	}

	dw, err := h.svc.UpdateLtedWeight(r.Context(), req.CommitteeListID, req.LtedWeight.Value)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, dw)
}

// ImportWeightTable handles POST /weighted-table/import with a multipart
// "file" field holding an .xlsx or .csv table and an optional termId.
func (h *WeightHandler) ImportWeightTable(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticate(w, r, h.cfg); !ok {
		return
	}

	limit := h.cfg.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	rows, err := weights.ReadWeightTable(file, header.Filename)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	report, err := h.svc.ImportWeightTable(r.Context(), r.FormValue("termId"), rows)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, report)
}
