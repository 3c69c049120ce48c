// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/petitions/detail"
	"github.com/danielhkuo/petitions/middleware"
	"github.com/danielhkuo/petitions/models"
)

// Supporters handles GET /petitions/{id}/supporters
func (h *PetitionHandler) Supporters(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	supporters, err := h.reader.Supporters(r.Context(), id)
	if errors.Is(err, detail.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Petition not found")
		return
	}
	if err != nil {
		slog.Error("failed to list supporters", "petition_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, supporters)
}

// AddSupporter handles POST /petitions/{id}/supporters
func (h *PetitionHandler) AddSupporter(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	var req models.AddSupporterRequest
	if !decode(w, r, &req) {
		return
	}

	supportID, d, err := h.catalog.AddSupporter(r.Context(), id, u.ID, req)
	if err != nil {
		slog.Error("failed to add supporter", "petition_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add supporter")
		return
	}
	if !d.OK() {
		writeDenied(w, d)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddSupporterResponse{SupportID: supportID})
}
