// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/petitions/middleware"
	"github.com/danielhkuo/petitions/models"
)

// AddSupportTier handles POST /petitions/{id}/supportTiers
func (h *PetitionHandler) AddSupportTier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, ok := currentUser(w, r, h.users); !ok {
		return
	}

	var req models.SupportTierRequest
	if !decode(w, r, &req) {
		return
	}

	tierID, d, err := h.catalog.AddSupportTier(r.Context(), id, middleware.Token(r), req)
	if err != nil {
		slog.Error("failed to add support tier", "petition_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add support tier")
		return
	}
	if !d.OK() {
		writeDenied(w, d)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddSupportTierResponse{SupportTierID: tierID})
}

// EditSupportTier handles PATCH /petitions/{id}/supportTiers/{tierId}
func (h *PetitionHandler) EditSupportTier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tierID, ok := pathID(w, r, "tierId")
	if !ok {
		return
	}
	if _, ok := currentUser(w, r, h.users); !ok {
		return
	}

	var req models.EditSupportTierRequest
	if !decode(w, r, &req) {
		return
	}

	d, err := h.catalog.EditSupportTier(r.Context(), id, tierID, middleware.Token(r), req)
	if err != nil {
		slog.Error("failed to edit support tier", "petition_id", id, "tier_id", tierID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to edit support tier")
		return
	}
	if !d.OK() {
		writeDenied(w, d)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteSupportTier handles DELETE /petitions/{id}/supportTiers/{tierId}
func (h *PetitionHandler) DeleteSupportTier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tierID, ok := pathID(w, r, "tierId")
	if !ok {
		return
	}
	if _, ok := currentUser(w, r, h.users); !ok {
		return
	}

	d, err := h.catalog.DeleteSupportTier(r.Context(), id, tierID, middleware.Token(r))
	if err != nil {
		slog.Error("failed to delete support tier", "petition_id", id, "tier_id", tierID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete support tier")
		return
	}
	if !d.OK() {
		writeDenied(w, d)
		return
	}
	w.WriteHeader(http.StatusOK)
}
