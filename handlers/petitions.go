// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/danielhkuo/petitions/catalog"
	"github.com/danielhkuo/petitions/db"
	"github.com/danielhkuo/petitions/detail"
	"github.com/danielhkuo/petitions/images"
	"github.com/danielhkuo/petitions/metrics"
	"github.com/danielhkuo/petitions/middleware"
	"github.com/danielhkuo/petitions/models"
	"github.com/danielhkuo/petitions/search"
	"github.com/danielhkuo/petitions/users"
)

type PetitionHandler struct {
	searcher *search.Searcher
	reader   *detail.Reader
	catalog  *catalog.Service
	users    *users.Service
}

func NewPetitionHandler(store *db.Store, imgs *images.Store) *PetitionHandler {
	return &PetitionHandler{
		searcher: search.NewSearcher(store),
		reader:   detail.NewReader(store),
		catalog:  catalog.NewService(store, imgs),
		users:    users.NewService(store, imgs),
	}
}

// Search handles GET /petitions
func (h *PetitionHandler) Search(w http.ResponseWriter, r *http.Request) {
	q, err := parseSearchQuery(r.URL.Query())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(q.CategoryIDs) > 0 {
		ok, err := h.searcher.CategoriesExist(r.Context(), q.CategoryIDs)
		if err != nil {
			slog.Error("failed to check categories", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if !ok {
			middleware.ErrorResponse(w, http.StatusBadRequest, "categoryIds contains an unknown category")
			return
		}
	}

	res, err := h.searcher.Search(r.Context(), q)
	if err != nil {
		slog.Error("failed to search petitions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	metrics.SearchResults.Observe(float64(res.Count))

	middleware.JSONResponse(w, http.StatusOK, models.SearchResponse{
		Petitions: res.Petitions,
		Count:     res.Count,
	})
}

// parseSearchQuery reads the search parameters. Every numeric parameter
// must be a whole number; ids must be positive.
func parseSearchQuery(v url.Values) (search.Query, error) {
	var q search.Query
	var err error

	q.Q = v.Get("q")
	if v.Has("q") && q.Q == "" {
		return q, errors.New("q must not be empty")
	}

	if q.SortBy, err = search.ParseSortKey(v.Get("sortBy")); err != nil {
		return q, err
	}

	if s := v.Get("startIndex"); s != "" {
		if q.StartIndex, err = parseInt(s, "startIndex", 0); err != nil {
			return q, err
		}
	}
	if s := v.Get("count"); s != "" {
		n, err := parseInt(s, "count", 0)
		if err != nil {
			return q, err
		}
		q.Count = &n
	}

	for _, s := range v["categoryIds"] {
		id, err := parseID(s, "categoryIds")
		if err != nil {
			return q, err
		}
		q.CategoryIDs = append(q.CategoryIDs, *id)
	}

	if s := v.Get("supportingCost"); s != "" {
		n, err := parseInt(s, "supportingCost", 0)
		if err != nil {
			return q, err
		}
		cost := int64(n)
		q.SupportingCost = &cost
	}
	if s := v.Get("ownerId"); s != "" {
		if q.OwnerID, err = parseID(s, "ownerId"); err != nil {
			return q, err
		}
	}
	if s := v.Get("supporterId"); s != "" {
		if q.SupporterID, err = parseID(s, "supporterId"); err != nil {
			return q, err
		}
	}

	return q, nil
}

func parseInt(s, name string, min int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < min {
		return 0, fmt.Errorf("%s must be an integer >= %d", name, min)
	}
	return n, nil
}

func parseID(s, name string) (*int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer", name)
	}
	return &n, nil
}

// Categories handles GET /petitions/categories
func (h *PetitionHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.searcher.Categories(r.Context())
	if err != nil {
		slog.Error("failed to list categories", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, categories)
}

// Get handles GET /petitions/{id}
func (h *PetitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	d, err := h.reader.Get(r.Context(), id)
	if errors.Is(err, detail.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Petition not found")
		return
	}
	if err != nil {
		slog.Error("failed to read petition", "petition_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, d)
}

// Create handles POST /petitions
func (h *PetitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r, h.users)
	if !ok {
		return
	}

	var req models.CreatePetitionRequest
	if !decode(w, r, &req) {
		return
	}

	id, d, err := h.catalog.CreatePetition(r.Context(), u.ID, req)
	if err != nil {
		slog.Error("failed to create petition", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create petition")
		return
	}
	if !d.OK() {
		writeDenied(w, d)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePetitionResponse{PetitionID: id})
}

// Edit handles PATCH /petitions/{id}
func (h *PetitionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, ok := currentUser(w, r, h.users); !ok {
		return
	}

	var req models.EditPetitionRequest
	if !decode(w, r, &req) {
		return
	}

	d, err := h.catalog.EditPetition(r.Context(), id, middleware.Token(r), req)
	if err != nil {
		slog.Error("failed to edit petition", "petition_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to edit petition")
		return
	}
	if !d.OK() {
		writeDenied(w, d)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Delete handles DELETE /petitions/{id}
func (h *PetitionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, ok := currentUser(w, r, h.users); !ok {
		return
	}

	d, err := h.catalog.DeletePetition(r.Context(), id, middleware.Token(r))
	if err != nil {
		slog.Error("failed to delete petition", "petition_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete petition")
		return
	}
	if !d.OK() {
		writeDenied(w, d)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetImage handles GET /petitions/{id}/image
func (h *PetitionHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	data, mime, err := h.catalog.PetitionImage(r.Context(), id)
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrNoImage), errors.Is(err, images.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		slog.Error("failed to read petition image", "petition_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read image")
		return
	}
	writeImage(w, data, mime)
}

// SetImage handles PUT /petitions/{id}/image
func (h *PetitionHandler) SetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, ok := currentUser(w, r, h.users); !ok {
		return
	}

	data, ext, ok := readImage(w, r)
	if !ok {
		return
	}

	created, d, err := h.catalog.SetPetitionImage(r.Context(), id, middleware.Token(r), data, ext)
	if err != nil {
		slog.Error("failed to set petition image", "petition_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	if !d.OK() {
		writeDenied(w, d)
		return
	}

	if created {
		w.WriteHeader(http.StatusCreated)
		return
	}
	w.WriteHeader(http.StatusOK)
}
