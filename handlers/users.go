// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/petitions/db"
	"github.com/danielhkuo/petitions/images"
	"github.com/danielhkuo/petitions/middleware"
	"github.com/danielhkuo/petitions/models"
	"github.com/danielhkuo/petitions/users"
)

type UserHandler struct {
	users *users.Service
}

func NewUserHandler(store *db.Store, imgs *images.Store) *UserHandler {
	return &UserHandler{users: users.NewService(store, imgs)}
}

// userErrorStatus maps users package errors to HTTP statuses.
func userErrorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, users.ErrNotFound), errors.Is(err, users.ErrNoImage), errors.Is(err, images.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized, true
	case errors.Is(err, users.ErrForbidden), errors.Is(err, users.ErrEmailInUse), errors.Is(err, users.ErrSamePassword):
		return http.StatusForbidden, true
	}
	return 0, false
}

func (h *UserHandler) fail(w http.ResponseWriter, err error, action string) {
	if status, ok := userErrorStatus(err); ok {
		middleware.ErrorResponse(w, status, err.Error())
		return
	}
	slog.Error("failed to "+action, "error", err)
	middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action)
}

// Register handles POST /users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.fail(w, err, "register user")
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{UserID: id})
}

// Login handles POST /users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, err, "log in")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, res)
}

// Logout handles POST /users/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.users.Logout(r.Context(), middleware.Token(r))
	if errors.Is(err, users.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "A valid X-Authorization token is required")
		return
	}
	if err != nil {
		h.fail(w, err, "log out")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// View handles GET /users/{id}
func (h *UserHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	v, err := h.users.View(r.Context(), id, middleware.Token(r))
	if err != nil {
		h.fail(w, err, "read user")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, v)
}

// Update handles PATCH /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, ok := currentUser(w, r, h.users); !ok {
		return
	}

	var req models.EditUserRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.users.Update(r.Context(), id, middleware.Token(r), req); err != nil {
		h.fail(w, err, "update user")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetImage handles GET /users/{id}/image
func (h *UserHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	data, mime, err := h.users.Image(r.Context(), id)
	if err != nil {
		h.fail(w, err, "read image")
		return
	}
	writeImage(w, data, mime)
}

// SetImage handles PUT /users/{id}/image
func (h *UserHandler) SetImage(w http.ResponseWriter, r *http.Request) {
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

	created, err := h.users.SetImage(r.Context(), id, middleware.Token(r), data, ext)
	if err != nil {
		h.fail(w, err, "store image")
		return
	}
	if created {
		w.WriteHeader(http.StatusCreated)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteImage handles DELETE /users/{id}/image
func (h *UserHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, ok := currentUser(w, r, h.users); !ok {
		return
	}

	if err := h.users.RemoveImage(r.Context(), id, middleware.Token(r)); err != nil {
		h.fail(w, err, "delete image")
		return
	}
	w.WriteHeader(http.StatusOK)
}
