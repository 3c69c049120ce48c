// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/petitions/guard"
	"github.com/danielhkuo/petitions/images"
	"github.com/danielhkuo/petitions/middleware"
	"github.com/danielhkuo/petitions/models"
	"github.com/danielhkuo/petitions/users"
)

// pathID parses a positive integer path parameter. It writes a 404 and
// returns false when the value is not one, since no such resource exists.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, name+" not found")
		return 0, false
	}
	return id, true
}

// verdictStatus maps a guard verdict to its HTTP status.
func verdictStatus(v guard.Verdict) int {
	switch v {
	case guard.NotFound:
		return http.StatusNotFound
	case guard.Forbidden:
		return http.StatusForbidden
	case guard.Conflict:
		return http.StatusConflict
	case guard.InvalidReference:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeDenied writes the response for a decision that did not allow the
// mutation.
func writeDenied(w http.ResponseWriter, d guard.Decision) {
	middleware.ErrorResponse(w, verdictStatus(d.Verdict), d.Reason)
}

// currentUser resolves the caller from the X-Authorization header, writing
// a 401 when there is no active session.
func currentUser(w http.ResponseWriter, r *http.Request, svc *users.Service) (models.User, bool) {
	u, err := svc.ResolveByToken(r.Context(), middleware.Token(r))
	if errors.Is(err, users.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "A valid X-Authorization token is required")
		return models.User{}, false
	}
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.User{}, false
	}
	return u, true
}

// validator is implemented by every request type in models.
type validator interface {
	Validate() error
}

// decode parses and validates a JSON request body, writing a 400 on
// failure.
func decode(w http.ResponseWriter, r *http.Request, req validator) bool {
	if err := middleware.ParseJSONBody(r, req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	if err := req.Validate(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// readImage reads an uploaded image body and checks it against the declared
// Content-Type. It returns the extension to store it under.
func readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	body := http.MaxBytesReader(w, r.Body, images.MaxImageSize)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Image is too large")
			return nil, "", false
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read image")
		return nil, "", false
	}

	ext, err := images.Check(data, r.Header.Get("Content-Type"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return nil, "", false
	}
	return data, ext, true
}

func writeImage(w http.ResponseWriter, data []byte, mime string) {
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image", "error", err)
	}
}
