// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/petitions/cliparse"
	"github.com/danielhkuo/petitions/db"
	"github.com/danielhkuo/petitions/handlers"
	"github.com/danielhkuo/petitions/images"
	"github.com/danielhkuo/petitions/metrics"
	"github.com/danielhkuo/petitions/middleware"
)

func NewRouter(store *db.Store, cfg cliparse.Config) (*http.ServeMux, error) {
	imgs, err := images.NewStore(cfg.ImageDir)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// Initialize handlers
	petitionHandler := handlers.NewPetitionHandler(store, imgs)
	userHandler := handlers.NewUserHandler(store, imgs)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.DB().PingContext(r.Context()); err != nil {
			middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Petitions
	mux.HandleFunc("GET /petitions", middleware.WithLogging(petitionHandler.Search))
	mux.HandleFunc("GET /petitions/categories", middleware.WithLogging(petitionHandler.Categories))
	mux.HandleFunc("GET /petitions/{id}", middleware.WithLogging(petitionHandler.Get))
	mux.HandleFunc("POST /petitions", middleware.WithLogging(petitionHandler.Create))
	mux.HandleFunc("PATCH /petitions/{id}", middleware.WithLogging(petitionHandler.Edit))
	mux.HandleFunc("DELETE /petitions/{id}", middleware.WithLogging(petitionHandler.Delete))
	mux.HandleFunc("GET /petitions/{id}/image", middleware.WithLogging(petitionHandler.GetImage))
	mux.HandleFunc("PUT /petitions/{id}/image", middleware.WithLogging(petitionHandler.SetImage))

	// Support tiers
	mux.HandleFunc("POST /petitions/{id}/supportTiers", middleware.WithLogging(petitionHandler.AddSupportTier))
	mux.HandleFunc("PATCH /petitions/{id}/supportTiers/{tierId}", middleware.WithLogging(petitionHandler.EditSupportTier))
	mux.HandleFunc("DELETE /petitions/{id}/supportTiers/{tierId}", middleware.WithLogging(petitionHandler.DeleteSupportTier))

	// Supporters
	mux.HandleFunc("GET /petitions/{id}/supporters", middleware.WithLogging(petitionHandler.Supporters))
	mux.HandleFunc("POST /petitions/{id}/supporters", middleware.WithLogging(petitionHandler.AddSupporter))

	// Users
	mux.HandleFunc("POST /users/register", middleware.WithLogging(userHandler.Register))
	mux.HandleFunc("POST /users/login", middleware.WithLogging(userHandler.Login))
	mux.HandleFunc("POST /users/logout", middleware.WithLogging(userHandler.Logout))
	mux.HandleFunc("GET /users/{id}", middleware.WithLogging(userHandler.View))
	mux.HandleFunc("PATCH /users/{id}", middleware.WithLogging(userHandler.Update))
	mux.HandleFunc("GET /users/{id}/image", middleware.WithLogging(userHandler.GetImage))
	mux.HandleFunc("PUT /users/{id}/image", middleware.WithLogging(userHandler.SetImage))
	mux.HandleFunc("DELETE /users/{id}/image", middleware.WithLogging(userHandler.DeleteImage))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("petitions API v1"))
	})

	return mux, nil
}
