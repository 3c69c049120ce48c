// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the petitions API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints. It also
opens the image store under cfg.ImageDir:

	mux, err := router.NewRouter(store, cfg)

# Endpoints

Operations:

	GET /health  - Database ping
	GET /metrics - Prometheus metrics

Petitions (mutations require X-Authorization):

	GET    /petitions                          - Search
	GET    /petitions/categories               - List categories
	GET    /petitions/{id}                     - Petition detail
	POST   /petitions                          - Create
	PATCH  /petitions/{id}                     - Edit (owner)
	DELETE /petitions/{id}                     - Delete (owner, no supporters)
	GET    /petitions/{id}/image               - Petition image
	PUT    /petitions/{id}/image               - Set petition image (owner)
	POST   /petitions/{id}/supportTiers        - Add tier (owner)
	PATCH  /petitions/{id}/supportTiers/{tierId} - Edit tier (owner)
	DELETE /petitions/{id}/supportTiers/{tierId} - Delete tier (owner)
	GET    /petitions/{id}/supporters          - List supporters
	POST   /petitions/{id}/supporters          - Support at a tier

Users:

	POST   /users/register
	POST   /users/login
	POST   /users/logout
	GET    /users/{id}
	PATCH  /users/{id}
	GET    /users/{id}/image
	PUT    /users/{id}/image
	DELETE /users/{id}/image

Every API route is wrapped with middleware.WithLogging.
*/
package router
