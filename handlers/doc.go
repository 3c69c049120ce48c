// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the petitions API.

# Handler Types

Each handler is a struct holding the services it calls:

  - PetitionHandler: search, detail, petition mutations, support tiers,
    supporters and petition images
  - UserHandler: registration, sessions, profiles and profile images

Handlers are created via constructor functions that accept the store and
the image store:

	petitionHandler := handlers.NewPetitionHandler(store, imgs)

# Authentication

Mutations require the X-Authorization header holding a session token from
POST /users/login. A missing or unknown token is answered with 401 before
anything else is checked.

# Decisions

Petition, tier and supporter mutations return a guard decision which is
mapped to a status:

	Allow             200, or 201 when something was created
	NotFound          404
	Forbidden         403
	Conflict          409
	InvalidReference  400

Malformed bodies and query parameters are 400. Path ids that are not
positive integers are 404.

# Images

Image uploads are the raw request body with Content-Type image/png,
image/jpeg or image/gif. The bytes must match the declared type. The first
upload answers 201 and a replacement answers 200.
*/
package handlers
