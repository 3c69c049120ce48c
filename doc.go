// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the petitions API server.

The server hosts a catalog of crowdfunding petitions: users create petitions
with up to three support tiers, others pledge support at a tier, and anyone
can search the catalog.

# Starting the Server

With no configuration the server uses an SQLite file under ./storage:

	go run .

Or against PostgreSQL:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run .

	go run . -p 4941 -t postgres -d "postgres://..."

# Configuration

Flags win over the environment, which wins over a .env file:

  - PORT (-p): Server port (default: 4941)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): DSN; required for postgres
  - IMAGE_DIR (-images): Image directory (default: ./storage/images)
  - LOG_LEVEL (-log-level): debug, info, warn or error

Logs are text on a terminal and JSON otherwise.

# Architecture

  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - search: Petition search queries
  - detail: Single petition reads
  - guard: Mutation decisions
  - catalog: Guarded petition, tier and supporter writes
  - users: Accounts and sessions
  - images: Image file storage
  - metrics: Prometheus collectors
  - auth: Tokens and password hashing
  - db: Store, transactions and schema
  - models: Request/response types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
