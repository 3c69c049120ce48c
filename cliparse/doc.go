// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 4941)
  - DatabaseURL: connection string or SQLite file (default for sqlite: ./storage/petitions.db)
  - DatabaseType: db.SQLite or db.Postgres (default: sqlite)
  - ImageDir: where uploaded images are written (default: ./storage/images)
  - LogLevel: slog level (default: info)

# CLI Flags

	-p          Server port
	-d          Database URL
	-t          Database type (sqlite or postgres)
	-images     Image directory
	-log-level  debug, info, warn or error
	-env        dotenv file to load (default: .env)

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	IMAGE_DIR     → -images
	LOG_LEVEL     → -log-level

Variables may also come from the dotenv file. CLI flags take precedence over
the environment, and the real environment over the dotenv file. A missing
dotenv file is not an error.

# Validation

ParseFlags returns an error if:

  - DATABASE_TYPE is not sqlite or postgres
  - DATABASE_URL is missing for postgres
  - PORT or LOG_LEVEL cannot be parsed
*/
package cliparse
