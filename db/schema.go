// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application and seeds the
// category reference data.
// Safe to call multiple times - uses IF NOT EXISTS and ON CONFLICT DO NOTHING.
func CreateSchema(ctx context.Context, conn *sql.DB, dialect Dialect) error {
	ddl := postgresSchema
	if dialect == SQLite {
		ddl = sqliteSchema
	}

	if _, err := conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	for id, name := range categories {
		_, err := conn.ExecContext(ctx, `
			INSERT INTO category (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
		`, id+1, name)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
	}

	return nil
}

// categories are seeded in order; a category's ID is its position plus one.
var categories = []string{
	"Wildlife",
	"Environmental Causes",
	"Animal Rights",
	"Health and Wellness",
	"Education",
	"Human Rights",
	"Technology and Innovation",
	"Arts and Culture",
	"Community Development",
	"Economic Empowerment",
	"Science and Research",
	"Sports and Recreation",
}

const postgresSchema = `
-- Users
CREATE TABLE IF NOT EXISTS "user" (
    id SERIAL PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    image_filename TEXT,
    password TEXT NOT NULL,
    auth_token TEXT
);

CREATE INDEX IF NOT EXISTS idx_user_auth_token ON "user"(auth_token);

-- Categories (reference data)
CREATE TABLE IF NOT EXISTS category (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

-- Petitions
CREATE TABLE IF NOT EXISTS petition (
    id SERIAL PRIMARY KEY,
    title TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL,
    creation_date TIMESTAMPTZ NOT NULL,
    image_filename TEXT,
    owner_id INTEGER NOT NULL REFERENCES "user"(id),
    category_id INTEGER NOT NULL REFERENCES category(id)
);

CREATE INDEX IF NOT EXISTS idx_petition_owner_id ON petition(owner_id);
CREATE INDEX IF NOT EXISTS idx_petition_category_id ON petition(category_id);

-- Support tiers
CREATE TABLE IF NOT EXISTS support_tier (
    id SERIAL PRIMARY KEY,
    petition_id INTEGER NOT NULL REFERENCES petition(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    cost INTEGER NOT NULL CHECK (cost >= 0),
    UNIQUE (petition_id, title)
);

CREATE INDEX IF NOT EXISTS idx_support_tier_petition_id ON support_tier(petition_id);

-- Supporters
CREATE TABLE IF NOT EXISTS supporter (
    id SERIAL PRIMARY KEY,
    petition_id INTEGER NOT NULL REFERENCES petition(id),
    support_tier_id INTEGER NOT NULL REFERENCES support_tier(id),
    user_id INTEGER NOT NULL REFERENCES "user"(id),
    message TEXT,
    timestamp TIMESTAMPTZ NOT NULL,
    UNIQUE (petition_id, support_tier_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_supporter_petition_id ON supporter(petition_id);
CREATE INDEX IF NOT EXISTS idx_supporter_user_id ON supporter(user_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS "user" (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    image_filename TEXT,
    password TEXT NOT NULL,
    auth_token TEXT
);

CREATE INDEX IF NOT EXISTS idx_user_auth_token ON "user"(auth_token);

CREATE TABLE IF NOT EXISTS category (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS petition (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL,
    creation_date TIMESTAMP NOT NULL,
    image_filename TEXT,
    owner_id INTEGER NOT NULL REFERENCES "user"(id),
    category_id INTEGER NOT NULL REFERENCES category(id)
);

CREATE INDEX IF NOT EXISTS idx_petition_owner_id ON petition(owner_id);
CREATE INDEX IF NOT EXISTS idx_petition_category_id ON petition(category_id);

CREATE TABLE IF NOT EXISTS support_tier (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    petition_id INTEGER NOT NULL REFERENCES petition(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    cost INTEGER NOT NULL CHECK (cost >= 0),
    UNIQUE (petition_id, title)
);

CREATE INDEX IF NOT EXISTS idx_support_tier_petition_id ON support_tier(petition_id);

CREATE TABLE IF NOT EXISTS supporter (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    petition_id INTEGER NOT NULL REFERENCES petition(id),
    support_tier_id INTEGER NOT NULL REFERENCES support_tier(id),
    user_id INTEGER NOT NULL REFERENCES "user"(id),
    message TEXT,
    timestamp TIMESTAMP NOT NULL,
    UNIQUE (petition_id, support_tier_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_supporter_petition_id ON supporter(petition_id);
CREATE INDEX IF NOT EXISTS idx_supporter_user_id ON supporter(user_id);
`
