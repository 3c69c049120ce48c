// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db owns the database connection and schema.

# Opening a Store

Open connects, pings and bootstraps the schema for the chosen dialect:

	store, err := db.Open(ctx, db.Postgres, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

Two dialects are supported. Postgres (github.com/lib/pq) is the production
backend; SQLite (modernc.org/sqlite) runs with a single connection and backs
the test suite. Queries use $N placeholders, which both accept.

# Transactions

Every read-decide-write sequence runs inside WithTx:

	err := store.WithTx(ctx, func(tx *sql.Tx) error {
		// guard checks, then writes
		return nil
	})

The connection is acquired for the duration of fn and released on every exit
path. On Postgres the isolation level is SERIALIZABLE and serialization
failures are retried a bounded number of times.

# Tables

  - user: accounts with bcrypt password hash and nullable auth_token
  - category: read-only reference data, seeded by CreateSchema
  - petition: title is globally unique
  - support_tier: (petition_id, title) unique, cost >= 0
  - supporter: (petition_id, support_tier_id, user_id) unique

# Relationships

	user 1──* petition
	category 1──* petition
	petition 1──* support_tier
	support_tier 1──* supporter
	user 1──* supporter

# Errors

IsUniqueViolation recognises unique-constraint failures from both drivers so
that races the guards cannot see are still reported as conflicts.
*/
package db
