// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/petitions/metrics"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect names the SQL backend behind a Store.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// maxTxAttempts bounds how often WithTx re-runs a transaction that lost a
// serialization race.
const maxTxAttempts = 3

// ParseDialect validates a DATABASE_TYPE value
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case Postgres, SQLite:
		return Dialect(s), nil
	}
	return "", fmt.Errorf("unsupported database type %q (use sqlite or postgres)", s)
}

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// UnboundedLimit is the LIMIT operand that means "no limit", needed when an
// OFFSET is given without a row count.
func (d Dialect) UnboundedLimit() string {
	if d == SQLite {
		return "-1"
	}
	return "ALL"
}

// foldFunc is the SQLite function that lower-cases text with Go's Unicode
// tables. SQLite's built-in LOWER only folds ASCII.
const foldFunc = "fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, foldText)
}

func foldText(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	}
	return args[0], nil
}

// Fold wraps a text expression so it compares case-insensitively the same
// way on both backends.
func (d Dialect) Fold(expr string) string {
	if d == SQLite {
		return foldFunc + "(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the connection pool. It is created once in main and passed
// explicitly to every component that needs the database.
type Store struct {
	conn    *sql.DB
	dialect Dialect
}

// New wraps an already opened connection pool.
func New(conn *sql.DB, dialect Dialect) *Store {
	return &Store{conn: conn, dialect: dialect}
}

// Open connects, verifies the connection and bootstraps the schema.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	conn, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialect == SQLite {
		// SQLite allows one writer; a single connection also keeps an
		// in-memory database alive for the lifetime of the pool.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := CreateSchema(ctx, conn, dialect); err != nil {
		conn.Close()
		return nil, err
	}

	return New(conn, dialect), nil
}

// DB returns the underlying pool for reads that need no transaction.
func (s *Store) DB() *sql.DB {
	return s.conn
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// WithTx runs fn inside a single transaction. The transaction is committed
// when fn returns nil and rolled back on every other path. On Postgres the
// transaction is SERIALIZABLE and is retried when it loses a serialization
// race, so fn must be safe to run more than once.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if !isSerializationFailure(err) || attempt == maxTxAttempts {
			return err
		}
		metrics.TxRetries.Inc()
		slog.Warn("transaction serialization failure, retrying", "attempt", attempt)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var opts *sql.TxOptions
	if s.dialect == Postgres {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	tx, err := s.conn.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique-constraint failure from
// either backend.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// extended codes disabled
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "40001"
	}
	return false
}
