// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package database handles connection management for the two supported
// backends (PostgreSQL and SQLite) and migration execution using goose.
// The dialect is picked from the DSN so a single binary serves both a
// local SQLite file and a shared PostgreSQL server.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var embedMigrations embed.FS

// Dialect identifies the SQL backend behind a *sql.DB.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// sqliteParams are appended to SQLite DSNs: enforce foreign keys, allow
// concurrent readers with WAL, and wait on locks instead of failing.
const sqliteParams = "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"

// DialectFor returns the dialect implied by a DSN. postgres:// and
// postgresql:// URLs select PostgreSQL; anything else is a SQLite path.
func DialectFor(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// Connect opens a connection pool for the DSN and verifies it with a ping.
func Connect(dsn string) (*sql.DB, Dialect, error) {
	dialect := DialectFor(dsn)

	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case Postgres:
		db, err = sql.Open("pgx", dsn)
	default:
		db, err = sql.Open("sqlite3", sqliteDSN(dsn))
	}
	if err != nil {
		return nil, "", fmt.Errorf("database open: %w", err)
	}

	if dialect == Postgres {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "dialect", string(dialect))
	return db, dialect, nil
}

// sqliteDSN appends the connection parameters the app relies on.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteParams
	}
	return dsn + "?" + sqliteParams
}

// Migrate runs all pending goose migrations for the dialect from the
// embedded SQL files.
func Migrate(db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	dir := "migrations/sqlite"
	if dialect == Postgres {
		dir = "migrations/postgres"
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied", "dialect", string(dialect))
	return nil
}
