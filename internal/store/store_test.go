// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for the store
// tests. Each test gets its own migrated SQLite file in a temp directory.
package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/pressly/goose/v3"

	"vidshelf/internal/database"
	"vidshelf/internal/models"
)

// testDB opens a fresh SQLite database and runs migrations. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, dialect, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := database.Migrate(db, dialect); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// mustCategory creates a category or fails the test.
func mustCategory(t *testing.T, s *CategoryStore, name string) *models.Category {
	t.Helper()
	c, created, err := s.CreateIfAbsent(name, time.Now())
	if err != nil {
		t.Fatalf("CreateIfAbsent(%q): %v", name, err)
	}
	if !created {
		t.Fatalf("CreateIfAbsent(%q): category already existed", name)
	}
	return c
}
