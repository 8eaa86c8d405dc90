// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides shared database helpers for the store tests.
// Most tests run against a throwaway SQLite file; the PostgreSQL tests are
// skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mochireviews/internal/database"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testStore returns a PostStore over a fresh, migrated SQLite database
// whose clock advances one second per call, so creation order is
// deterministic.
func testStore(t *testing.T) *PostStore {
	t.Helper()

	db, err := database.Connect(database.SQLite, filepath.Join(t.TempDir(), "mochi.db"))
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db, database.SQLite); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	s := NewPostStore(db, database.SQLite)
	s.now = steppingClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.Second)
	return s
}

// nowUTC is the wall clock, for tests that update from several goroutines.
func nowUTC() time.Time { return time.Now().UTC() }

// steppingClock returns a clock that starts at start and moves forward by
// step on every call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	current := start.Add(-step)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

// testPostgres opens the test PostgreSQL database and runs migrations.
// If the database is unavailable, the test is skipped.
func testPostgres(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "postgres://" + envOr("POSTGRES_USER", "mochireviews") + ":" +
		envOr("POSTGRES_PASSWORD", "changeme") + "@" +
		envOr("POSTGRES_HOST", "localhost") + ":" + envOr("POSTGRES_PORT", "5432") + "/" +
		envOr("POSTGRES_DB", "mochireviews") + "?sslmode=disable"

	db, err := database.Connect(database.Postgres, dsn)
	if err != nil {
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db, database.Postgres); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanPosts removes test posts by slug. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", slug)
	}
}
