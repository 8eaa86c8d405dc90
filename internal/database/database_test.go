// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
)

// testSQLite opens a migrated SQLite database in a temp directory.
func testSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Connect(SQLite, filepath.Join(t.TempDir(), "nested", "mochi.db"))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(db, SQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestParseDialect(t *testing.T) {
	for _, in := range []string{"postgres", "sqlite3"} {
		d, err := ParseDialect(in)
		if err != nil || string(d) != in {
			t.Errorf("ParseDialect(%q) = %q, %v", in, d, err)
		}
	}
	if _, err := ParseDialect("mysql"); err == nil {
		t.Error("ParseDialect(mysql) should fail")
	}
}

func TestBuilderPlaceholders(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{Postgres, "SELECT id FROM posts WHERE slug = $1"},
		{SQLite, "SELECT id FROM posts WHERE slug = ?"},
	}
	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			query, _, err := tt.dialect.Builder().Select("id").From("posts").Where(sq.Eq{"slug": "x"}).ToSql()
			if err != nil {
				t.Fatalf("ToSql: %v", err)
			}
			if query != tt.want {
				t.Errorf("query = %q, want %q", query, tt.want)
			}
		})
	}
}

func TestConnectCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	db, err := Connect(SQLite, filepath.Join(dir, "mochi.db"))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestMigrate_SQLite(t *testing.T) {
	db := testSQLite(t)

	// Running again is a no-op.
	if err := Migrate(db, SQLite); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'posts'").Scan(&name)
	if err != nil {
		t.Fatalf("posts table missing: %v", err)
	}
}

func TestMigrate_SQLiteCheckConstraints(t *testing.T) {
	db := testSQLite(t)

	_, err := db.Exec(`INSERT INTO posts (title, slug, content, category, score, status)
		VALUES ('t', 's', '<p>x</p>', 'book', 11, 'draft')`)
	if err == nil {
		t.Error("score 11 accepted by schema")
	}

	_, err = db.Exec(`INSERT INTO posts (title, slug, content, category, score, status)
		VALUES ('t', 's', '<p>x</p>', 'book', 5, 'archived')`)
	if err == nil {
		t.Error("status 'archived' accepted by schema")
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := testSQLite(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := Seed(ctx, db, SQLite); err != nil {
			t.Fatalf("Seed run %d: %v", i+1, err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("post count = %d, want 1", count)
	}

	var title, status, content string
	var score float64
	err := db.QueryRow("SELECT title, status, score, content FROM posts WHERE slug = ?", seedSlug).
		Scan(&title, &status, &score, &content)
	if err != nil {
		t.Fatalf("select seed: %v", err)
	}
	if title != "The Miroku Murder Case" || status != "published" || score != 8.5 {
		t.Errorf("seed row = %q %q %v", title, status, score)
	}
	if !strings.HasPrefix(content, "<h2>") {
		t.Errorf("seed content = %.40q", content)
	}
}

// TestMigrate_Postgres runs against a live PostgreSQL and is skipped when
// none is reachable.
func TestMigrate_Postgres(t *testing.T) {
	dsn := "postgres://" + envOr("POSTGRES_USER", "mochireviews") + ":" +
		envOr("POSTGRES_PASSWORD", "changeme") + "@" +
		envOr("POSTGRES_HOST", "localhost") + ":" + envOr("POSTGRES_PORT", "5432") + "/" +
		envOr("POSTGRES_DB", "mochireviews") + "?sslmode=disable"

	db, err := Connect(Postgres, dsn)
	if err != nil {
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	defer db.Close()

	if err := Migrate(db, Postgres); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := Seed(context.Background(), db, Postgres); err != nil {
		t.Fatalf("Seed: %v", err)
	}
}
