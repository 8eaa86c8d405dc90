// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

//go:embed seeddata/the-miroku-murder-case.html
var seedContent string

// seedSlug identifies the sample review; its presence means the database
// has already been seeded.
const seedSlug = "the-miroku-murder-case"

// Seed populates the database with a sample published review so a fresh
// development install has something to show. It is a no-op when the
// sample already exists.
func Seed(ctx context.Context, db *sql.DB, dialect Dialect) error {
	b := dialect.Builder()

	var count int
	err := b.Select("COUNT(*)").From("posts").
		Where(sq.Eq{"slug": seedSlug}).
		RunWith(db).QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return fmt.Errorf("seed check posts: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	created := time.Now().UTC().Add(-72 * time.Hour).Truncate(time.Microsecond)
	_, err = b.Insert("posts").
		Columns("title", "slug", "excerpt", "content", "category", "cover_image", "score", "status", "created_at", "updated_at").
		Values(
			"The Miroku Murder Case",
			seedSlug,
			"A locked-room mystery set in a Kyoto temple that manages to be both intellectually rigorous and deeply atmospheric.",
			strings.TrimSpace(seedContent),
			"book",
			"https://images.unsplash.com/photo-1528360983277-13d401cdc186?w=800&q=80",
			8.5,
			"published",
			created,
			created,
		).
		RunWith(db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("seed insert post: %w", err)
	}

	slog.Info("database seeded with sample review", "slug", seedSlug)
	return nil
}
