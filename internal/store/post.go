// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides persistence for reviews on top of database/sql,
// building queries with squirrel so the same code runs on PostgreSQL and
// SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"mochireviews/internal/database"
	"mochireviews/internal/models"
)

var (
	// ErrNotFound is returned by mutations that target a missing post.
	ErrNotFound = errors.New("post not found")

	// ErrDuplicateSlug is returned when a create or update would give two
	// posts the same slug.
	ErrDuplicateSlug = errors.New("slug already exists")
)

// postColumns is the column list shared by every post query, in scan order.
var postColumns = []string{
	"id", "title", "slug", "excerpt", "content", "category",
	"cover_image", "score", "status", "created_at", "updated_at",
}

// newestFirst orders posts by creation time with the id as a tiebreaker.
var newestFirst = []string{"created_at DESC", "id DESC"}

// PostStore handles all review-related database operations.
type PostStore struct {
	db      *sql.DB
	dialect database.Dialect
	sb      sq.StatementBuilderType
	now     func() time.Time
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB, dialect database.Dialect) *PostStore {
	return &PostStore{
		db:      db,
		dialect: dialect,
		sb:      dialect.Builder(),
		now:     time.Now,
	}
}

// timestamp returns the current time at the precision both backends store.
func (s *PostStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *PostStore) selectPosts() sq.SelectBuilder {
	return s.sb.Select(postColumns...).From("posts")
}

// ListPublished returns published posts, newest first. A non-empty
// category restricts the result to that category.
func (s *PostStore) ListPublished(ctx context.Context, category string) ([]models.Post, error) {
	q := s.selectPosts().Where(sq.Eq{"status": string(models.StatusPublished)})
	if category != "" {
		q = q.Where(sq.Eq{"category": category})
	}
	posts, err := s.queryPosts(ctx, q.OrderBy(newestFirst...))
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return posts, nil
}

// ListAll returns every post regardless of status, newest first.
func (s *PostStore) ListAll(ctx context.Context) ([]models.Post, error) {
	posts, err := s.queryPosts(ctx, s.selectPosts().OrderBy(newestFirst...))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// FindPublishedBySlug retrieves a published post by its slug. Returns nil
// if not found or not published.
func (s *PostStore) FindPublishedBySlug(ctx context.Context, slug string) (*models.Post, error) {
	q := s.selectPosts().Where(sq.Eq{"slug": slug, "status": string(models.StatusPublished)})
	p, err := scanPost(q.RunWith(s.db).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// FindByID retrieves a post of any status by its ID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	p, err := s.findByID(ctx, s.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

func (s *PostStore) findByID(ctx context.Context, runner sq.BaseRunner, id int64, lock bool) (*models.Post, error) {
	q := s.selectPosts().Where(sq.Eq{"id": id})
	if lock && s.dialect == database.Postgres {
		q = q.Suffix("FOR UPDATE")
	}
	p, err := scanPost(q.RunWith(runner).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// Create normalizes and validates the input, inserts it and returns the
// stored post. Validation failures are returned as *models.ValidationError.
func (s *PostStore) Create(ctx context.Context, in models.PostInput) (*models.Post, error) {
	p := in.Post()
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	now := s.timestamp()
	p.CreatedAt, p.UpdatedAt = now, now

	err := s.sb.Insert("posts").
		Columns(postColumns[1:]...).
		Values(
			p.Title, p.Slug, p.Excerpt, p.Content, p.Category,
			p.CoverImage, p.Score, string(p.Status), p.CreatedAt, p.UpdatedAt,
		).
		Suffix("RETURNING id").
		RunWith(s.db).QueryRowContext(ctx).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// Update applies the patch over the stored post inside a transaction,
// re-validates the merged row and writes it back with a fresh updated_at.
// Returns ErrNotFound if the post does not exist.
func (s *PostStore) Update(ctx context.Context, id int64, patch models.PostPatch) (*models.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update post begin: %w", err)
	}
	defer tx.Rollback()

	p, err := s.findByID(ctx, tx, id, true)
	if err != nil {
		return nil, fmt.Errorf("update post read: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}

	patch.Apply(p)
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.timestamp()

	_, err = s.sb.Update("posts").
		SetMap(map[string]any{
			"title":       p.Title,
			"slug":        p.Slug,
			"excerpt":     p.Excerpt,
			"content":     p.Content,
			"category":    p.Category,
			"cover_image": p.CoverImage,
			"score":       p.Score,
			"status":      string(p.Status),
			"updated_at":  p.UpdatedAt,
		}).
		Where(sq.Eq{"id": id}).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update post commit: %w", err)
	}
	return p, nil
}

// Delete removes a post by ID. Deleting a missing post is not an error.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	_, err := s.sb.Delete("posts").Where(sq.Eq{"id": id}).RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// SlugExists reports whether any post other than excludeID uses slug.
// An excludeID of zero checks every post.
func (s *PostStore) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	q := s.sb.Select("COUNT(*)").From("posts").Where(sq.Eq{"slug": slug})
	if excludeID != 0 {
		q = q.Where(sq.NotEq{"id": excludeID})
	}

	var count int
	if err := q.RunWith(s.db).QueryRowContext(ctx).Scan(&count); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return count > 0, nil
}

// ListPublishedCategories returns the distinct categories that have at
// least one published post, sorted alphabetically.
func (s *PostStore) ListPublishedCategories(ctx context.Context) ([]string, error) {
	rows, err := s.sb.Select("DISTINCT category").From("posts").
		Where(sq.Eq{"status": string(models.StatusPublished)}).
		OrderBy("category").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CountByStatus returns the number of posts in each status. Statuses with
// no posts are present with a zero count.
func (s *PostStore) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := s.sb.Select("status", "COUNT(*)").From("posts").
		GroupBy("status").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	defer rows.Close()

	counts := map[models.Status]int{
		models.StatusDraft:     0,
		models.StatusPublished: 0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[models.Status(status)] = n
	}
	return counts, rows.Err()
}

// queryPosts runs a post SELECT and scans every row.
func (s *PostStore) queryPosts(ctx context.Context, q sq.SelectBuilder) ([]models.Post, error) {
	rows, err := q.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// scanPost reads one row in postColumns order.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	var excerpt, cover sql.NullString
	var status string
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &excerpt, &p.Content, &p.Category,
		&cover, &p.Score, &status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if excerpt.Valid {
		p.Excerpt = &excerpt.String
	}
	if cover.Valid {
		p.CoverImage = &cover.String
	}
	p.Status = models.Status(status)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// isUniqueViolation reports whether err is a unique-constraint failure
// from either backend.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
