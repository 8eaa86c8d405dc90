// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"math"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"mochireviews/internal/richtext"
	"mochireviews/internal/slug"
)

// Status represents the publishing state of a review.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Field limits enforced by Validate.
const (
	MaxTitleLen      = 300
	MaxSlugLen       = 300
	MaxExcerptLen    = 1_000
	MaxCategoryLen   = 60
	MaxCoverImageLen = 2_000
	MaxContentLen    = 500_000
	MinScore         = 0.0
	MaxScore         = 10.0
)

// Post is a single review. Excerpt and CoverImage are nil when unset and
// serialize as JSON null.
type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Excerpt    *string   `json:"excerpt"`
	Content    string    `json:"content"`
	Category   string    `json:"category"`
	CoverImage *string   `json:"cover_image"`
	Score      float64   `json:"score"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsPublished returns true if the post is visible on the public site.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// CategoryInfo returns the display metadata for the post's category.
func (p *Post) CategoryInfo() Category {
	return ParseCategory(p.Category)
}

// Verdict maps the score onto the one-word verdict shown next to the
// Mochimeter.
func (p *Post) Verdict() string {
	switch {
	case p.Score >= 9:
		return "Essential"
	case p.Score >= 7:
		return "Recommended"
	case p.Score >= 5:
		return "Decent"
	default:
		return "Skip it"
	}
}

// PostInput carries the fields of a new review. Empty Excerpt or
// CoverImage means none; an empty Slug is derived from the title.
type PostInput struct {
	Title      string
	Slug       string
	Excerpt    string
	Content    string
	Category   string
	CoverImage string
	Score      float64
	Status     Status
}

// Post builds an unsaved Post from the input.
func (in PostInput) Post() *Post {
	return &Post{
		Title:      in.Title,
		Slug:       in.Slug,
		Excerpt:    optional(in.Excerpt),
		Content:    in.Content,
		Category:   in.Category,
		CoverImage: optional(in.CoverImage),
		Score:      in.Score,
		Status:     in.Status,
	}
}

// PostPatch is a partial update. Nil fields are left untouched. An empty
// Excerpt or CoverImage clears the stored value.
type PostPatch struct {
	Title      *string
	Slug       *string
	Excerpt    *string
	Content    *string
	Category   *string
	CoverImage *string
	Score      *float64
	Status     *Status
}

// Apply copies every provided field onto p.
func (pp PostPatch) Apply(p *Post) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Slug != nil {
		p.Slug = *pp.Slug
	}
	if pp.Excerpt != nil {
		p.Excerpt = optional(*pp.Excerpt)
	}
	if pp.Content != nil {
		p.Content = *pp.Content
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.CoverImage != nil {
		p.CoverImage = optional(*pp.CoverImage)
	}
	if pp.Score != nil {
		p.Score = *pp.Score
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
}

// Normalize trims text fields, sanitizes the body, defaults the status to
// draft and derives a missing slug from the title.
func (p *Post) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Title)
	}
	p.Content = richtext.Sanitize(p.Content)
	if p.Excerpt != nil {
		p.Excerpt = optional(*p.Excerpt)
	}
	if p.CoverImage != nil {
		p.CoverImage = optional(*p.CoverImage)
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
}

// Validate checks a normalized post and returns the first problem found
// as a *ValidationError, or nil.
func (p *Post) Validate() error {
	switch {
	case p.Title == "":
		return &ValidationError{Field: "title", Message: "Title is required"}
	case utf8.RuneCountInString(p.Title) > MaxTitleLen:
		return &ValidationError{Field: "title", Message: "Title is too long (max 300 characters)"}
	case p.Slug == "":
		return &ValidationError{Field: "slug", Message: "Slug is required"}
	case utf8.RuneCountInString(p.Slug) > MaxSlugLen:
		return &ValidationError{Field: "slug", Message: "Slug is too long (max 300 characters)"}
	case !slug.Valid(p.Slug):
		return &ValidationError{Field: "slug", Message: "Slug may only contain lowercase letters, numbers and single hyphens"}
	case richtext.IsEmpty(p.Content):
		return &ValidationError{Field: "content", Message: "Content is required"}
	case len(p.Content) > MaxContentLen:
		return &ValidationError{Field: "content", Message: "Content is too long"}
	case p.Category == "":
		return &ValidationError{Field: "category", Message: "Category is required"}
	case utf8.RuneCountInString(p.Category) > MaxCategoryLen:
		return &ValidationError{Field: "category", Message: "Category is too long (max 60 characters)"}
	case math.IsNaN(p.Score) || p.Score < MinScore || p.Score > MaxScore:
		return &ValidationError{Field: "score", Message: "Score must be between 0 and 10"}
	case !p.Status.Valid():
		return &ValidationError{Field: "status", Message: "Status must be draft or published"}
	}

	if p.Excerpt != nil && utf8.RuneCountInString(*p.Excerpt) > MaxExcerptLen {
		return &ValidationError{Field: "excerpt", Message: "Excerpt is too long (max 1,000 characters)"}
	}
	if p.CoverImage != nil && !validCoverImage(*p.CoverImage) {
		return &ValidationError{Field: "cover_image", Message: "Cover image must be an http(s) URL or a site path"}
	}
	return nil
}

// validCoverImage accepts absolute http(s) URLs and site-relative paths.
func validCoverImage(s string) bool {
	if len(s) > MaxCoverImageLen {
		return false
	}
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// optional returns nil for blank strings and a pointer to the trimmed
// value otherwise.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
