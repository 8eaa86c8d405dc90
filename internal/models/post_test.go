// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

// validPost returns a normalized post that passes validation.
func validPost() *Post {
	p := PostInput{
		Title:    "The Miroku Murder Case",
		Content:  "<p>A labyrinthine mystery.</p>",
		Category: "book",
		Score:    8.5,
		Status:   StatusPublished,
	}.Post()
	p.Normalize()
	return p
}

func TestPostIsPublished(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPublished, true},
		{StatusDraft, false},
		{Status(""), false},
		{Status("PUBLISHED"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			p := &Post{Status: tt.status}
			if got := p.IsPublished(); got != tt.want {
				t.Errorf("Post{Status: %q}.IsPublished() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	p := PostInput{
		Title:      "  The Miroku Murder Case!  ",
		Excerpt:    "   ",
		Content:    `<p>ok</p><script>alert(1)</script>`,
		Category:   " book ",
		CoverImage: " https://example.com/a.jpg ",
	}.Post()
	p.Normalize()

	if p.Title != "The Miroku Murder Case!" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Slug != "the-miroku-murder-case" {
		t.Errorf("Slug = %q, want derived from title", p.Slug)
	}
	if p.Excerpt != nil {
		t.Errorf("Excerpt = %q, want nil for blank input", *p.Excerpt)
	}
	if p.Category != "book" {
		t.Errorf("Category = %q", p.Category)
	}
	if p.CoverImage == nil || *p.CoverImage != "https://example.com/a.jpg" {
		t.Errorf("CoverImage = %v", p.CoverImage)
	}
	if strings.Contains(p.Content, "script") {
		t.Errorf("Content not sanitized: %q", p.Content)
	}
	if p.Status != StatusDraft {
		t.Errorf("Status = %q, want draft default", p.Status)
	}
}

func TestNormalize_KeepsExplicitSlug(t *testing.T) {
	p := PostInput{Title: "Something Else", Slug: " custom-slug "}.Post()
	p.Normalize()
	if p.Slug != "custom-slug" {
		t.Errorf("Slug = %q, want custom-slug", p.Slug)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Post)
		field  string
	}{
		{"valid", func(p *Post) {}, ""},
		{"score zero", func(p *Post) { p.Score = 0 }, ""},
		{"score ten", func(p *Post) { p.Score = 10 }, ""},
		{"custom category", func(p *Post) { p.Category = "podcast" }, ""},
		{"site relative cover", func(p *Post) { p.CoverImage = strPtr("/uploads/1-a.png") }, ""},
		{"empty title", func(p *Post) { p.Title = "" }, "title"},
		{"long title", func(p *Post) { p.Title = strings.Repeat("a", MaxTitleLen+1) }, "title"},
		{"empty slug", func(p *Post) { p.Slug = "" }, "slug"},
		{"bad slug", func(p *Post) { p.Slug = "Not A Slug" }, "slug"},
		{"empty content", func(p *Post) { p.Content = "" }, "content"},
		{"placeholder content", func(p *Post) { p.Content = "<p></p>" }, "content"},
		{"empty category", func(p *Post) { p.Category = "" }, "category"},
		{"score above range", func(p *Post) { p.Score = 10.5 }, "score"},
		{"score below range", func(p *Post) { p.Score = -0.5 }, "score"},
		{"score NaN", func(p *Post) { p.Score = math.NaN() }, "score"},
		{"unknown status", func(p *Post) { p.Status = "archived" }, "status"},
		{"long excerpt", func(p *Post) { p.Excerpt = strPtr(strings.Repeat("x", MaxExcerptLen+1)) }, "excerpt"},
		{"javascript cover", func(p *Post) { p.CoverImage = strPtr("javascript:alert(1)") }, "cover_image"},
		{"protocol relative cover", func(p *Post) { p.CoverImage = strPtr("//evil.example/a.png") }, "cover_image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPost()
			tt.mutate(p)
			err := p.Validate()

			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestPostPatchApply(t *testing.T) {
	p := validPost()
	p.Excerpt = strPtr("old excerpt")
	p.CoverImage = strPtr("/uploads/old.png")

	score := 9.0
	draft := StatusDraft
	PostPatch{
		Score:      &score,
		Status:     &draft,
		Excerpt:    strPtr(""),
		CoverImage: strPtr("/uploads/new.png"),
	}.Apply(p)

	if p.Title != "The Miroku Murder Case" {
		t.Errorf("Title changed to %q", p.Title)
	}
	if p.Score != 9.0 {
		t.Errorf("Score = %v, want 9", p.Score)
	}
	if p.Status != StatusDraft {
		t.Errorf("Status = %q, want draft", p.Status)
	}
	if p.Excerpt != nil {
		t.Errorf("Excerpt = %q, want cleared", *p.Excerpt)
	}
	if p.CoverImage == nil || *p.CoverImage != "/uploads/new.png" {
		t.Errorf("CoverImage = %v", p.CoverImage)
	}
}

func TestVerdict(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{10, "Essential"},
		{9, "Essential"},
		{8.5, "Recommended"},
		{7, "Recommended"},
		{6.5, "Decent"},
		{5, "Decent"},
		{4.5, "Skip it"},
		{0, "Skip it"},
	}
	for _, tt := range tests {
		p := &Post{Score: tt.score}
		if got := p.Verdict(); got != tt.want {
			t.Errorf("Verdict(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
