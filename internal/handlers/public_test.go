// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mochireviews/internal/models"
)

func TestHome_Empty(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.Public.Home(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Home: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "No posts yet.") {
		t.Error("Home: expected empty state")
	}
}

func TestHome_FeaturesLatestAndHidesDrafts(t *testing.T) {
	env := newTestEnv(t)
	createTestPost(t, env, "Older Review", "older-review", models.StatusPublished)
	createTestPost(t, env, "Newest Review", "newest-review", models.StatusPublished)
	createTestPost(t, env, "Secret Draft", "secret-draft", models.StatusDraft)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.Public.Home(rec, req)

	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("Home: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if strings.Contains(body, "Secret Draft") {
		t.Error("Home: draft must not be listed")
	}
	featured := strings.Index(body, "Latest Review")
	newest := strings.Index(body, "Newest Review")
	older := strings.Index(body, "Older Review")
	if featured < 0 || newest < featured || older < newest {
		t.Errorf("Home: expected newest review featured before older one (featured=%d newest=%d older=%d)", featured, newest, older)
	}
}

func TestCategory(t *testing.T) {
	env := newTestEnv(t)
	createTestPost(t, env, "A Book Review", "a-book-review", models.StatusPublished)

	tests := []struct {
		name     string
		category string
		want     []string
		wantNot  string
	}{
		{"known with posts", "book", []string{"Book Reviews", "A Book Review"}, ""},
		{"known without posts", "game", []string{"Game Reviews"}, "A Book Review"},
		{"custom category", "board-games", []string{"board-games Reviews"}, "A Book Review"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/category/"+tt.category, nil)
			req = withChiURLParam(req, "category", tt.category)
			rec := httptest.NewRecorder()
			env.Public.Category(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
			}
			body := rec.Body.String()
			for _, s := range tt.want {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
			if tt.wantNot != "" && strings.Contains(body, tt.wantNot) {
				t.Errorf("body should not contain %q", tt.wantNot)
			}
		})
	}
}

func TestPost(t *testing.T) {
	env := newTestEnv(t)
	createTestPost(t, env, "Published One", "published-one", models.StatusPublished)
	createTestPost(t, env, "Draft One", "draft-one", models.StatusDraft)

	tests := []struct {
		name       string
		slug       string
		wantStatus int
		want       string
	}{
		{"published", "published-one", http.StatusOK, "Body of Published One"},
		{"draft is hidden", "draft-one", http.StatusNotFound, "Not Found"},
		{"missing", "no-such-review", http.StatusNotFound, "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/posts/"+tt.slug, nil)
			req = withChiURLParam(req, "slug", tt.slug)
			rec := httptest.NewRecorder()
			env.Public.Post(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestPost_MetaDescriptionFallsBackToContent(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Posts.Create(t.Context(), models.PostInput{
		Title:    "No Excerpt",
		Content:  "<p>The opening line of the body.</p>",
		Category: "movie",
		Score:    6,
		Status:   models.StatusPublished,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/posts/no-excerpt", nil)
	req = withChiURLParam(req, "slug", "no-excerpt")
	rec := httptest.NewRecorder()
	env.Public.Post(rec, req)

	if !strings.Contains(rec.Body.String(), `content="The opening line of the body."`) {
		t.Errorf("expected description derived from content, got: %s", rec.Body.String()[:min(rec.Body.Len(), 800)])
	}
}

func TestAbout(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	rec := httptest.NewRecorder()
	env.Public.About(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("About: got status %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Essential") {
		t.Error("About: expected the Mochimeter scale")
	}
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	rec := httptest.NewRecorder()
	env.Public.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("NotFound: got status %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAPIListPosts(t *testing.T) {
	env := newTestEnv(t)
	createTestPost(t, env, "Book One", "book-one", models.StatusPublished)
	createTestPost(t, env, "Hidden", "hidden", models.StatusDraft)
	if _, err := env.Posts.Create(t.Context(), models.PostInput{
		Title: "Game One", Content: "<p>x</p>", Category: "game", Score: 9, Status: models.StatusPublished,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all published", "", []string{"game-one", "book-one"}},
		{"filtered", "?category=book", []string{"book-one"}},
		{"unknown category", "?category=opera", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/posts"+tt.query, nil)
			rec := httptest.NewRecorder()
			env.Public.APIListPosts(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("got status %d, want %d", rec.Code, http.StatusOK)
			}
			var posts []models.Post
			decodeBody(t, rec, &posts)
			if len(posts) != len(tt.want) {
				t.Fatalf("got %d posts, want %d", len(posts), len(tt.want))
			}
			for i, slug := range tt.want {
				if posts[i].Slug != slug {
					t.Errorf("posts[%d].Slug = %q, want %q", i, posts[i].Slug, slug)
				}
			}
		})
	}
}

func TestAPIGetPost(t *testing.T) {
	env := newTestEnv(t)
	createTestPost(t, env, "Visible", "visible", models.StatusPublished)
	createTestPost(t, env, "Invisible", "invisible", models.StatusDraft)

	tests := []struct {
		slug       string
		wantStatus int
	}{
		{"visible", http.StatusOK},
		{"invisible", http.StatusNotFound},
		{"missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/posts/"+tt.slug, nil)
			req = withChiURLParam(req, "slug", tt.slug)
			rec := httptest.NewRecorder()
			env.Public.APIGetPost(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusNotFound {
				var body errorBody
				decodeBody(t, rec, &body)
				if body.Error != "Post not found" {
					t.Errorf("error = %q, want %q", body.Error, "Post not found")
				}
			}
		})
	}
}

func TestAPICategories(t *testing.T) {
	env := newTestEnv(t)
	createTestPost(t, env, "Book", "book", models.StatusPublished)
	if _, err := env.Posts.Create(t.Context(), models.PostInput{
		Title: "Opera Night", Content: "<p>x</p>", Category: "opera", Status: models.StatusPublished,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()
	env.Public.APICategories(rec, req)

	var got []categoryView
	decodeBody(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("got %d categories, want 2", len(got))
	}
	if got[0].Key != "book" || !got[0].Known {
		t.Errorf("got[0] = %+v, want known book", got[0])
	}
	if got[1].Key != "opera" || got[1].Known {
		t.Errorf("got[1] = %+v, want custom opera", got[1])
	}
}
