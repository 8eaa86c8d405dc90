// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mochireviews/internal/models"
	"mochireviews/internal/render"
	"mochireviews/internal/richtext"
	"mochireviews/internal/store"
)

// descriptionLen bounds meta descriptions derived from a review body.
const descriptionLen = 160

// siteDescription is the default meta description.
const siteDescription = "Honest takes on games, books, TV, movies, and music, scored with the Mochimeter."

// Public groups handlers for the public site and the public JSON API.
// Drafts are never visible here.
type Public struct {
	renderer *render.Renderer
	posts    *store.PostStore
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, posts *store.PostStore) *Public {
	return &Public{renderer: renderer, posts: posts}
}

// Home renders the latest review as the featured card and the rest in a
// grid.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := p.posts.ListPublished(ctx, "")
	if err != nil {
		p.serverError(w, r, "list published posts failed", err)
		return
	}

	var rest []models.Post
	if len(posts) > 1 {
		rest = posts[1:]
	}

	keys, err := p.posts.ListPublishedCategories(ctx)
	if err != nil {
		// The category strip is decoration; render without it.
		slog.Warn("list categories failed", "error", err)
	}
	categories := make([]models.Category, 0, len(keys))
	for _, key := range keys {
		categories = append(categories, models.ParseCategory(key))
	}

	p.renderer.Page(w, r, "home", &render.PageData{
		Description: siteDescription,
		Section:     "home",
		Data: map[string]any{
			"Posts":      posts,
			"Rest":       rest,
			"Categories": categories,
		},
	})
}

// Category lists the published reviews of one category. Any key is
// accepted; unknown keys render as custom categories.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	cat := models.ParseCategory(chi.URLParam(r, "category"))

	posts, err := p.posts.ListPublished(r.Context(), cat.Key)
	if err != nil {
		p.serverError(w, r, "list category posts failed", err)
		return
	}

	p.renderer.Page(w, r, "category", &render.PageData{
		Title:       cat.Label + " Reviews",
		Description: "All " + strings.ToLower(cat.Label) + " reviews on MochiReviews.",
		Section:     cat.Key,
		Data: map[string]any{
			"Category": cat,
			"Posts":    posts,
		},
	})
}

// Post renders a single published review by slug.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	post, err := p.posts.FindPublishedBySlug(r.Context(), slugParam)
	if err != nil {
		p.serverError(w, r, "find post by slug failed", err)
		return
	}
	if post == nil {
		p.NotFound(w, r)
		return
	}

	description := richtext.PlainText(post.Content, descriptionLen)
	if post.Excerpt != nil {
		description = *post.Excerpt
	}
	var image string
	if post.CoverImage != nil {
		image = *post.CoverImage
	}

	p.renderer.Page(w, r, "post", &render.PageData{
		Title:       post.Title,
		Description: description,
		Image:       image,
		Section:     post.Category,
		Data:        map[string]any{"Post": post},
	})
}

// About renders the About page.
func (p *Public) About(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "about", &render.PageData{
		Title:       "About",
		Description: "About MochiReviews, a personal blog covering games, books, TV shows, movies, and music.",
		Section:     "about",
		Data: map[string]any{
			"Body":  p.renderer.About(),
			"Scale": render.MochimeterScale,
		},
	})
}

// NotFound renders the 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "not_found", &render.PageData{
		Title:  "Not Found",
		Status: http.StatusNotFound,
	})
}

// serverError logs err and answers a plain 500.
func (p *Public) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// --- Public JSON API ---

// categoryView is the JSON shape of a category.
type categoryView struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
	Known bool   `json:"known"`
}

// APIListPosts returns published reviews, optionally filtered by
// ?category=.
func (p *Public) APIListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := p.posts.ListPublished(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")))
	if err != nil {
		writeStoreError(w, r, err, "fetch posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// APIGetPost returns one published review by slug.
func (p *Public) APIGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := p.posts.FindPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeStoreError(w, r, err, "fetch post")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// APICategories returns the categories that have published reviews.
func (p *Public) APICategories(w http.ResponseWriter, r *http.Request) {
	keys, err := p.posts.ListPublishedCategories(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "fetch categories")
		return
	}
	views := make([]categoryView, 0, len(keys))
	for _, key := range keys {
		c := models.ParseCategory(key)
		views = append(views, categoryView{Key: c.Key, Label: c.Label, Emoji: c.Emoji, Known: c.Known})
	}
	writeJSON(w, http.StatusOK, views)
}
