// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// MochiReviews. It organizes routes into public, API and admin groups
// with appropriate middleware stacks.
package router

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mochireviews/internal/handlers"
	"mochireviews/internal/middleware"
	"mochireviews/internal/upload"
	"mochireviews/web"
)

// Options configures the router.
type Options struct {
	Logger   *slog.Logger
	Sessions middleware.SessionLoader
	// SecureCookies marks the CSRF cookie HTTPS-only.
	SecureCookies bool
	// UploadDir is served at /uploads/ when uploads are stored on disk.
	// Empty when an object store serves them.
	UploadDir string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(opts.Sessions))

	r.NotFound(public.NotFound)

	// Health check, no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Embedded CSS and JS.
	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("router: embedded static dir missing: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	if opts.UploadDir != "" {
		r.Handle(upload.URLPrefix+"*", http.StripPrefix(upload.URLPrefix, http.FileServer(http.Dir(opts.UploadDir))))
	}

	// Public pages.
	r.Get("/", public.Home)
	r.Get("/category/{category}", public.Category)
	r.Get("/posts/{slug}", public.Post)
	r.Get("/about", public.About)

	r.Route("/api", func(r chi.Router) {
		// Public JSON, published reviews only.
		r.Get("/posts", public.APIListPosts)
		r.Get("/posts/{slug}", public.APIGetPost)
		r.Get("/categories", public.APICategories)

		r.Post("/auth/login", auth.APILogin)
		r.Post("/auth/logout", auth.APILogout)

		// Session-gated JSON.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminAPI)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/posts", admin.APIList)
				r.Post("/posts", admin.APICreate)
				r.Get("/posts/{id}", admin.APIGet)
				r.Put("/posts/{id}", admin.APIUpdate)
				r.Delete("/posts/{id}", admin.APIDelete)
				r.Get("/slug-check", admin.APISlugCheck)
			})
			r.Post("/upload", admin.Upload)
		})
	})

	// Admin pages, CSRF protected.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		// Auth pages, accessible without a session.
		r.Get("/login", auth.LoginPage)
		r.Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/", admin.Dashboard)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/new", admin.PostNew)
				r.Post("/", admin.PostCreate)
				r.Get("/{id}/edit", admin.PostEdit)
				r.Post("/{id}", admin.PostUpdate)
				r.Post("/{id}/delete", admin.PostDelete)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
