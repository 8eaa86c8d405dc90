// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"mochireviews/internal/middleware"
	"mochireviews/internal/render"
	"mochireviews/internal/session"
)

// Auth groups the login and logout handlers.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store) *Auth {
	return &Auth{renderer: renderer, sessions: sessions}
}

// LoginPage renders the login form. Already authenticated admins go
// straight to the dashboard.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.IsAdmin(r.Context()) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	a.renderLogin(w, r, "", http.StatusOK)
}

// LoginSubmit checks the submitted password and starts a session.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.renderLogin(w, r, "Invalid form submission", http.StatusBadRequest)
		return
	}

	err := a.sessions.Login(w, r.FormValue("password"))
	if errors.Is(err, session.ErrInvalidPassword) {
		slog.Warn("failed admin login", "remote", r.RemoteAddr)
		a.renderLogin(w, r, "Invalid password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		a.renderLogin(w, r, "An internal error occurred", http.StatusInternalServerError)
		return
	}

	slog.Info("admin logged in", "remote", r.RemoteAddr)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout ends the session and returns to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Logout(r.Context(), w, r); err != nil {
		slog.Error("logout failed", "error", err)
	}
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (a *Auth) renderLogin(w http.ResponseWriter, r *http.Request, msg string, status int) {
	a.renderer.Page(w, r, "login", &render.PageData{
		Title:  "Admin Login",
		Status: status,
		Data:   map[string]any{"Error": msg},
	})
}

// loginRequest is the JSON body of POST /api/auth/login.
type loginRequest struct {
	Password string `json:"password"`
}

// APILogin is the JSON form of LoginSubmit.
func (a *Auth) APILogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := a.sessions.Login(w, req.Password)
	if errors.Is(err, session.ErrInvalidPassword) {
		slog.Warn("failed admin login", "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// APILogout ends the session.
func (a *Auth) APILogout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Logout(r.Context(), w, r); err != nil {
		slog.Error("logout failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
