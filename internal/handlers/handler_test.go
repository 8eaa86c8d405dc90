// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Every environment runs against its own throwaway SQLite database.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"mochireviews/internal/database"
	"mochireviews/internal/middleware"
	"mochireviews/internal/models"
	"mochireviews/internal/render"
	"mochireviews/internal/session"
	"mochireviews/internal/store"
	"mochireviews/internal/upload"
)

const testPassword = "correct horse battery staple"

var (
	hashOnce sync.Once
	hashed   []byte
)

// testHash hashes testPassword once per test binary; bcrypt is slow.
func testHash(t *testing.T) []byte {
	t.Helper()
	hashOnce.Do(func() {
		h, err := session.HashPassword(testPassword)
		if err != nil {
			panic(err)
		}
		hashed = h
	})
	return hashed
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Posts     *store.PostStore
	Sessions  *session.Store
	Renderer  *render.Renderer
	UploadDir string
	Admin     *Admin
	Auth      *Auth
	Public    *Public
}

// newTestEnv creates a complete test environment with all handler
// dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Connect(database.SQLite, filepath.Join(t.TempDir(), "mochi.db"))
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db, database.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions, err := session.NewStore(session.Options{
		PasswordHash: testHash(t),
		Secret:       []byte("handler-test-secret-handler-test-secret"),
	})
	if err != nil {
		t.Fatalf("session.NewStore: %v", err)
	}

	uploadDir := t.TempDir()
	disk, err := upload.NewDisk(uploadDir)
	if err != nil {
		t.Fatalf("upload.NewDisk: %v", err)
	}

	posts := store.NewPostStore(db, database.SQLite)

	return &testEnv{
		Posts:     posts,
		Sessions:  sessions,
		Renderer:  renderer,
		UploadDir: uploadDir,
		Admin:     NewAdmin(renderer, posts, upload.New(disk)),
		Auth:      NewAuth(renderer, sessions),
		Public:    NewPublic(renderer, posts),
	}
}

// adminSession returns a valid admin session for request contexts.
func adminSession() *session.Data {
	now := time.Now()
	return &session.Data{
		ID:        "test-session",
		IsAdmin:   true,
		IssuedAt:  now,
		ExpiresAt: now.Add(session.DefaultTTL),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest builds a request with v encoded as its JSON body.
func jsonRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	var body io.Reader = http.NoBody
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeBody decodes a JSON response body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// createTestPost stores a review with sensible defaults.
func createTestPost(t *testing.T, env *testEnv, title, slug string, status models.Status) *models.Post {
	t.Helper()
	post, err := env.Posts.Create(context.Background(), models.PostInput{
		Title:    title,
		Slug:     slug,
		Excerpt:  "Excerpt for " + title,
		Content:  "<p>Body of " + title + "</p>",
		Category: "book",
		Score:    8.5,
		Status:   status,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	return post
}
