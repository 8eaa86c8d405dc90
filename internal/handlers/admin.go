// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"mochireviews/internal/models"
	"mochireviews/internal/render"
	"mochireviews/internal/store"
	"mochireviews/internal/upload"
)

// defaultScore is the score a new review form starts at.
const defaultScore = 7.0

// maxUploadBody caps multipart upload requests. The file itself is
// limited to upload.MaxSize; the rest covers multipart framing.
const maxUploadBody = upload.MaxSize + 1<<20

// Admin groups the session-gated handlers for managing reviews.
type Admin struct {
	renderer *render.Renderer
	posts    *store.PostStore
	uploads  *upload.Service
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(renderer *render.Renderer, posts *store.PostStore, uploads *upload.Service) *Admin {
	return &Admin{renderer: renderer, posts: posts, uploads: uploads}
}

// PostForm is the editable state of the review form. Values are kept as
// submitted so a rejected form re-renders unchanged.
type PostForm struct {
	ID         int64
	Title      string
	Slug       string
	Excerpt    string
	Category   string
	CoverImage string
	Content    string
	Score      float64
	Status     string
}

// formFromRequest reads the review form fields from a parsed request.
// The returned form is usable for re-rendering even when err is set.
func formFromRequest(r *http.Request) (PostForm, error) {
	f := PostForm{
		Title:      r.PostFormValue("title"),
		Slug:       r.PostFormValue("slug"),
		Excerpt:    r.PostFormValue("excerpt"),
		Category:   r.PostFormValue("category"),
		CoverImage: r.PostFormValue("cover_image"),
		Content:    r.PostFormValue("content"),
		Status:     r.PostFormValue("status"),
	}
	if raw := strings.TrimSpace(r.PostFormValue("score")); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, &models.ValidationError{Field: "score", Message: "Score must be a number"}
		}
		f.Score = score
	}
	return f, nil
}

// formFromPost fills the form with a stored review.
func formFromPost(p *models.Post) PostForm {
	f := PostForm{
		ID:       p.ID,
		Title:    p.Title,
		Slug:     p.Slug,
		Category: p.Category,
		Content:  p.Content,
		Score:    p.Score,
		Status:   string(p.Status),
	}
	if p.Excerpt != nil {
		f.Excerpt = *p.Excerpt
	}
	if p.CoverImage != nil {
		f.CoverImage = *p.CoverImage
	}
	return f
}

// Input converts the form into a create request.
func (f PostForm) Input() models.PostInput {
	return models.PostInput{
		Title:      f.Title,
		Slug:       f.Slug,
		Excerpt:    f.Excerpt,
		Content:    f.Content,
		Category:   f.Category,
		CoverImage: f.CoverImage,
		Score:      f.Score,
		Status:     models.Status(f.Status),
	}
}

// Patch converts the form into an update that replaces every field.
func (f PostForm) Patch() models.PostPatch {
	status := models.Status(f.Status)
	return models.PostPatch{
		Title:      &f.Title,
		Slug:       &f.Slug,
		Excerpt:    &f.Excerpt,
		Content:    &f.Content,
		Category:   &f.Category,
		CoverImage: &f.CoverImage,
		Score:      &f.Score,
		Status:     &status,
	}
}

// --- HTML pages ---

// Dashboard lists every review with per-status counts.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := a.posts.ListAll(ctx)
	if err != nil {
		slog.Error("list posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	counts, err := a.posts.CountByStatus(ctx)
	if err != nil {
		slog.Error("count posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"Posts":     posts,
			"Total":     len(posts),
			"Published": counts[models.StatusPublished],
			"Drafts":    counts[models.StatusDraft],
		},
	}
	if r.URL.Query().Get("deleted") == "1" {
		data.Flashes = []render.Flash{{Type: "success", Message: "Review deleted."}}
	}
	a.renderer.Page(w, r, "dashboard", data)
}

// PostNew renders an empty review form.
func (a *Admin) PostNew(w http.ResponseWriter, r *http.Request) {
	form := PostForm{Score: defaultScore, Status: string(models.StatusDraft)}
	a.renderForm(w, r, "New Review", form, nil, http.StatusOK)
}

// PostCreate handles the new review form submission.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form, err := formFromRequest(r)
	if err != nil {
		a.renderForm(w, r, "New Review", form, err, http.StatusBadRequest)
		return
	}

	post, err := a.posts.Create(r.Context(), form.Input())
	if err != nil {
		a.formError(w, r, "New Review", form, err)
		return
	}

	slog.Info("post created", "id", post.ID, "slug", post.Slug, "status", post.Status)
	http.Redirect(w, r, "/admin/posts/"+strconv.FormatInt(post.ID, 10)+"/edit?saved=1", http.StatusSeeOther)
}

// PostEdit renders the form for an existing review.
func (a *Admin) PostEdit(w http.ResponseWriter, r *http.Request) {
	post, ok := a.findPost(w, r)
	if !ok {
		return
	}

	data := a.formData("Edit Review", formFromPost(post), nil, http.StatusOK)
	if r.URL.Query().Get("saved") == "1" {
		data.Flashes = []render.Flash{{Type: "success", Message: "Review saved."}}
	}
	a.renderer.Page(w, r, "post_form", data)
}

// PostUpdate handles the edit form submission.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	form, err := formFromRequest(r)
	form.ID = id
	if err != nil {
		a.renderForm(w, r, "Edit Review", form, err, http.StatusBadRequest)
		return
	}

	post, err := a.posts.Update(r.Context(), id, form.Patch())
	if err != nil {
		a.formError(w, r, "Edit Review", form, err)
		return
	}

	slog.Info("post updated", "id", post.ID, "slug", post.Slug, "status", post.Status)
	http.Redirect(w, r, "/admin/posts/"+strconv.FormatInt(post.ID, 10)+"/edit?saved=1", http.StatusSeeOther)
}

// PostDelete removes a review and returns to the dashboard.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := a.posts.Delete(r.Context(), id); err != nil {
		slog.Error("delete post failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("post deleted", "id", id)
	http.Redirect(w, r, "/admin?deleted=1", http.StatusSeeOther)
}

// findPost loads the {id} post for an HTML page, answering 404 itself
// when there is none.
func (a *Admin) findPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	post, err := a.posts.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find post failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if post == nil {
		http.NotFound(w, r)
		return nil, false
	}
	return post, true
}

// formError re-renders the form for a failed create or update.
func (a *Admin) formError(w http.ResponseWriter, r *http.Request, title string, form PostForm, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		a.renderForm(w, r, title, form, err, http.StatusBadRequest)
	case errors.Is(err, store.ErrDuplicateSlug):
		a.renderForm(w, r, title, form, &models.ValidationError{Field: "slug", Message: "Slug already exists"}, http.StatusConflict)
	case errors.Is(err, store.ErrNotFound):
		http.NotFound(w, r)
	default:
		slog.Error("save post failed", "error", err, "id", form.ID)
		a.renderForm(w, r, title, form, &models.ValidationError{Message: "Failed to save review"}, http.StatusInternalServerError)
	}
}

func (a *Admin) renderForm(w http.ResponseWriter, r *http.Request, title string, form PostForm, err error, status int) {
	a.renderer.Page(w, r, "post_form", a.formData(title, form, err, status))
}

func (a *Admin) formData(title string, form PostForm, err error, status int) *render.PageData {
	msg, field := "", ""
	if err != nil {
		msg = err.Error()
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			field = verr.Field
		}
	}
	return &render.PageData{
		Title:   title,
		Section: "dashboard",
		Status:  status,
		Data: map[string]any{
			"Form":  form,
			"Error": msg,
			"Field": field,
		},
	}
}

// --- JSON API ---

// postRequest is the JSON body of POST /api/admin/posts.
type postRequest struct {
	Title      string        `json:"title"`
	Slug       string        `json:"slug"`
	Excerpt    *string       `json:"excerpt"`
	Content    string        `json:"content"`
	Category   string        `json:"category"`
	CoverImage *string       `json:"cover_image"`
	Score      float64       `json:"score"`
	Status     models.Status `json:"status"`
}

func (req postRequest) input() models.PostInput {
	in := models.PostInput{
		Title:    req.Title,
		Slug:     req.Slug,
		Content:  req.Content,
		Category: req.Category,
		Score:    req.Score,
		Status:   req.Status,
	}
	if req.Excerpt != nil {
		in.Excerpt = *req.Excerpt
	}
	if req.CoverImage != nil {
		in.CoverImage = *req.CoverImage
	}
	return in
}

// APIList returns every review, drafts included.
func (a *Admin) APIList(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.ListAll(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "fetch posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// APICreate creates a review from a JSON body.
func (a *Admin) APICreate(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := a.posts.Create(r.Context(), req.input())
	if err != nil {
		writeStoreError(w, r, err, "create post")
		return
	}

	slog.Info("post created", "id", post.ID, "slug", post.Slug, "status", post.Status)
	writeJSON(w, http.StatusCreated, post)
}

// APIGet returns any review by id.
func (a *Admin) APIGet(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	post, err := a.posts.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, "fetch post")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// APIUpdate merges the provided JSON keys into a review. Keys that are
// absent keep their stored value.
func (a *Admin) APIUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	var raw map[string]json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch, err := patchFromJSON(raw)
	if err != nil {
		writeStoreError(w, r, err, "update post")
		return
	}

	post, err := a.posts.Update(r.Context(), id, patch)
	if err != nil {
		writeStoreError(w, r, err, "update post")
		return
	}

	slog.Info("post updated", "id", post.ID, "slug", post.Slug, "status", post.Status)
	writeJSON(w, http.StatusOK, post)
}

// patchFromJSON builds a patch from the keys present in an update body.
// A null excerpt or cover_image clears it; null on any other key is
// rejected.
func patchFromJSON(raw map[string]json.RawMessage) (models.PostPatch, error) {
	var patch models.PostPatch

	text := func(key string, nullable bool) (*string, error) {
		msg, ok := raw[key]
		if !ok {
			return nil, nil
		}
		var s *string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, &models.ValidationError{Field: key, Message: "Invalid value for " + key}
		}
		if s == nil {
			if !nullable {
				return nil, &models.ValidationError{Field: key, Message: "Invalid value for " + key}
			}
			s = new(string)
		}
		return s, nil
	}

	var err error
	if patch.Title, err = text("title", false); err != nil {
		return patch, err
	}
	if patch.Slug, err = text("slug", false); err != nil {
		return patch, err
	}
	if patch.Excerpt, err = text("excerpt", true); err != nil {
		return patch, err
	}
	if patch.Content, err = text("content", false); err != nil {
		return patch, err
	}
	if patch.Category, err = text("category", false); err != nil {
		return patch, err
	}
	if patch.CoverImage, err = text("cover_image", true); err != nil {
		return patch, err
	}

	status, err := text("status", false)
	if err != nil {
		return patch, err
	}
	if status != nil {
		s := models.Status(*status)
		patch.Status = &s
	}

	if msg, ok := raw["score"]; ok {
		var score *float64
		if err := json.Unmarshal(msg, &score); err != nil || score == nil {
			return patch, &models.ValidationError{Field: "score", Message: "Score must be a number"}
		}
		patch.Score = score
	}
	return patch, nil
}

// APIDelete removes a review.
func (a *Admin) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if err := a.posts.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, err, "delete post")
		return
	}

	slog.Info("post deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// APISlugCheck reports whether a slug is taken by another review, for
// live feedback in the editor.
func (a *Admin) APISlugCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slugParam := strings.TrimSpace(q.Get("slug"))
	if slugParam == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Slug is required", Field: "slug"})
		return
	}

	var exclude int64
	if raw := q.Get("exclude"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid exclude id")
			return
		}
		exclude = id
	}

	exists, err := a.posts.SlugExists(r.Context(), slugParam, exclude)
	if err != nil {
		writeStoreError(w, r, err, "check slug")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// Upload stores an image from the multipart "file" field and returns its
// public URL.
func (a *Admin) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			writeUploadError(w, r, upload.ErrTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			writeUploadError(w, r, upload.ErrNoFile)
		default:
			writeError(w, http.StatusBadRequest, "Invalid upload")
		}
		return
	}
	defer file.Close()

	// Read one byte past the limit so oversize files are detected.
	data, err := io.ReadAll(io.LimitReader(file, upload.MaxSize+1))
	if err != nil {
		slog.Error("read upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	url, err := a.uploads.Upload(r.Context(), data, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		writeUploadError(w, r, err)
		return
	}

	slog.Info("file uploaded", "url", url, "size", len(data))
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Message, Field: verr.Field})
		return
	}
	slog.Error("upload failed", "error", err, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, "Upload failed")
}
