// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site and
// the admin interface. Each page template is paired with the layout of its
// area; pages listed as standalone carry their own <html> document.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"mochireviews/internal/markdown"
	"mochireviews/internal/middleware"
	"mochireviews/internal/models"
	"mochireviews/internal/session"
)

//go:embed templates content
var templateFS embed.FS

// SiteName is shown in page titles and the header.
const SiteName = "MochiReviews"

// PageData holds all data passed to templates.
type PageData struct {
	Title       string            // Page title for <title> tag
	Description string            // Meta description
	Image       string            // Open Graph image, if any
	Section     string            // Active nav item ("home", a category key, "about", "dashboard")
	Status      int               // HTTP status; 0 means 200
	Session     *session.Data     // Current session (nil if anonymous)
	CSRFToken   string            // CSRF token for admin forms
	Nav         []models.Category // Category navigation
	Data        map[string]any    // Page-specific data
	Flashes     []Flash           // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error"
	Message string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	roots     map[string]string
	about     template.HTML
}

// areas are the template directories, each with its own base.html.
var areas = []string{"public", "admin"}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout.
var standaloneTemplates = map[string]bool{
	"login": true,
}

// New parses every page template from the embedded filesystem and renders
// the About page Markdown.
func New() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		roots:     make(map[string]string),
	}

	for _, area := range areas {
		dir := "templates/" + area
		entries, err := templateFS.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read %s templates: %w", area, err)
		}

		// Partials (leading underscore) are shared by every page in the area.
		var partials []string
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), "_") {
				partials = append(partials, dir+"/"+e.Name())
			}
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || name == "base.html" || strings.HasPrefix(name, "_") || path.Ext(name) != ".html" {
				continue
			}
			tmplName := strings.TrimSuffix(name, ".html")
			if _, dup := r.templates[tmplName]; dup {
				return nil, fmt.Errorf("duplicate template name %q", tmplName)
			}

			var files []string
			root := "base.html"
			if standaloneTemplates[tmplName] {
				root = name
			} else {
				files = append(files, dir+"/base.html")
			}
			files = append(files, partials...)
			files = append(files, dir+"/"+name)

			tmpl, err := template.New(root).Funcs(funcMap()).ParseFS(templateFS, files...)
			if err != nil {
				return nil, fmt.Errorf("parse template %s: %w", name, err)
			}
			r.templates[tmplName] = tmpl
			r.roots[tmplName] = root
		}
	}

	about, err := fs.ReadFile(templateFS, "content/about.md")
	if err != nil {
		return nil, fmt.Errorf("read about page: %w", err)
	}
	html, err := markdown.ToHTML(string(about))
	if err != nil {
		return nil, fmt.Errorf("render about page: %w", err)
	}
	r.about = template.HTML(html)

	return r, nil
}

// About returns the rendered About page body.
func (rn *Renderer) About() template.HTML {
	return rn.about
}

// Page renders a full page. The output is buffered so a template error
// produces a clean 500 instead of a half-written page.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		slog.Error("template not found", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Inject CSRF token from context (set by CSRF middleware).
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())

	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.Nav == nil {
		data.Nav = models.KnownCategories
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, rn.roots[name], data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	status := data.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
