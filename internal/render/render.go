// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the catalog views.
// Pages are rendered into a buffer first so a template error never sends a
// half-written page, and so the bytes can be stored in the page cache.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"vidshelf/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names.
const (
	PageGallery  = "gallery"
	PageCalendar = "calendar"
)

// PageData holds all data passed to page templates.
type PageData struct {
	Title      string               // Page title for <title> tag
	Section    string               // Active nav entry ("gallery", "calendar")
	Categories []models.CategoryRef // Options for the ingest forms
	TaskID     string               // Background task to point the user at
	Data       any                  // Page-specific data (*catalog.Gallery, *catalog.Calendar)
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New creates a Renderer by parsing every page template from the embedded
// filesystem, each paired with the base layout.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "active"
				}
				return ""
			},
			"isDev": func() bool {
				return devMode
			},
			"thumbURL": func(name string) string {
				return "/thumbnails/" + url.PathEscape(name)
			},
			"uploadURL": func(name string) string {
				return "/uploads/" + url.PathEscape(name)
			},
			"formatTime": func(t time.Time) string {
				return t.UTC().Format("2006-01-02 15:04")
			},
			// formatDate turns a YYYY-MM-DD key into a heading like
			// "Monday, 2 March 2026".
			"formatDate": func(key string) string {
				d, err := time.Parse("2006-01-02", key)
				if err != nil {
					return key
				}
				return d.Format("Monday, 2 January 2006")
			},
		},
	}

	for _, name := range []string{PageGallery, PageCalendar} {
		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			templatesFS, "templates/base.html", "templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}

	return r, nil
}

// Bytes renders a full page into memory.
func (rn *Renderer) Bytes(name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// WriteHTML sends pre-rendered HTML with a 200 status.
func WriteHTML(w http.ResponseWriter, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}
