// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// vidshelf. Page views and reads are open; catalog writes get the body-size
// limit, and the two ingest endpoints are rate limited per client.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidshelf/internal/handlers"
	"vidshelf/internal/metrics"
	"vidshelf/internal/middleware"
	"vidshelf/web"
)

// Deps are the handler groups and shared middleware state the router wires.
type Deps struct {
	Views   *handlers.Views
	Catalog *handlers.Catalog
	API     *handlers.API

	// Metrics is optional; /metrics is not mounted when it is nil.
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter

	// MaxUploadBytes caps request bodies on the write routes (0 = no cap).
	MaxUploadBytes int64
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Metrics(d.Metrics))

	r.Get("/health", healthHandler)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.Static())))

	// Pages
	r.Get("/", d.Views.Gallery)
	r.Get("/calendar", d.Views.Calendar)

	// JSON and stored files
	r.Get("/get_categories", d.API.Categories)
	r.Get("/tasks/{id}", d.API.Task)
	r.Get("/uploads/{name}", d.API.Upload)
	r.Get("/thumbnails/{name}", d.API.Thumbnail)

	// Catalog writes
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(d.MaxUploadBytes))

		r.Post("/add_category", d.Catalog.AddCategory)
		r.Post("/delete_video/{id}", d.Catalog.DeleteVideo)
		r.Post("/delete_category", d.Catalog.DeleteCategory)
		r.Post("/delete_category/{id}", d.Catalog.DeleteCategory)

		r.Group(func(r chi.Router) {
			if d.RateLimiter != nil {
				r.Use(d.RateLimiter.Middleware)
			}
			r.Post("/add_youtube", d.Catalog.AddYouTube)
			r.Post("/upload_video", d.Catalog.UploadVideo)
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
