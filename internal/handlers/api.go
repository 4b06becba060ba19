// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidshelf/internal/catalog"
	"vidshelf/internal/storage"
	"vidshelf/internal/tasks"
)

// API serves the JSON endpoints and the stored media files.
type API struct {
	catalog *catalog.Service
	disk    *storage.Disk
	runner  *tasks.Runner
}

// NewAPI creates the JSON and file handlers. runner is nil in sync mode.
func NewAPI(svc *catalog.Service, disk *storage.Disk, runner *tasks.Runner) *API {
	return &API{catalog: svc, disk: disk, runner: runner}
}

// Categories handles GET /get_categories.
func (a *API) Categories(w http.ResponseWriter, r *http.Request) {
	refs, err := a.catalog.Categories()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

// Task handles GET /tasks/{id}.
func (a *API) Task(w http.ResponseWriter, r *http.Request) {
	if a.runner == nil {
		writeError(w, "task not found", http.StatusNotFound)
		return
	}
	task, ok := a.runner.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, "task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Upload handles GET /uploads/{name}.
func (a *API) Upload(w http.ResponseWriter, r *http.Request) {
	a.disk.ServeUpload(w, r, chi.URLParam(r, "name"))
}

// Thumbnail handles GET /thumbnails/{name}.
func (a *API) Thumbnail(w http.ResponseWriter, r *http.Request) {
	a.disk.ServeThumbnail(w, r, chi.URLParam(r, "name"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response failed", "error", err)
	}
}

// writeError sends a JSON error response.
func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
