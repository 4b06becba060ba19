// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidshelf/internal/catalog"
	"vidshelf/internal/tasks"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// Task kinds reported by /tasks/{id}.
const (
	taskRemote = "remote"
	taskUpload = "upload"
)

// Catalog groups the handlers that change the catalog. Form posts always
// answer with a 303 redirect; validation and acquisition failures are
// logged rather than shown.
type Catalog struct {
	catalog *catalog.Service
	runner  *tasks.Runner
}

// NewCatalog creates the catalog write handlers. When runner is non-nil,
// thumbnail acquisition runs in the background and the redirect carries
// the task id.
func NewCatalog(svc *catalog.Service, runner *tasks.Runner) *Catalog {
	return &Catalog{catalog: svc, runner: runner}
}

// AddCategory handles POST /add_category.
func (c *Catalog) AddCategory(w http.ResponseWriter, r *http.Request) {
	name := formText(r, "category_name", maxFieldLen)
	if _, _, err := c.catalog.AddCategory(name); err != nil && !errors.Is(err, catalog.ErrInvalidInput) {
		slog.Error("add category failed", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AddYouTube handles POST /add_youtube.
func (c *Catalog) AddYouTube(w http.ResponseWriter, r *http.Request) {
	url := formText(r, "youtube_url", maxURLLen)
	categoryID := parseID(r.FormValue("category_id"))

	req, err := c.catalog.PrepareRemote(url, categoryID)
	if err != nil {
		c.finish(w, r, "add remote video", err)
		return
	}

	if c.runner != nil {
		task, err := c.runner.Submit(taskRemote, func(ctx context.Context) (int64, error) {
			v, err := c.catalog.FinishRemote(ctx, req)
			if err != nil {
				return 0, err
			}
			return v.ID, nil
		})
		if err == nil {
			http.Redirect(w, r, "/?task="+task.ID, http.StatusSeeOther)
			return
		}
		slog.Warn("background queue unavailable, running inline", "kind", taskRemote, "error", err)
	}

	_, err = c.catalog.FinishRemote(r.Context(), req)
	c.finish(w, r, "add remote video", err)
}

// UploadVideo handles POST /upload_video.
func (c *Catalog) UploadVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			slog.Warn("parse upload form failed", "error", err)
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer r.MultipartForm.RemoveAll()

	up := catalog.Upload{
		Title:      formText(r, "video_title", maxFieldLen),
		CategoryID: parseID(r.FormValue("category_id")),
	}
	file, header, err := r.FormFile("video_file")
	switch {
	case err == nil:
		defer file.Close()
		up.File = file
		up.Filename = header.Filename
	case !errors.Is(err, http.ErrMissingFile):
		slog.Warn("read upload file failed", "error", err)
	}

	pending, err := c.catalog.StoreUpload(up)
	if err != nil {
		c.finish(w, r, "upload video", err)
		return
	}

	if c.runner != nil {
		task, err := c.runner.Submit(taskUpload, func(ctx context.Context) (int64, error) {
			v, err := c.catalog.FinishUpload(ctx, pending)
			if err != nil {
				return 0, err
			}
			return v.ID, nil
		})
		if err == nil {
			http.Redirect(w, r, "/?task="+task.ID, http.StatusSeeOther)
			return
		}
		slog.Warn("background queue unavailable, running inline", "kind", taskUpload, "error", err)
	}

	_, err = c.catalog.FinishUpload(r.Context(), pending)
	c.finish(w, r, "upload video", err)
}

// DeleteVideo handles POST /delete_video/{id}.
func (c *Catalog) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id := parseID(chi.URLParam(r, "id"))
	if id == 0 {
		http.NotFound(w, r)
		return
	}

	if _, err := c.catalog.DeleteVideo(id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("delete video failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// DeleteCategory handles POST /delete_category/{id} and the gallery form's
// POST /delete_category, which names the category in category_id. Only
// empty categories can be deleted.
func (c *Catalog) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = r.PostFormValue("category_id")
	}
	id := parseID(raw)
	if id == 0 {
		http.NotFound(w, r)
		return
	}

	err := c.catalog.DeleteCategory(id)
	switch {
	case err == nil:
		http.Redirect(w, r, backTo(r), http.StatusSeeOther)
	case errors.Is(err, catalog.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, catalog.ErrCategoryNotEmpty):
		http.Error(w, "Category still has videos", http.StatusConflict)
	default:
		slog.Error("delete category failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// finish redirects home after a catalog write. Expected failures were
// already logged by the catalog; anything else is a server error.
func (c *Catalog) finish(w http.ResponseWriter, r *http.Request, op string, err error) {
	if err != nil && !errors.Is(err, catalog.ErrInvalidInput) && !errors.Is(err, catalog.ErrAcquisition) {
		slog.Error(op+" failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err != nil {
		slog.Info(op+" rejected", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
