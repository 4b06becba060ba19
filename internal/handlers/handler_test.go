// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Every test runs against its own SQLite database and file tree.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pressly/goose/v3"

	"vidshelf/internal/cache"
	"vidshelf/internal/catalog"
	"vidshelf/internal/database"
	"vidshelf/internal/metrics"
	"vidshelf/internal/render"
	"vidshelf/internal/storage"
	"vidshelf/internal/store"
	"vidshelf/internal/tasks"
	"vidshelf/internal/thumbnail"
)

// fakeRemote writes a placeholder thumbnail instead of calling yt-dlp.
type fakeRemote struct {
	disk  *storage.Disk
	title string
	err   error
	calls int
}

func (f *fakeRemote) Acquire(ctx context.Context, url string) (string, string, error) {
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	name, err := f.disk.WriteThumbnail(thumbnail.RemotePrefix, time.Now(), writeStub)
	return name, f.title, err
}

// fakeLocal writes a placeholder thumbnail instead of calling ffmpeg.
type fakeLocal struct {
	disk *storage.Disk
	err  error
}

func (f *fakeLocal) Acquire(ctx context.Context, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.disk.WriteThumbnail(thumbnail.LocalPrefix, time.Now(), writeStub)
}

func writeStub(w io.Writer) error {
	_, err := w.Write([]byte("jpeg"))
	return err
}

type harnessOptions struct {
	async     bool
	pageCache *cache.PageCache
	metrics   *metrics.Metrics
}

// harness bundles a router with the stores and fakes behind it.
type harness struct {
	router     http.Handler
	svc        *catalog.Service
	categories *store.CategoryStore
	videos     *store.VideoStore
	disk       *storage.Disk
	remote     *fakeRemote
	local      *fakeLocal
	runner     *tasks.Runner
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()

	root := t.TempDir()
	db, dialect, err := database.Connect(filepath.Join(root, "handlers.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db, dialect); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)
	t.Cleanup(func() { db.Close() })

	disk, err := storage.NewDisk(filepath.Join(root, "uploads"), filepath.Join(root, "thumbnails"))
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}

	renderer, err := render.New(false)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	h := &harness{
		categories: store.NewCategoryStore(db),
		videos:     store.NewVideoStore(db),
		disk:       disk,
		remote:     &fakeRemote{disk: disk, title: "Harness Remote"},
		local:      &fakeLocal{disk: disk},
	}
	h.svc = catalog.New(catalog.Deps{
		Categories: h.categories,
		Videos:     h.videos,
		Disk:       disk,
		Remote:     h.remote,
		Local:      h.local,
		Pages:      opts.pageCache,
		Metrics:    opts.metrics,
	})

	if opts.async {
		h.runner = tasks.NewRunner(tasks.Options{Workers: 1})
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			h.runner.Shutdown(ctx)
		})
	}

	views := NewViews(h.svc, renderer, opts.pageCache, opts.metrics)
	cat := NewCatalog(h.svc, h.runner)
	api := NewAPI(h.svc, disk, h.runner)

	r := chi.NewRouter()
	r.Get("/", views.Gallery)
	r.Get("/calendar", views.Calendar)
	r.Get("/get_categories", api.Categories)
	r.Get("/tasks/{id}", api.Task)
	r.Get("/uploads/{name}", api.Upload)
	r.Get("/thumbnails/{name}", api.Thumbnail)
	r.Post("/add_category", cat.AddCategory)
	r.Post("/add_youtube", cat.AddYouTube)
	r.Post("/upload_video", cat.UploadVideo)
	r.Post("/delete_video/{id}", cat.DeleteVideo)
	r.Post("/delete_category", cat.DeleteCategory)
	r.Post("/delete_category/{id}", cat.DeleteCategory)
	h.router = r

	return h
}

// do sends a request through the router and returns the recorder.
func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) get(target string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (h *harness) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

// postUpload sends a multipart upload. An empty filename omits the file part.
func (h *harness) postUpload(t *testing.T, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("video_file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload_video", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.do(req)
}

// category creates a category directly through the service.
func (h *harness) category(t *testing.T, name string) int64 {
	t.Helper()
	cat, _, err := h.svc.AddCategory(name)
	if err != nil || cat == nil {
		t.Fatalf("AddCategory(%q): %v", name, err)
	}
	return cat.ID
}

func (h *harness) videoCount(t *testing.T) int {
	t.Helper()
	n, err := h.videos.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}

// waitTask polls the runner until the task leaves the pending and running states.
func (h *harness) waitTask(t *testing.T, id string) tasks.Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, ok := h.runner.Get(id)
		if !ok {
			t.Fatalf("task %s not found", id)
		}
		if task.Status == tasks.StatusDone || task.Status == tasks.StatusFailed {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %s did not finish", id)
	return tasks.Task{}
}

func dirCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}
	return len(entries)
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

var errUnreachable = errors.New("unreachable")
