// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for vidshelf. Handlers are
// grouped by concern (page views, catalog writes, files and status) and
// receive their dependencies through the handler struct.
package handlers

import (
	"log/slog"
	"net/http"

	"vidshelf/internal/cache"
	"vidshelf/internal/catalog"
	"vidshelf/internal/metrics"
	"vidshelf/internal/render"
)

// Views renders the gallery and calendar pages. It checks the Valkey page
// cache before building a view, and stores rendered results on miss under
// the cache generation read before the catalog was queried.
type Views struct {
	catalog   *catalog.Service
	renderer  *render.Renderer
	pageCache *cache.PageCache
	metrics   *metrics.Metrics
}

// NewViews creates the page view handlers. pageCache and m may be nil.
func NewViews(svc *catalog.Service, renderer *render.Renderer, pageCache *cache.PageCache, m *metrics.Metrics) *Views {
	return &Views{
		catalog:   svc,
		renderer:  renderer,
		pageCache: pageCache,
		metrics:   m,
	}
}

// Gallery renders the videos grouped by category, together with the forms
// for adding categories and videos.
func (v *Views) Gallery(w http.ResponseWriter, r *http.Request) {
	task := taskID(r)
	slot := v.cacheSlot(r, task, cache.GalleryKey)
	if v.serveCached(w, r, slot) {
		return
	}

	gallery, err := v.catalog.Gallery()
	if err != nil {
		slog.Error("build gallery failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	categories, err := v.catalog.Categories()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	v.render(w, r, render.PageGallery, slot, &render.PageData{
		Title:      "Gallery",
		Section:    "gallery",
		Categories: categories,
		TaskID:     task,
		Data:       gallery,
	})
}

// Calendar renders the videos grouped by the day they were added, most
// recent first.
func (v *Views) Calendar(w http.ResponseWriter, r *http.Request) {
	task := taskID(r)
	slot := v.cacheSlot(r, task, cache.CalendarKey)
	if v.serveCached(w, r, slot) {
		return
	}

	calendar, err := v.catalog.Calendar()
	if err != nil {
		slog.Error("build calendar failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	v.render(w, r, render.PageCalendar, slot, &render.PageData{
		Title:   "Calendar",
		Section: "calendar",
		TaskID:  task,
		Data:    calendar,
	})
}

// pageSlot names where a page lives in the cache. A zero key means the
// response is not cached.
type pageSlot struct {
	gen int64
	key string
}

// cacheSlot reads the cache generation for a page. Pages carrying a task
// notice are never cached.
func (v *Views) cacheSlot(r *http.Request, task, key string) pageSlot {
	if task != "" {
		return pageSlot{}
	}
	gen, ok := v.pageCache.Generation(r.Context())
	if !ok {
		return pageSlot{}
	}
	return pageSlot{gen: gen, key: key}
}

// serveCached writes a cached page and reports whether it did.
func (v *Views) serveCached(w http.ResponseWriter, r *http.Request, slot pageSlot) bool {
	if slot.key == "" {
		return false
	}
	html, ok := v.pageCache.Get(r.Context(), slot.gen, slot.key)
	v.metrics.CacheLookup(ok)
	if !ok {
		return false
	}
	render.WriteHTML(w, html)
	return true
}

// render executes the page and stores it in its cache slot, if any.
func (v *Views) render(w http.ResponseWriter, r *http.Request, page string, slot pageSlot, data *render.PageData) {
	html, err := v.renderer.Bytes(page, data)
	if err != nil {
		slog.Error("render page failed", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if slot.key != "" {
		v.pageCache.Set(r.Context(), slot.gen, slot.key, html)
	}
	render.WriteHTML(w, html)
}
