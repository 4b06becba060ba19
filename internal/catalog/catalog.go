// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog implements the video catalog operations: adding
// categories, ingesting remote links and local uploads, deleting entries,
// and building the gallery and calendar views. It owns the coordination
// between the database rows and the files on disk.
package catalog

import (
	"context"
	"errors"
	"time"

	"vidshelf/internal/metrics"
	"vidshelf/internal/storage"
	"vidshelf/internal/store"
)

var (
	// ErrInvalidInput reports a missing or malformed field, or a reference
	// to a category that does not exist.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAcquisition reports that a thumbnail could not be produced.
	ErrAcquisition = errors.New("thumbnail acquisition failed")

	// ErrNotFound reports that the addressed video or category is absent.
	ErrNotFound = errors.New("not found")

	// ErrCategoryNotEmpty reports a delete of a category that still owns videos.
	ErrCategoryNotEmpty = errors.New("category still has videos")
)

// RemoteAcquirer produces a thumbnail and title for a remote video link.
type RemoteAcquirer interface {
	Acquire(ctx context.Context, url string) (thumbnailFile, title string, err error)
}

// LocalAcquirer produces a thumbnail for a stored video file.
type LocalAcquirer interface {
	Acquire(ctx context.Context, path string) (thumbnailFile string, err error)
}

// Invalidator drops rendered pages after the catalog changes.
type Invalidator interface {
	InvalidateAll(ctx context.Context)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Categories *store.CategoryStore
	Videos     *store.VideoStore
	Disk       *storage.Disk
	Remote     RemoteAcquirer
	Local      LocalAcquirer

	// AcquireTimeout bounds a single thumbnail acquisition (0 = no limit).
	AcquireTimeout time.Duration

	Now     func() time.Time // UTC clock; time.Now when nil
	Pages   Invalidator      // optional
	Metrics *metrics.Metrics // optional
}

// Service runs catalog operations.
type Service struct {
	categories *store.CategoryStore
	videos     *store.VideoStore
	disk       *storage.Disk
	remote     RemoteAcquirer
	local      LocalAcquirer
	timeout    time.Duration
	now        func() time.Time
	pages      Invalidator
	metrics    *metrics.Metrics
}

// New creates a Service from its dependencies.
func New(d Deps) *Service {
	now := d.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		categories: d.Categories,
		videos:     d.Videos,
		disk:       d.Disk,
		remote:     d.Remote,
		local:      d.Local,
		timeout:    d.AcquireTimeout,
		now:        now,
		pages:      d.Pages,
		metrics:    d.Metrics,
	}
}

// changed clears rendered pages after a successful write. It uses a fresh
// context so a cancelled request still invalidates.
func (s *Service) changed() {
	if s.pages == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.pages.InvalidateAll(ctx)
}

func (s *Service) acquireContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}
