// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"vidshelf/internal/filename"
	"vidshelf/internal/metrics"
	"vidshelf/internal/models"
)

// DefaultLocalTitle is used when an upload is submitted without a title.
const DefaultLocalTitle = "Untitled Video"

// allowedExtensions are the accepted upload extensions (lowercase).
var allowedExtensions = map[string]bool{
	"mp4":  true,
	"avi":  true,
	"mov":  true,
	"mkv":  true,
	"webm": true,
	"flv":  true,
}

// AllowedExtension reports whether name has an accepted video extension.
func AllowedExtension(name string) bool {
	return allowedExtensions[filename.Ext(name)]
}

// RemoteRequest is a validated remote ingest waiting for its thumbnail.
type RemoteRequest struct {
	URL        string
	CategoryID int64
}

// PrepareRemote validates a remote ingest without touching the network.
func (s *Service) PrepareRemote(url string, categoryID int64) (*RemoteRequest, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		s.metrics.Ingest(metrics.KindRemote, metrics.OutcomeInvalid)
		return nil, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(url) > models.MaxRemoteURLLength {
		s.metrics.Ingest(metrics.KindRemote, metrics.OutcomeInvalid)
		return nil, fmt.Errorf("%w: url is longer than %d characters", ErrInvalidInput, models.MaxRemoteURLLength)
	}
	if err := s.categoryExists(categoryID); err != nil {
		s.metrics.Ingest(metrics.KindRemote, metrics.OutcomeInvalid)
		return nil, err
	}
	return &RemoteRequest{URL: url, CategoryID: categoryID}, nil
}

// FinishRemote acquires the thumbnail and title for req and stores the
// video. Nothing is persisted when acquisition fails.
func (s *Service) FinishRemote(ctx context.Context, req *RemoteRequest) (*models.Video, error) {
	actx, cancel := s.acquireContext(ctx)
	start := time.Now()
	thumb, title, err := s.remote.Acquire(actx, req.URL)
	cancel()
	s.metrics.ObserveThumbnail(metrics.KindRemote, time.Since(start))
	if err != nil {
		slog.Warn("remote thumbnail acquisition failed", "url", req.URL, "error", err)
		s.metrics.Ingest(metrics.KindRemote, metrics.OutcomeFailed)
		return nil, fmt.Errorf("%w: %v", ErrAcquisition, err)
	}

	v, err := s.videos.Create(&models.Video{
		Title:         models.TruncateTitle(title),
		ThumbnailFile: thumb,
		CategoryID:    req.CategoryID,
		CreatedAt:     s.now(),
		Source:        models.RemoteSource{URL: req.URL},
	})
	if err != nil {
		s.discardThumbnail(thumb)
		s.metrics.Ingest(metrics.KindRemote, metrics.OutcomeFailed)
		return nil, err
	}

	slog.Info("remote video added", "id", v.ID, "url", req.URL, "category_id", v.CategoryID)
	s.metrics.Ingest(metrics.KindRemote, metrics.OutcomeCreated)
	s.changed()
	return v, nil
}

// AddRemoteVideo validates, acquires and stores a remote video link.
func (s *Service) AddRemoteVideo(ctx context.Context, url string, categoryID int64) (*models.Video, error) {
	req, err := s.PrepareRemote(url, categoryID)
	if err != nil {
		return nil, err
	}
	return s.FinishRemote(ctx, req)
}

// Upload is a submitted local video file.
type Upload struct {
	Filename   string    // client-side name
	File       io.Reader // file content; nil when no file was sent
	Title      string
	CategoryID int64
}

// PendingUpload is an upload stored on disk that has no row yet.
type PendingUpload struct {
	StoredName string
	Title      string
	CategoryID int64
}

// StoreUpload validates an upload and writes the file to the upload
// directory. Rejected uploads leave nothing on disk.
func (s *Service) StoreUpload(up Upload) (*PendingUpload, error) {
	if up.File == nil || up.Filename == "" {
		s.metrics.Ingest(metrics.KindLocal, metrics.OutcomeInvalid)
		return nil, fmt.Errorf("%w: video file is required", ErrInvalidInput)
	}
	if err := s.categoryExists(up.CategoryID); err != nil {
		s.metrics.Ingest(metrics.KindLocal, metrics.OutcomeInvalid)
		return nil, err
	}
	if !AllowedExtension(up.Filename) {
		s.metrics.Ingest(metrics.KindLocal, metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: file type %q is not allowed", ErrInvalidInput, filename.Ext(up.Filename))
	}

	stored, err := s.disk.SaveUpload(up.Filename, up.File, s.now())
	if err != nil {
		s.metrics.Ingest(metrics.KindLocal, metrics.OutcomeFailed)
		return nil, err
	}

	title := strings.TrimSpace(up.Title)
	if title == "" {
		title = DefaultLocalTitle
	}
	return &PendingUpload{
		StoredName: stored,
		Title:      models.TruncateTitle(title),
		CategoryID: up.CategoryID,
	}, nil
}

// FinishUpload extracts the thumbnail for a stored upload and creates its
// row. When extraction fails no row is created and the stored upload is
// left in place.
func (s *Service) FinishUpload(ctx context.Context, p *PendingUpload) (*models.Video, error) {
	path := s.disk.UploadPath(p.StoredName)

	actx, cancel := s.acquireContext(ctx)
	start := time.Now()
	thumb, err := s.local.Acquire(actx, path)
	cancel()
	s.metrics.ObserveThumbnail(metrics.KindLocal, time.Since(start))
	if err != nil {
		slog.Warn("local thumbnail extraction failed; upload kept without a row",
			"path", path, "error", err)
		s.metrics.Ingest(metrics.KindLocal, metrics.OutcomeFailed)
		return nil, fmt.Errorf("%w: %v", ErrAcquisition, err)
	}

	v, err := s.videos.Create(&models.Video{
		Title:         p.Title,
		ThumbnailFile: thumb,
		CategoryID:    p.CategoryID,
		CreatedAt:     s.now(),
		Source:        models.LocalSource{Filename: p.StoredName},
	})
	if err != nil {
		s.discardThumbnail(thumb)
		s.metrics.Ingest(metrics.KindLocal, metrics.OutcomeFailed)
		return nil, err
	}

	slog.Info("local video added", "id", v.ID, "file", p.StoredName, "category_id", v.CategoryID)
	s.metrics.Ingest(metrics.KindLocal, metrics.OutcomeCreated)
	s.changed()
	return v, nil
}

// AddLocalVideo stores an upload, extracts its thumbnail and creates its row.
func (s *Service) AddLocalVideo(ctx context.Context, up Upload) (*models.Video, error) {
	p, err := s.StoreUpload(up)
	if err != nil {
		return nil, err
	}
	return s.FinishUpload(ctx, p)
}

// DeleteVideo removes a video row and its files. Missing files are ignored.
func (s *Service) DeleteVideo(id int64) (*models.Video, error) {
	v, err := s.videos.Delete(id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}

	if err := s.disk.RemoveThumbnail(v.ThumbnailFile); err != nil {
		slog.Warn("remove thumbnail failed", "video_id", v.ID, "file", v.ThumbnailFile, "error", err)
	}
	if name := v.LocalFile(); name != "" {
		if err := s.disk.RemoveUpload(name); err != nil {
			slog.Warn("remove upload failed", "video_id", v.ID, "file", name, "error", err)
		}
	}

	slog.Info("video deleted", "id", v.ID, "title", v.Title)
	s.changed()
	return v, nil
}

// discardThumbnail removes a thumbnail whose row could not be written.
func (s *Service) discardThumbnail(name string) {
	if err := s.disk.RemoveThumbnail(name); err != nil {
		slog.Warn("remove orphan thumbnail failed", "file", name, "error", err)
	}
}
