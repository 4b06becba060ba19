// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"vidshelf/internal/models"
)

// VideoStore handles all video-related database operations.
type VideoStore struct {
	db *sql.DB
}

// NewVideoStore creates a new VideoStore with the given database connection.
func NewVideoStore(db *sql.DB) *VideoStore {
	return &VideoStore{db: db}
}

// videoColumns lists the columns selected in video queries.
const videoColumns = `id, title, thumbnail_file, is_remote, remote_url, local_file,
	category_id, created_at`

// scanVideo scans a video row and folds the kind flag and the two nullable
// location columns into a single source variant.
func scanVideo(scanner interface{ Scan(...any) error }) (*models.Video, error) {
	var (
		v         models.Video
		isRemote  bool
		remoteURL sql.NullString
		localFile sql.NullString
	)
	err := scanner.Scan(
		&v.ID, &v.Title, &v.ThumbnailFile, &isRemote, &remoteURL, &localFile,
		&v.CategoryID, timestamp{&v.CreatedAt},
	)
	if err != nil {
		return nil, err
	}

	if isRemote {
		if !remoteURL.Valid {
			return nil, fmt.Errorf("video %d: remote video without url", v.ID)
		}
		v.Source = models.RemoteSource{URL: remoteURL.String}
	} else {
		if !localFile.Valid {
			return nil, fmt.Errorf("video %d: local video without file", v.ID)
		}
		v.Source = models.LocalSource{Filename: localFile.String}
	}
	return &v, nil
}

// sourceColumns unfolds a source variant into the stored columns.
func sourceColumns(src models.Source) (isRemote bool, remoteURL, localFile sql.NullString) {
	switch s := src.(type) {
	case models.RemoteSource:
		return true, sql.NullString{String: s.URL, Valid: true}, sql.NullString{}
	case models.LocalSource:
		return false, sql.NullString{}, sql.NullString{String: s.Filename, Valid: true}
	}
	return false, sql.NullString{}, sql.NullString{}
}

// Create inserts a new video record and returns it with the generated ID.
func (s *VideoStore) Create(v *models.Video) (*models.Video, error) {
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}

	isRemote, remoteURL, localFile := sourceColumns(v.Source)
	row := s.db.QueryRow(`
		INSERT INTO videos (title, thumbnail_file, is_remote, remote_url, local_file,
			category_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+videoColumns,
		v.Title, v.ThumbnailFile, isRemote, remoteURL, localFile,
		v.CategoryID, v.CreatedAt.UTC(),
	)
	created, err := scanVideo(row)
	if err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single video by ID. Returns nil if not found.
func (s *VideoStore) FindByID(id int64) (*models.Video, error) {
	row := s.db.QueryRow(`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find video by id: %w", err)
	}
	return v, nil
}

// ListByCategory returns the videos of one category in storage order.
func (s *VideoStore) ListByCategory(categoryID int64) ([]models.Video, error) {
	return s.list(`SELECT `+videoColumns+` FROM videos WHERE category_id = $1 ORDER BY id`, categoryID)
}

// ListByCreatedDesc returns every video, newest first.
func (s *VideoStore) ListByCreatedDesc() ([]models.Video, error) {
	return s.list(`SELECT ` + videoColumns + ` FROM videos ORDER BY created_at DESC, id DESC`)
}

func (s *VideoStore) list(query string, args ...any) ([]models.Video, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var items []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		items = append(items, *v)
	}
	return items, rows.Err()
}

// Delete removes a video record and returns it so the caller can clean
// up the thumbnail and uploaded file. Returns nil if no such video exists.
func (s *VideoStore) Delete(id int64) (*models.Video, error) {
	row := s.db.QueryRow(`
		DELETE FROM videos WHERE id = $1
		RETURNING `+videoColumns, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete video: %w", err)
	}
	return v, nil
}

// Count returns the total number of videos.
func (s *VideoStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM videos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return count, nil
}
