// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxVideoTitleLength is the column width of videos.title.
const MaxVideoTitleLength = 200

// MaxRemoteURLLength is the column width of videos.remote_url.
const MaxRemoteURLLength = 300

// SourceKind names the variant of a video's source.
type SourceKind string

const (
	SourceRemote SourceKind = "remote"
	SourceLocal  SourceKind = "local"
)

// Source is where a video's content lives. It is either a RemoteSource
// or a LocalSource; no other implementations exist.
type Source interface {
	Kind() SourceKind
	isSource()
}

// RemoteSource is a link to a video hosted elsewhere (e.g. YouTube).
type RemoteSource struct {
	URL string `json:"url"`
}

// Kind implements Source.
func (RemoteSource) Kind() SourceKind { return SourceRemote }
func (RemoteSource) isSource()        {}

// LocalSource is an uploaded file stored in the upload directory.
type LocalSource struct {
	Filename string `json:"filename"`
}

// Kind implements Source.
func (LocalSource) Kind() SourceKind { return SourceLocal }
func (LocalSource) isSource()        {}

// Video is a cataloged entry. ThumbnailFile names a file in the thumbnail
// directory and is always set for stored rows.
type Video struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	ThumbnailFile string    `json:"thumbnail_file"`
	CategoryID    int64     `json:"category_id"`
	CreatedAt     time.Time `json:"created_at"`
	Source        Source    `json:"source"`
}

// IsRemote reports whether the video is a remote link.
func (v Video) IsRemote() bool {
	_, ok := v.Source.(RemoteSource)
	return ok
}

// RemoteURL returns the link of a remote video, or "" for local videos.
func (v Video) RemoteURL() string {
	if s, ok := v.Source.(RemoteSource); ok {
		return s.URL
	}
	return ""
}

// LocalFile returns the stored filename of a local video, or "" for remote ones.
func (v Video) LocalFile() string {
	if s, ok := v.Source.(LocalSource); ok {
		return s.Filename
	}
	return ""
}

// DateKey returns the UTC calendar date of the creation time (YYYY-MM-DD).
func (v Video) DateKey() string {
	return v.CreatedAt.UTC().Format("2006-01-02")
}

// Validate checks the invariants a video must satisfy before insert.
func (v Video) Validate() error {
	if strings.TrimSpace(v.Title) == "" {
		return errors.New("title is required")
	}
	if v.ThumbnailFile == "" {
		return errors.New("thumbnail file is required")
	}
	if v.CategoryID <= 0 {
		return errors.New("category is required")
	}
	switch s := v.Source.(type) {
	case RemoteSource:
		if s.URL == "" {
			return errors.New("remote source requires a url")
		}
		if utf8.RuneCountInString(s.URL) > MaxRemoteURLLength {
			return errors.New("remote url is too long")
		}
	case LocalSource:
		if s.Filename == "" {
			return errors.New("local source requires a filename")
		}
	default:
		return errors.New("source is required")
	}
	return nil
}

// TruncateTitle cuts a title to the column width on a rune boundary.
func TruncateTitle(title string) string {
	r := []rune(title)
	if len(r) <= MaxVideoTitleLength {
		return title
	}
	return string(r[:MaxVideoTitleLength])
}
