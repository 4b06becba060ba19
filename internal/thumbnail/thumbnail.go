// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package thumbnail produces the preview image stored with every video:
// the published thumbnail for a remote link, or the frame one second into
// a local upload. Both acquirers either return a stored file name or an
// error, never a half-written file.
package thumbnail

import (
	"errors"
	"io"
	"time"
)

// File name prefixes for the two kinds of thumbnails.
const (
	RemotePrefix = "yt_"
	LocalPrefix  = "video_"
)

// DefaultRemoteTitle is used when a remote video reports no title.
const DefaultRemoteTitle = "YouTube Video"

// ErrNoThumbnail is returned when metadata carries no thumbnail URL.
var ErrNoThumbnail = errors.New("thumbnail: metadata has no thumbnail")

// ErrNoFrame is returned when the target frame could not be decoded.
var ErrNoFrame = errors.New("thumbnail: frame not decodable")

// Writer persists an encoded thumbnail. storage.Disk implements it.
type Writer interface {
	WriteThumbnail(prefix string, now time.Time, encode func(w io.Writer) error) (string, error)
}

func nowOr(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now()
}
