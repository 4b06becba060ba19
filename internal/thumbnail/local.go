// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"vidshelf/internal/imaging"
)

// Local acquires thumbnails from uploaded video files.
type Local struct {
	Frames FrameSource
	Writer Writer
	Image  imaging.Options
	Now    func() time.Time
}

// FrameIndex returns the index of the frame one second into a video
// playing at fps.
func FrameIndex(fps float64) int {
	return int(math.Floor(fps))
}

// Acquire stores the frame one second into the video at path as a JPEG
// and returns the stored file name.
func (l *Local) Acquire(ctx context.Context, path string) (string, error) {
	fps, err := l.Frames.FrameRate(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read frame rate: %w", err)
	}
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return "", fmt.Errorf("read frame rate: unknown frame rate for %s", path)
	}

	frame, err := l.Frames.FrameAt(ctx, path, FrameIndex(fps))
	if err != nil {
		return "", fmt.Errorf("read frame: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(frame))
	if err != nil {
		return "", err
	}

	name, err := l.Writer.WriteThumbnail(LocalPrefix, nowOr(l.Now), func(w io.Writer) error {
		return imaging.EncodeJPEG(w, imaging.Fit(img, l.Image.MaxWidth), l.Image.Quality)
	})
	if err != nil {
		return "", fmt.Errorf("store thumbnail: %w", err)
	}
	return name, nil
}
