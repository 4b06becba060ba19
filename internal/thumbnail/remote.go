// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"vidshelf/internal/imaging"
)

// maxThumbnailBytes caps the downloaded thumbnail size.
const maxThumbnailBytes = 20 << 20

// Remote acquires thumbnails for remote video links.
type Remote struct {
	Extractor Extractor
	Client    *http.Client
	Writer    Writer
	Image     imaging.Options
	Now       func() time.Time
}

// Acquire fetches metadata for url, downloads its thumbnail and stores it
// as a JPEG. It returns the stored file name and the video title.
func (r *Remote) Acquire(ctx context.Context, url string) (string, string, error) {
	meta, err := r.Extractor.Extract(ctx, url)
	if err != nil {
		return "", "", fmt.Errorf("extract metadata: %w", err)
	}
	if meta.ThumbnailURL == "" {
		return "", "", ErrNoThumbnail
	}

	data, err := r.download(ctx, meta.ThumbnailURL)
	if err != nil {
		return "", "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", "", err
	}

	name, err := r.Writer.WriteThumbnail(RemotePrefix, nowOr(r.Now), func(w io.Writer) error {
		return imaging.EncodeJPEG(w, imaging.Fit(img, r.Image.MaxWidth), r.Image.Quality)
	})
	if err != nil {
		return "", "", fmt.Errorf("store thumbnail: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = DefaultRemoteTitle
	}
	return name, title, nil
}

func (r *Remote) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build thumbnail request: %w", err)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download thumbnail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download thumbnail: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxThumbnailBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read thumbnail: %w", err)
	}
	if len(data) > maxThumbnailBytes {
		return nil, fmt.Errorf("thumbnail exceeds %d bytes", maxThumbnailBytes)
	}
	return data, nil
}
