// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package thumbnail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// Metadata is the subset of video metadata the catalog needs.
type Metadata struct {
	Title        string
	ThumbnailURL string
}

// Extractor fetches metadata for a remote video URL.
type Extractor interface {
	Extract(ctx context.Context, url string) (*Metadata, error)
}

// YtDlp extracts metadata by running the yt-dlp executable.
type YtDlp struct {
	Path string // executable, "yt-dlp" when empty
}

type ytdlpInfo struct {
	Title      string `json:"title"`
	Thumbnail  string `json:"thumbnail"`
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

// Extract runs yt-dlp without downloading the media and parses its JSON.
func (y YtDlp) Extract(ctx context.Context, url string) (*Metadata, error) {
	path := y.Path
	if path == "" {
		path = "yt-dlp"
	}

	cmd := exec.CommandContext(ctx, path,
		"--dump-single-json",
		"--skip-download",
		"--flat-playlist",
		"--no-playlist",
		"--no-warnings",
		"--",
		url,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("run yt-dlp: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseYtDlp(out)
}

func parseYtDlp(out []byte) (*Metadata, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}

	meta := &Metadata{Title: strings.TrimSpace(info.Title), ThumbnailURL: info.Thumbnail}
	if meta.ThumbnailURL == "" {
		// yt-dlp orders thumbnails by preference, best last.
		for i := len(info.Thumbnails) - 1; i >= 0; i-- {
			if info.Thumbnails[i].URL != "" {
				meta.ThumbnailURL = info.Thumbnails[i].URL
				break
			}
		}
	}
	return meta, nil
}
