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
	"strconv"
	"strings"
)

// FrameSource reads frames out of a video file.
type FrameSource interface {
	// FrameRate returns frames per second, or 0 when unknown.
	FrameRate(ctx context.Context, path string) (float64, error)
	// FrameAt returns the encoded image of the zero-based frame index.
	FrameAt(ctx context.Context, path string, index int) ([]byte, error)
}

// FFmpeg reads frames with the ffprobe and ffmpeg executables.
type FFmpeg struct {
	FFmpegPath  string // "ffmpeg" when empty
	FFprobePath string // "ffprobe" when empty
}

type probeOutput struct {
	Streams []struct {
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
}

// FrameRate probes the first video stream.
func (f FFmpeg) FrameRate(ctx context.Context, path string) (float64, error) {
	bin := f.FFprobePath
	if bin == "" {
		bin = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=avg_frame_rate,r_frame_rate",
		"-of", "json",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("run ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return 0, nil
	}
	s := probe.Streams[0]
	if fps := parseRate(s.AvgFrameRate); fps > 0 {
		return fps, nil
	}
	return parseRate(s.RFrameRate), nil
}

// FrameAt decodes exactly one frame and returns it as PNG.
func (f FFmpeg) FrameAt(ctx context.Context, path string, index int) ([]byte, error) {
	bin := f.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-i", path,
		"-vf", fmt.Sprintf(`select=eq(n\,%d)`, index),
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, ErrNoFrame
	}
	return stdout.Bytes(), nil
}

// parseRate parses ffprobe rates such as "30000/1001" or "25". Anything
// unparseable, including "0/0", yields 0.
func parseRate(s string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
