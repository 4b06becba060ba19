// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging decodes still images (a remote thumbnail or an extracted
// video frame), downscales them and re-encodes them as JPEG thumbnails.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxPixels caps the decoded image area to avoid decompression bombs.
const MaxPixels = 100_000_000

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 85

// Options controls thumbnail output.
type Options struct {
	MaxWidth int // 0 keeps the source width
	Quality  int // JPEG quality 1-100; 0 uses DefaultQuality
}

// Decode reads a JPEG, PNG, GIF or WebP image from r. The header is checked
// against MaxPixels before the full decode.
func Decode(r io.ReadSeeker) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return nil, fmt.Errorf("imaging: decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("imaging: image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxPixels)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("imaging: seek: %w", err)
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	return img, nil
}

// Fit scales img down to maxWidth, preserving the aspect ratio. Images that
// are already narrow enough (or maxWidth <= 0) are returned unchanged.
func Fit(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return img
	}

	ratio := float64(maxWidth) / float64(bounds.Dx())
	newHeight := int(float64(bounds.Dy()) * ratio)
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// EncodeJPEG writes img to w as a JPEG. Transparent areas are flattened
// onto white since JPEG has no alpha channel.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	bounds := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)

	if err := jpeg.Encode(w, flat, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("imaging: encode jpeg: %w", err)
	}
	return nil
}
