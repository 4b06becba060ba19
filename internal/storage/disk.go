// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage keeps uploaded videos and generated thumbnails on the
// local filesystem. Files are referenced from database rows by bare name;
// the two directories are fixed when the Disk is created.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vidshelf/internal/filename"
)

// TimestampLayout is the YYYYMMDDHHMMSS stamp embedded in generated names.
const TimestampLayout = "20060102150405"

// maxCollisionSuffix bounds the "_N" suffixes tried when a generated name
// is already taken within the same second.
const maxCollisionSuffix = 1000

// maxNameBytes is the common filesystem limit for one path element.
const maxNameBytes = 255

// maxUploadStem is what is left for the sanitized original name after the
// timestamp, its separator and the longest collision suffix ("_1000").
const maxUploadStem = maxNameBytes - len(TimestampLayout) - 1 - len("_1000")

// ErrInvalidName is returned when a stored-file name is not a bare name.
var ErrInvalidName = errors.New("storage: invalid file name")

// Disk stores files in an upload directory and a thumbnail directory.
type Disk struct {
	uploadDir    string
	thumbnailDir string
}

// NewDisk creates both directories if needed and returns a Disk over them.
func NewDisk(uploadDir, thumbnailDir string) (*Disk, error) {
	for _, dir := range []string{uploadDir, thumbnailDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", dir, err)
		}
	}
	return &Disk{uploadDir: uploadDir, thumbnailDir: thumbnailDir}, nil
}

// UploadDir returns the upload directory.
func (d *Disk) UploadDir() string { return d.uploadDir }

// ThumbnailDir returns the thumbnail directory.
func (d *Disk) ThumbnailDir() string { return d.thumbnailDir }

// UploadPath returns the full path of a stored upload.
func (d *Disk) UploadPath(name string) string {
	return filepath.Join(d.uploadDir, name)
}

// ThumbnailPath returns the full path of a stored thumbnail.
func (d *Disk) ThumbnailPath(name string) string {
	return filepath.Join(d.thumbnailDir, name)
}

// SaveUpload copies src into the upload directory as
// "<YYYYMMDDHHMMSS>_<sanitized original name>" and returns the stored name.
// A partially written file is removed when the copy fails.
func (d *Disk) SaveUpload(original string, src io.Reader, now time.Time) (string, error) {
	safe := filename.Shorten(filename.Secure(original), maxUploadStem)
	if safe == "" {
		safe = "video"
	}
	base := now.Format(TimestampLayout) + "_" + safe

	f, name, err := createExclusive(d.uploadDir, base)
	if err != nil {
		return "", fmt.Errorf("storage: create upload: %w", err)
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(filepath.Join(d.uploadDir, name))
		return "", fmt.Errorf("storage: write upload %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(filepath.Join(d.uploadDir, name))
		return "", fmt.Errorf("storage: close upload %s: %w", name, err)
	}
	return name, nil
}

// WriteThumbnail creates "<prefix><YYYYMMDDHHMMSS>.jpg" in the thumbnail
// directory and hands it to encode. If encode fails the file is removed,
// so a failed acquisition never leaves a thumbnail behind.
func (d *Disk) WriteThumbnail(prefix string, now time.Time, encode func(w io.Writer) error) (string, error) {
	base := prefix + now.Format(TimestampLayout) + ".jpg"

	f, name, err := createExclusive(d.thumbnailDir, base)
	if err != nil {
		return "", fmt.Errorf("storage: create thumbnail: %w", err)
	}
	path := filepath.Join(d.thumbnailDir, name)

	if err := encode(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("storage: close thumbnail %s: %w", name, err)
	}
	return name, nil
}

// RemoveUpload deletes a stored upload. A missing file is not an error.
func (d *Disk) RemoveUpload(name string) error {
	return removeBare(d.uploadDir, name)
}

// RemoveThumbnail deletes a stored thumbnail. A missing file is not an error.
func (d *Disk) RemoveThumbnail(name string) error {
	return removeBare(d.thumbnailDir, name)
}

// ServeUpload writes a stored upload to the response (404 if absent).
func (d *Disk) ServeUpload(w http.ResponseWriter, r *http.Request, name string) {
	serveBare(w, r, d.uploadDir, name)
}

// ServeThumbnail writes a stored thumbnail to the response (404 if absent).
func (d *Disk) ServeThumbnail(w http.ResponseWriter, r *http.Request, name string) {
	serveBare(w, r, d.thumbnailDir, name)
}

// createExclusive creates base in dir, appending "_1", "_2", ... before the
// extension until an unused name is found.
func createExclusive(dir, base string) (*os.File, string, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	name := base
	for i := 1; ; i++ {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
		if i > maxCollisionSuffix {
			return nil, "", fmt.Errorf("no free name for %s", base)
		}
		name = stem + "_" + strconv.Itoa(i) + ext
	}
}

func removeBare(dir, name string) error {
	if !filename.IsBare(name) {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", name, err)
	}
	return nil
}

func serveBare(w http.ResponseWriter, r *http.Request, dir, name string) {
	if !filename.IsBare(name) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("stat stored file failed", "path", path, "error", err)
		}
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}
