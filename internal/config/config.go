// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration. Values come from the
// process environment, then an optional .env file, then an optional YAML
// file, then built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Thumbnail modes.
const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	LogLevel string // "debug", "info", "warn", "error"

	// Database: a postgres:// URL or a SQLite file path.
	DatabaseURL string

	// File storage
	UploadDir      string
	ThumbnailDir   string
	MaxUploadBytes int64

	// External tools
	YtDlpPath    string
	FFmpegPath   string
	FFprobePath  string
	FetchTimeout time.Duration // 0 disables the limit

	// Thumbnails
	ThumbnailMode     string // ModeSync or ModeAsync
	ThumbnailWorkers  int
	ThumbnailMaxWidth int // 0 keeps the source width
	ThumbnailQuality  int

	// Valkey (Redis-compatible page cache); disabled when ValkeyHost is empty.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Ingest endpoints per client IP per minute; 0 disables limiting.
	RateLimitPerMinute int
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with a YAML file layered under the environment. The
// file uses the environment key names in lower case (app_port, ...). An
// empty path skips the file.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	src := source{}
	if path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		src.file = file
	}

	cfg := &Config{
		Host:     src.str("APP_HOST", "0.0.0.0"),
		Port:     src.str("APP_PORT", "8080"),
		Env:      src.str("APP_ENV", "development"),
		LogLevel: strings.ToLower(src.str("LOG_LEVEL", "info")),

		DatabaseURL: src.str("DATABASE_URL", "database.db"),

		UploadDir:      src.str("UPLOAD_DIR", "uploads"),
		ThumbnailDir:   src.str("THUMBNAIL_DIR", "thumbnails"),
		MaxUploadBytes: src.integer64("MAX_UPLOAD_BYTES", 500<<20),

		YtDlpPath:    src.str("YTDLP_PATH", "yt-dlp"),
		FFmpegPath:   src.str("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:  src.str("FFPROBE_PATH", "ffprobe"),
		FetchTimeout: src.duration("FETCH_TIMEOUT", 60*time.Second),

		ThumbnailMode:     strings.ToLower(src.str("THUMBNAIL_MODE", ModeSync)),
		ThumbnailWorkers:  src.integer("THUMBNAIL_WORKERS", 2),
		ThumbnailMaxWidth: src.integer("THUMBNAIL_MAX_WIDTH", 640),
		ThumbnailQuality:  src.integer("THUMBNAIL_QUALITY", 85),

		ValkeyHost:     src.str("VALKEY_HOST", ""),
		ValkeyPort:     src.str("VALKEY_PORT", "6379"),
		ValkeyPassword: src.str("VALKEY_PASSWORD", ""),

		RateLimitPerMinute: src.integer("RATE_LIMIT_PER_MINUTE", 30),
	}

	if err := errors.Join(append(src.errs, cfg.validate()...)...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL: unknown level %q", c.LogLevel))
	}
	if c.ThumbnailMode != ModeSync && c.ThumbnailMode != ModeAsync {
		errs = append(errs, fmt.Errorf("THUMBNAIL_MODE: must be %q or %q, got %q", ModeSync, ModeAsync, c.ThumbnailMode))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES: must be positive"))
	}
	if c.FetchTimeout < 0 {
		errs = append(errs, errors.New("FETCH_TIMEOUT: must not be negative"))
	}
	if c.ThumbnailWorkers < 1 {
		errs = append(errs, errors.New("THUMBNAIL_WORKERS: must be at least 1"))
	}
	if c.ThumbnailMaxWidth < 0 {
		errs = append(errs, errors.New("THUMBNAIL_MAX_WIDTH: must not be negative"))
	}
	if c.ThumbnailQuality < 1 || c.ThumbnailQuality > 100 {
		errs = append(errs, errors.New("THUMBNAIL_QUALITY: must be between 1 and 100"))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE: must not be negative"))
	}
	if c.UploadDir == "" || c.ThumbnailDir == "" {
		errs = append(errs, errors.New("UPLOAD_DIR and THUMBNAIL_DIR must be set"))
	}
	return errs
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Async reports whether thumbnails are acquired in the background.
func (c *Config) Async() bool {
	return c.ThumbnailMode == ModeAsync
}

// CacheEnabled reports whether a Valkey page cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyHost != ""
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// source resolves a key from the environment, then the YAML file values,
// then the fallback. Parse failures are collected rather than returned
// one at a time.
type source struct {
	file map[string]string
	errs []error
}

// str reads a value, returning fallback if unset or empty.
func (s *source) str(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v := s.file[key]; v != "" {
		return v
	}
	return fallback
}

func (s *source) integer(key string, fallback int) int {
	v := s.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return fallback
	}
	return n
}

func (s *source) integer64(key string, fallback int64) int64 {
	v := s.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return fallback
	}
	return n
}

// duration accepts Go durations ("90s", "2m") or a bare number of seconds.
func (s *source) duration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(s.str(key, ""))
	if v == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return fallback
	}
	return d
}
