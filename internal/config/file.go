// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// knownKeys are the settings a YAML file may carry.
var knownKeys = []string{
	"APP_HOST", "APP_PORT", "APP_ENV", "LOG_LEVEL",
	"DATABASE_URL",
	"UPLOAD_DIR", "THUMBNAIL_DIR", "MAX_UPLOAD_BYTES",
	"YTDLP_PATH", "FFMPEG_PATH", "FFPROBE_PATH", "FETCH_TIMEOUT",
	"THUMBNAIL_MODE", "THUMBNAIL_WORKERS", "THUMBNAIL_MAX_WIDTH", "THUMBNAIL_QUALITY",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
	"RATE_LIMIT_PER_MINUTE",
}

// readFile parses a flat YAML mapping of settings into environment-style
// keys. Unknown keys are rejected so typos do not pass silently.
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToUpper(strings.TrimSpace(k))
		if !slices.Contains(knownKeys, key) {
			return nil, fmt.Errorf("config file %s: unknown setting %q", path, k)
		}
		values[key] = v
	}
	return values, nil
}
