// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"vidshelf/internal/models"
)

// Limits for free-text form fields. Longer values are treated as missing.
const (
	maxURLLen   = models.MaxRemoteURLLength
	maxFieldLen = 1000
)

// parseID reads a positive integer id. Anything else yields 0, which the
// catalog treats as a missing reference.
func parseID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// formText returns a trimmed form value, or "" when it exceeds max runes.
func formText(r *http.Request, key string, max int) string {
	v := strings.TrimSpace(r.FormValue(key))
	if utf8.RuneCountInString(v) > max {
		return ""
	}
	return v
}

// taskID returns the ?task= query value when it is a well-formed task id.
func taskID(r *http.Request) string {
	raw := r.URL.Query().Get("task")
	if raw == "" {
		return ""
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return ""
	}
	return id.String()
}

// backTo returns the local path of the Referer when it points at this
// host, and "/" otherwise.
func backTo(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return "/"
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
