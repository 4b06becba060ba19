// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package filename turns user-supplied upload names into names that are
// safe to store on disk and to serve back by URL.
package filename

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// unsafeChars matches anything outside the portable filename set.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Secure returns an ASCII-only version of name that cannot escape its
// directory. Accents are folded (NFKD), other non-ASCII is dropped, path
// separators become spaces, whitespace runs become "_", and leading or
// trailing dots and underscores are trimmed. The result may be empty.
//
// Example: "../My Clip (final).mp4" → "My_Clip_final.mp4"
func Secure(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	result := b.String()

	result = strings.ReplaceAll(result, "/", " ")
	result = strings.ReplaceAll(result, `\`, " ")
	result = strings.Join(strings.Fields(result), "_")
	result = unsafeChars.ReplaceAllString(result, "")
	return strings.Trim(result, "._")
}

// Shorten cuts name to at most max bytes, keeping its extension when the
// extension itself fits. The stem loses bytes from the end and is trimmed
// of trailing dots and underscores. Names from Secure are ASCII, so a byte
// cut never splits a character.
func Shorten(name string, max int) string {
	if len(name) <= max {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if len(ext) >= max {
		stem, ext = name, ""
	}
	stem = strings.TrimRight(stem[:max-len(ext)], "._")
	return stem + ext
}

// Ext returns the lowercase extension of name without the dot, or "" if
// the name has none.
func Ext(name string) string {
	if !strings.Contains(name, ".") {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// IsBare reports whether name is a single path element that is safe to
// join onto a directory: non-empty, no separators, not "." or "..".
func IsBare(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
