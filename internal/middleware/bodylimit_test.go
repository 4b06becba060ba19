// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMaxBodySize(t *testing.T) {
	var readErr error
	handler := MaxBodySize(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		if readErr != nil {
			http.Error(w, "too big", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("small body passes", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/upload_video", strings.NewReader("tiny")))
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})

	t.Run("declared length over limit is rejected before the handler", func(t *testing.T) {
		readErr = nil
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/upload_video", strings.NewReader("this body is too long"))
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status: got %d, want 413", rr.Code)
		}
		if readErr != nil {
			t.Error("handler should not have run")
		}
	})

	t.Run("unknown length is capped while reading", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/upload_video", strings.NewReader("this body is too long"))
		req.ContentLength = -1
		handler.ServeHTTP(rr, req)
		if readErr == nil {
			t.Error("reading past the limit should fail")
		}
		if rr.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status: got %d, want 413", rr.Code)
		}
	})
}

func TestMaxBodySizeDisabled(t *testing.T) {
	handler := MaxBodySize(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 1000))))
	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rr.Code)
	}
}
