// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, pageKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	client, err := ConnectValkey(envOr("VALKEY_HOST", "localhost"), envOr("VALKEY_PORT", "6379"), os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	if pong, err := client.Ping(context.Background()).Result(); err != nil || pong != "PONG" {
		t.Errorf("Ping: got %q, %v", pong, err)
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	if _, err := ConnectValkey("127.0.0.1", "1", ""); err == nil {
		t.Error("expected error for unreachable Valkey")
	}
}

func TestPageKey(t *testing.T) {
	if got := pageKey(3, GalleryKey); got != "vidshelf:page:3:gallery" {
		t.Errorf("pageKey: got %q", got)
	}
	if strings.HasPrefix(generationKey, pageKeyPrefix) {
		t.Errorf("generation key %q would be removed by InvalidateAll", generationKey)
	}
}

func TestPageCacheSetGetInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, time.Minute)
	ctx := context.Background()

	gen, ok := pc.Generation(ctx)
	if !ok {
		t.Fatal("Generation should succeed on a reachable cache")
	}
	if _, ok := pc.Get(ctx, gen, GalleryKey); ok {
		t.Fatal("expected miss on empty cache")
	}

	pc.Set(ctx, gen, GalleryKey, []byte("<h1>gallery</h1>"))
	pc.Set(ctx, gen, CalendarKey, []byte("<h1>calendar</h1>"))

	got, ok := pc.Get(ctx, gen, GalleryKey)
	if !ok || string(got) != "<h1>gallery</h1>" {
		t.Fatalf("Get gallery: got %q, %v", got, ok)
	}

	pc.InvalidateAll(ctx)
	next, _ := pc.Generation(ctx)
	if next <= gen {
		t.Errorf("generation after InvalidateAll: got %d, want > %d", next, gen)
	}
	for _, key := range []string{GalleryKey, CalendarKey} {
		if _, ok := pc.Get(ctx, next, key); ok {
			t.Errorf("%s should be gone after InvalidateAll", key)
		}
		if _, ok := pc.Get(ctx, gen, key); ok {
			t.Errorf("%s should be deleted from the old generation", key)
		}
	}
}

func TestPageCacheLateSetAfterInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, time.Minute)
	ctx := context.Background()

	// A reader takes the generation and queries the catalog; a write lands
	// and invalidates before the reader stores its now stale page.
	gen, _ := pc.Generation(ctx)
	pc.InvalidateAll(ctx)
	pc.Set(ctx, gen, GalleryKey, []byte("stale"))

	current, ok := pc.Generation(ctx)
	if !ok {
		t.Fatal("Generation failed")
	}
	if html, ok := pc.Get(ctx, current, GalleryKey); ok {
		t.Errorf("stale page visible after invalidation: %q", html)
	}
}

func TestPageCacheTTL(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, 2*time.Second)
	ctx := context.Background()

	pc.Set(ctx, 7, CalendarKey, []byte("x"))
	ttl, err := client.TTL(ctx, pageKey(7, CalendarKey)).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > 2*time.Second {
		t.Errorf("ttl: got %v, want (0, 2s]", ttl)
	}
}

func TestNilPageCache(t *testing.T) {
	var pc *PageCache
	ctx := context.Background()

	if _, ok := pc.Generation(ctx); ok {
		t.Error("nil cache should report no generation")
	}
	pc.Set(ctx, 0, GalleryKey, []byte("x"))
	if _, ok := pc.Get(ctx, 0, GalleryKey); ok {
		t.Error("nil cache should always miss")
	}
	pc.InvalidateAll(ctx)
}

func TestNewPageCacheDefaultTTL(t *testing.T) {
	pc := NewPageCache(nil, 0)
	if pc.ttl != DefaultPageTTL {
		t.Errorf("ttl: got %v, want %v", pc.ttl, DefaultPageTTL)
	}
}
