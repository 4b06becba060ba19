// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed cache for the rendered gallery and
// calendar HTML. Both views are derived from the whole catalog, so any
// catalog write clears every cached page.
//
// Pages are stored under a generation number that every write bumps. A
// reader takes the generation before it queries the catalog, so a page
// rendered from data older than a write lands under a generation nobody
// reads any more.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "vidshelf:page:"

	// generationKey holds the current page generation. It sits outside
	// pageKeyPrefix so InvalidateAll's scan never deletes it.
	generationKey = "vidshelf:pagegen"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// Cache keys for the two catalog views.
const (
	GalleryKey  = "gallery"
	CalendarKey = "calendar"
)

// PageCache manages full-page HTML caching in Valkey. A nil *PageCache is
// valid and behaves as an always-empty cache.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// pageKey is the Valkey key of a page within a generation.
func pageKey(gen int64, key string) string {
	return pageKeyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}

// Generation returns the current page generation. The second result is
// false when the cache is disabled or unreachable, in which case the
// caller should neither read nor store pages.
func (pc *PageCache) Generation(ctx context.Context) (int64, bool) {
	if pc == nil {
		return 0, false
	}
	gen, err := pc.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		slog.Warn("page cache generation error", "error", err)
		return 0, false
	}
	return gen, true
}

// Get retrieves cached HTML for a page key in generation gen.
func (pc *PageCache) Get(ctx context.Context, gen int64, key string) ([]byte, bool) {
	if pc == nil {
		return nil, false
	}
	val, err := pc.client.Get(ctx, pageKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key, "generation", gen)
	return val, true
}

// Set stores rendered HTML for a page key in generation gen with the
// configured TTL.
func (pc *PageCache) Set(ctx context.Context, gen int64, key string, html []byte) {
	if pc == nil {
		return
	}
	if err := pc.client.Set(ctx, pageKey(gen, key), html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidateAll starts a new generation, then removes all cached pages by
// scanning for the prefix.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	if pc == nil {
		return
	}
	if err := pc.client.Incr(ctx, generationKey).Err(); err != nil {
		slog.Warn("page cache generation bump error", "error", err)
	}

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("page cache cleared", "deleted", deleted)
	}
}
