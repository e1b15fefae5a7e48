// Package cache provides a Redis-backed response cache for artworks pages.
//
// Entries are keyed by request path and query so that the same page index and
// page size always map to the same key. An entry lives until the freshness
// lifetime announced by the response (Cache-Control max-age, then Expires) or,
// when the response carries neither, a caller-supplied fallback TTL.
//
// # Basic Usage
//
//	manager := cache.NewManager(redis.NewClient(&redis.Options{Addr: "localhost:6379"}))
//
//	key := cache.Key{
//		Path:  "/artworks",
//		Query: url.Values{"page": {"1"}, "limit": {"5"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API, then:
//		entry, _ = cache.ResponseToEntry(resp, cache.DefaultTTL)
//		_ = manager.Set(ctx, key, entry)
//	}
//
// Expired entries are never returned. When an entry carries an ETag or
// Last-Modified value, AddConditionalHeaders lets the caller revalidate it
// with a conditional request; a 304 answer refreshes the TTL via UpdateTTL.
//
// # Metrics
//
//   - artic_cache_hits_total
//   - artic_cache_misses_total
//   - artic_cache_stored_bytes
//   - artic_cache_not_modified_total
//   - artic_cache_errors_total{operation}
package cache
