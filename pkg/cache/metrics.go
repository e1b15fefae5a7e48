package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts pages served from Redis.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artic_cache_hits_total",
		Help: "Total number of artworks page cache hits",
	})

	// CacheMisses counts lookups that found nothing usable.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artic_cache_misses_total",
		Help: "Total number of artworks page cache misses",
	})

	// StoredBytes sums the size of entries written.
	StoredBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artic_cache_stored_bytes",
		Help: "Total bytes written to the artworks page cache",
	})

	// NotModified counts 304 revalidations.
	NotModified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artic_cache_not_modified_total",
		Help: "Total number of 304 Not Modified revalidations",
	})

	// CacheErrors counts failed cache operations by operation.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_cache_errors_total",
		Help: "Total number of cache operation errors",
	}, []string{"operation"}) // "get", "set", "delete"
)
