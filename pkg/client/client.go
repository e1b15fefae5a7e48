// Package client fetches pages of artworks from the Art Institute of Chicago
// public API, optionally through a Redis response cache.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/artic-table/pkg/artwork"
	"github.com/Sternrassler/artic-table/pkg/cache"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.artic.edu/api/v1"

const artworksPath = "/artworks"

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_requests_total",
		Help: "Total artworks page requests by outcome status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "artic_request_duration_seconds",
		Help:    "Artworks page fetch duration in seconds by source",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"source"}) // "cache", "network"

	fetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_fetch_errors_total",
		Help: "Total failed artworks page fetches by error class",
	}, []string{"class"})
)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, without trailing slash.
	BaseURL string

	// UserAgent identifies the application. The API asks clients to send it
	// as AIC-User-Agent as well.
	UserAgent string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// Redis enables the response cache when non-nil.
	Redis *redis.Client

	// CacheTTL applies to responses without freshness headers.
	CacheTTL time.Duration

	// HTTPClient overrides the default transport (tests).
	HTTPClient *http.Client
}

// DefaultConfig returns a configuration for the public API without caching.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		CacheTTL:  cache.DefaultTTL,
	}
}

// Client fetches artworks pages.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	cache      *cache.Manager
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// New creates a client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if cfg.UserAgent == "" {
		return nil, errors.New("user-agent is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		cacheTTL:   cfg.CacheTTL,
		logger:     log.With().Str("component", "artic-client").Logger(),
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = cache.DefaultTTL
	}
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

// PageQuery builds the query for a 0-based page index. The API numbers
// pages from 1.
func PageQuery(index, size int) url.Values {
	return url.Values{
		"page":   {strconv.Itoa(index + 1)},
		"limit":  {strconv.Itoa(size)},
		"fields": {strings.Join(artwork.Fields, ",")},
	}
}

// PageKey returns the cache key a page response is stored under.
func PageKey(index, size int) cache.Key {
	return cache.Key{Path: artworksPath, Query: PageQuery(index, size)}
}

// FetchPage fetches the page at 0-based index with size rows.
func (c *Client) FetchPage(ctx context.Context, index, size int) (*artwork.Page, error) {
	if index < 0 || size <= 0 {
		return nil, fmt.Errorf("%w: index=%d size=%d", ErrInvalidPageRequest, index, size)
	}

	start := time.Now()
	query := PageQuery(index, size)

	body, source, err := c.get(ctx, index, query)
	requestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			fetchErrorsTotal.WithLabelValues(string(fe.Class)).Inc()
		}
		return nil, err
	}

	page, err := artwork.DecodePage(body, index, size)
	if err != nil {
		fetchErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		requestsTotal.WithLabelValues("decode_error").Inc()
		if c.cache != nil {
			if derr := c.cache.Delete(ctx, PageKey(index, size)); derr != nil {
				c.logger.Warn().Err(derr).Msg("Failed to drop undecodable cache entry")
			}
		}
		return nil, &FetchError{Page: index, Class: ErrorClassDecode, Err: err}
	}

	c.logger.Debug().
		Int("page", index).
		Int("limit", size).
		Int("rows", len(page.Records)).
		Int("total", page.Total).
		Str("source", source).
		Msg("Fetched artworks page")

	return page, nil
}

// get returns the response body for the query and where it came from.
func (c *Client) get(ctx context.Context, index int, query url.Values) ([]byte, string, error) {
	key := cache.Key{Path: artworksPath, Query: query}

	var stale *cache.Entry
	if c.cache != nil {
		entry, err := c.cache.GetStale(ctx, key)
		switch {
		case err == nil && !entry.IsExpired():
			cache.CacheHits.Inc()
			requestsTotal.WithLabelValues("cache").Inc()
			c.logger.Debug().Str("key", key.String()).Msg("Cache hit")
			return entry.Body, "cache", nil
		case err == nil:
			stale = entry
			cache.CacheMisses.Inc()
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache get error")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+artworksPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, "network", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("AIC-User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if stale != nil {
		cache.AddConditionalHeaders(req, stale)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues("network_error").Inc()
		return nil, "network", &FetchError{Page: index, Class: ErrorClassNetwork, Err: err}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotModified && stale != nil {
		cache.NotModified.Inc()
		if err := c.cache.UpdateTTL(ctx, key, cache.ExpiresAt(resp.Header, c.cacheTTL)); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache TTL")
		}
		c.logger.Debug().Str("key", key.String()).Msg("304 Not Modified - using cache")
		return stale.Body, "network", nil
	}

	if class := classifyStatus(resp.StatusCode); class != "" || resp.StatusCode != http.StatusOK {
		if class == "" {
			class = ErrorClassServer
		}
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "network", &FetchError{
			Page:       index,
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    strings.TrimSpace(string(snippet)),
		}
	}

	if c.cache == nil {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "network", &FetchError{Page: index, Class: ErrorClassNetwork, Err: err}
		}
		return body, "network", nil
	}

	entry, err := cache.ResponseToEntry(resp, c.cacheTTL)
	if err != nil {
		return nil, "network", &FetchError{Page: index, Class: ErrorClassNetwork, Err: err}
	}
	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache response")
	}

	return entry.Body, "network", nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Cache returns the cache manager, or nil when caching is disabled.
func (c *Client) Cache() *cache.Manager {
	return c.cache
}
