package cache

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL is used when a response announces no freshness lifetime.
const DefaultTTL = 5 * time.Minute

// ResponseToEntry reads resp into an Entry and restores resp.Body so the
// caller can still consume it. fallback applies when the response has no
// usable Cache-Control max-age or Expires header.
func ResponseToEntry(resp *http.Response, fallback time.Duration) (*Entry, error) {
	if resp == nil {
		return nil, errors.New("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	now := time.Now()
	entry := &Entry{
		Body:       body,
		ETag:       resp.Header.Get("ETag"),
		StatusCode: resp.StatusCode,
		StoredAt:   now,
		Expires:    expiresAt(resp.Header, now, fallback),
	}

	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			entry.LastModified = t
		}
	}

	return entry, nil
}

// ExpiresAt computes when a response with the given headers stops being
// fresh. Cache-Control max-age wins over Expires; no-store and no-cache make
// the response immediately stale.
func ExpiresAt(h http.Header, fallback time.Duration) time.Time {
	return expiresAt(h, time.Now(), fallback)
}

func expiresAt(h http.Header, now time.Time, fallback time.Duration) time.Time {
	if cc := h.Get("Cache-Control"); cc != "" {
		for _, directive := range strings.Split(cc, ",") {
			directive = strings.TrimSpace(strings.ToLower(directive))
			switch {
			case directive == "no-store" || directive == "no-cache":
				return now
			case strings.HasPrefix(directive, "max-age="):
				secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
				if err == nil && secs >= 0 {
					return now.Add(time.Duration(secs) * time.Second)
				}
			}
		}
	}

	if exp := h.Get("Expires"); exp != "" {
		t, err := http.ParseTime(exp)
		if err != nil {
			return now.Add(fallback)
		}
		if t.Before(now) {
			return now
		}
		return t
	}

	return now.Add(fallback)
}

// AddConditionalHeaders sets If-None-Match, or If-Modified-Since when only a
// Last-Modified value is known.
func AddConditionalHeaders(req *http.Request, entry *Entry) {
	if req == nil || !entry.CanRevalidate() {
		return
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}

	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
		return
	}
	req.Header.Set("If-Modified-Since", entry.LastModified.UTC().Format(http.TimeFormat))
}
