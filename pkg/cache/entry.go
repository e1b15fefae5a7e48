package cache

import (
	"time"
)

// Entry is a cached response body plus the validators needed to revalidate it.
type Entry struct {
	// Body is the raw response body.
	Body []byte `json:"body"`

	// ETag for If-None-Match revalidation.
	ETag string `json:"etag,omitempty"`

	// LastModified for If-Modified-Since revalidation.
	LastModified time.Time `json:"last_modified,omitempty"`

	// Expires is when the entry stops being served.
	Expires time.Time `json:"expires"`

	StatusCode int       `json:"status_code"`
	StoredAt   time.Time `json:"stored_at"`
}

// IsExpired reports whether the entry is past its expiry.
func (e *Entry) IsExpired() bool {
	return !time.Now().Before(e.Expires)
}

// TTL returns the time until expiry, or 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// CanRevalidate reports whether the entry carries a validator usable in a
// conditional request.
func (e *Entry) CanRevalidate() bool {
	return e != nil && (e.ETag != "" || !e.LastModified.IsZero())
}
