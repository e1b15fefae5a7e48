package cache

import (
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key this package writes.
const KeyPrefix = "artic"

// Key identifies a cached response.
type Key struct {
	// Path is the request path relative to the API base (e.g. "/artworks").
	Path string

	// Query holds the request query parameters.
	Query url.Values
}

// String renders a deterministic key.
//
//	artic:artworks:limit=5:page=3
func (k Key) String() string {
	parts := []string{KeyPrefix}

	if p := strings.Trim(k.Path, "/"); p != "" {
		parts = append(parts, p)
	}

	names := make([]string, 0, len(k.Query))
	for name := range k.Query {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		parts = append(parts, name+"="+strings.Join(k.Query[name], ","))
	}

	return strings.Join(parts, ":")
}
