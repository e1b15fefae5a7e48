// Package testutil provides an in-process stand-in for the artworks API.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/artic-table/pkg/artwork"
)

// MockArtic serves GET /artworks?page=P&limit=L from a fixed record list.
// Page numbers are 1-based as on the real API.
type MockArtic struct {
	server *httptest.Server

	mu          sync.RWMutex
	records     []artwork.Record
	failPages   map[int]int
	malformed   map[int]bool
	delays      map[int]time.Duration
	headers     map[string]string
	etag        string
	requests    []Request
	conditional int
}

// Request records one call made to the mock.
type Request struct {
	Page      int
	Limit     int
	Fields    string
	UserAgent string
	AICAgent  string
}

// NewMockArtic starts a mock serving records.
func NewMockArtic(records []artwork.Record) *MockArtic {
	m := &MockArtic{
		records:   records,
		failPages: make(map[int]int),
		malformed: make(map[int]bool),
		delays:    make(map[int]time.Duration),
		headers:   make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/artworks", m.handleArtworks)
	m.server = httptest.NewServer(mux)

	return m
}

// URL returns the base URL to configure a client with.
func (m *MockArtic) URL() string {
	return m.server.URL
}

// Close shuts down the server.
func (m *MockArtic) Close() {
	m.server.Close()
}

// FailPage makes the given 1-based page answer with status.
func (m *MockArtic) FailPage(page, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPages[page] = status
}

// MalformPage makes the given 1-based page answer with a non-JSON body.
func (m *MockArtic) MalformPage(page int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.malformed[page] = true
}

// DelayPage holds the response for the given 1-based page.
func (m *MockArtic) DelayPage(page int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[page] = d
}

// SetHeader adds a header to every successful response.
func (m *MockArtic) SetHeader(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headers[key] = value
}

// SetETag enables ETag validation: requests carrying a matching
// If-None-Match get 304.
func (m *MockArtic) SetETag(etag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.etag = etag
}

// SetRecords replaces the served records.
func (m *MockArtic) SetRecords(records []artwork.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
}

// Requests returns a copy of every request received, in arrival order.
func (m *MockArtic) Requests() []Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestedPages returns the 1-based page numbers requested, in arrival order.
func (m *MockArtic) RequestedPages() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pages := make([]int, len(m.requests))
	for i, r := range m.requests {
		pages[i] = r.Page
	}
	return pages
}

// RequestCount returns the number of requests received.
func (m *MockArtic) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// ConditionalCount returns how many requests carried If-None-Match.
func (m *MockArtic) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditional
}

// Reset clears request tracking.
func (m *MockArtic) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.conditional = 0
}

func (m *MockArtic) handleArtworks(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 12
	}

	m.mu.Lock()
	m.requests = append(m.requests, Request{
		Page:      page,
		Limit:     limit,
		Fields:    r.URL.Query().Get("fields"),
		UserAgent: r.Header.Get("User-Agent"),
		AICAgent:  r.Header.Get("AIC-User-Agent"),
	})
	inm := r.Header.Get("If-None-Match")
	if inm != "" {
		m.conditional++
	}
	status, fail := m.failPages[page]
	malformed := m.malformed[page]
	delay := m.delays[page]
	etag := m.etag
	headers := make(map[string]string, len(m.headers))
	for k, v := range m.headers {
		headers[k] = v
	}
	records := m.records
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if fail {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"status": %d, "error": "mock failure"}`, status)
		return
	}

	if malformed {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>maintenance</html>"))
		return
	}

	for k, v := range headers {
		w.Header().Set(k, v)
	}

	if etag != "" {
		w.Header().Set("ETag", etag)
		if inm == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	start := (page - 1) * limit
	end := start + limit
	if start > len(records) {
		start = len(records)
	}
	if end > len(records) {
		end = len(records)
	}

	body := map[string]any{
		"pagination": map[string]any{
			"total":        len(records),
			"limit":        limit,
			"offset":       (page - 1) * limit,
			"total_pages":  artwork.PageCount(len(records), limit),
			"current_page": page,
		},
		"data": pageItems(records[start:end], start),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}

// pageItems renders records the way the API does, including fields the
// client is expected to ignore.
func pageItems(records []artwork.Record, offset int) []map[string]any {
	items := make([]map[string]any, len(records))
	for i, r := range records {
		items[i] = map[string]any{
			"id":              offset + i + 1,
			"api_link":        fmt.Sprintf("https://api.artic.edu/api/v1/artworks/%d", offset+i+1),
			"title":           r.Title,
			"place_of_origin": r.PlaceOfOrigin,
			"artist_display":  r.ArtistDisplay,
			"inscriptions":    nullable(r.Inscriptions),
			"date_start":      r.DateStart,
			"date_end":        r.DateEnd,
		}
	}
	return items
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Artworks builds n distinct records titled "Artwork 1" .. "Artwork n".
func Artworks(n int) []artwork.Record {
	records := make([]artwork.Record, n)
	for i := range records {
		records[i] = artwork.Record{
			Title:         fmt.Sprintf("Artwork %d", i+1),
			PlaceOfOrigin: "Chicago",
			ArtistDisplay: fmt.Sprintf("Artist %d", i+1),
			DateStart:     artwork.Year(1900 + i),
			DateEnd:       artwork.Year(1901 + i),
		}
	}
	return records
}
