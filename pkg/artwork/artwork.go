// Package artwork defines the artwork record consumed from the Art Institute
// of Chicago collection API and the page envelope it arrives in.
package artwork

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Fields lists the record fields requested from and decoded out of the API.
// Everything else in a response item is ignored.
var Fields = []string{
	"title",
	"place_of_origin",
	"artist_display",
	"inscriptions",
	"date_start",
	"date_end",
}

// ErrMissingData is returned when a response has no data array.
var ErrMissingData = errors.New("response has no data array")

// Record is one artwork row. Values are treated as immutable once decoded.
type Record struct {
	Title         string `json:"title"`
	PlaceOfOrigin string `json:"place_of_origin"`
	ArtistDisplay string `json:"artist_display"`
	Inscriptions  string `json:"inscriptions"`
	DateStart     *int   `json:"date_start"`
	DateEnd       *int   `json:"date_end"`
}

// Year returns a date field value. Dates are pointers so a missing date
// (JSON null) stays distinct from year 0.
func Year(y int) *int {
	return &y
}

// FormatYear renders a date field, with "-" for a missing date.
func FormatYear(y *int) string {
	if y == nil {
		return "-"
	}
	return strconv.Itoa(*y)
}

// Key returns the identity used to deduplicate selections.
//
// The API does not guarantee unique titles, so two distinct artworks with the
// same title collide. Callers needing a stronger identity can supply their own
// key function to the selection set.
func (r Record) Key() string {
	return r.Title
}

// Page is one page of records as returned by the source.
type Page struct {
	// Index is the 0-based page index the page was requested for.
	Index int

	// Limit is the page size the page was requested with.
	Limit int

	// Records are the page rows in source order.
	Records []Record

	// Total is the total record count reported by the source.
	Total int
}

// envelope mirrors the response shape:
// {"data": [...], "pagination": {"total": N, ...}}
type envelope struct {
	Data       *[]Record `json:"data"`
	Pagination struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

// DecodePage parses a response body into a Page for the given index and limit.
// JSON nulls decode to empty strings and nil dates.
func DecodePage(body []byte, index, limit int) (*Page, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode artworks page: %w", err)
	}
	if env.Data == nil {
		return nil, ErrMissingData
	}

	return &Page{
		Index:   index,
		Limit:   limit,
		Records: *env.Data,
		Total:   env.Pagination.Total,
	}, nil
}

// PageCount returns the number of pages needed to show total records at size
// rows per page.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
