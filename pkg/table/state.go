// Package table holds the state behind the paginated artworks table: the
// pagination cursor, the rows of the displayed page, and the cross-page
// selection, together with the operations that change them.
package table

import (
	"github.com/Sternrassler/artic-table/pkg/artwork"
)

// PageState is the pagination cursor. Offset always equals
// PageIndex*PageSize.
type PageState struct {
	Offset    int
	PageSize  int
	PageIndex int
	PageCount int
}

// NewPageState returns the cursor for index and size given the total record
// count reported by the source.
func NewPageState(index, size, total int) PageState {
	return PageState{
		Offset:    index * size,
		PageSize:  size,
		PageIndex: index,
		PageCount: artwork.PageCount(total, size),
	}
}

// Snapshot is what the presentation layer reads: a consistent copy of the
// controller state at one instant.
type Snapshot struct {
	Rows     []artwork.Record
	Total    int
	Loading  bool
	Loaded   bool
	Page     PageState
	Selected []artwork.Record

	selected map[string]struct{}
	key      func(artwork.Record) string
}

// IsSelected reports whether r is part of the selection.
func (s Snapshot) IsSelected(r artwork.Record) bool {
	if s.key == nil {
		return false
	}
	_, ok := s.selected[s.key(r)]
	return ok
}
