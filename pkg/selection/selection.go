// Package selection holds the ordered, deduplicated set of selected records.
package selection

import (
	"github.com/Sternrassler/artic-table/pkg/artwork"
)

// KeyFunc derives the identity used for deduplication.
type KeyFunc func(artwork.Record) string

// TitleKey identifies records by title. Distinct artworks sharing a title
// collide, so the later one is treated as already selected.
func TitleKey(r artwork.Record) string {
	return r.Key()
}

// Set is an insertion-ordered set of records with no two sharing a key.
// It is not safe for concurrent use; callers serialize access.
type Set struct {
	key     KeyFunc
	records []artwork.Record
	index   map[string]int
}

// New returns an empty set keyed by key, or by title when key is nil.
func New(key KeyFunc) *Set {
	if key == nil {
		key = TitleKey
	}
	return &Set{
		key:   key,
		index: make(map[string]int),
	}
}

// Len returns the number of selected records.
func (s *Set) Len() int {
	return len(s.records)
}

// Contains reports whether a record with r's key is selected.
func (s *Set) Contains(r artwork.Record) bool {
	_, ok := s.index[s.key(r)]
	return ok
}

// Add appends r unless its key is present. It reports whether r was added.
func (s *Set) Add(r artwork.Record) bool {
	k := s.key(r)
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.records)
	s.records = append(s.records, r)
	return true
}

// Remove drops the record with r's key. It reports whether one was removed.
func (s *Set) Remove(r artwork.Record) bool {
	k := s.key(r)
	pos, ok := s.index[k]
	if !ok {
		return false
	}

	s.records = append(s.records[:pos], s.records[pos+1:]...)
	delete(s.index, k)
	for i := pos; i < len(s.records); i++ {
		s.index[s.key(s.records[i])] = i
	}
	return true
}

// Toggle removes r if selected, otherwise adds it. It returns the new state.
func (s *Set) Toggle(r artwork.Record) bool {
	if s.Remove(r) {
		return false
	}
	s.Add(r)
	return true
}

// Merge appends records whose keys are not yet present, in order, stopping
// once the set holds limit records. It returns how many were added. A
// non-positive limit adds nothing.
func (s *Set) Merge(records []artwork.Record, limit int) int {
	added := 0
	for _, r := range records {
		if s.Len() >= limit {
			break
		}
		if s.Add(r) {
			added++
		}
	}
	return added
}

// Replace resets the set to records, dropping later duplicates.
func (s *Set) Replace(records []artwork.Record) {
	s.Clear()
	for _, r := range records {
		s.Add(r)
	}
}

// Clear empties the set.
func (s *Set) Clear() {
	s.records = nil
	s.index = make(map[string]int)
}

// Records returns a copy of the selection in insertion order.
func (s *Set) Records() []artwork.Record {
	out := make([]artwork.Record, len(s.records))
	copy(out, s.records)
	return out
}
