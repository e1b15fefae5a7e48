package table

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/artic-table/pkg/artwork"
	"github.com/Sternrassler/artic-table/pkg/pagination"
	"github.com/Sternrassler/artic-table/pkg/selection"
)

var (
	// ErrInvalidPage is returned for a negative index or non-positive size.
	ErrInvalidPage = errors.New("invalid page")

	// ErrInvalidCount is returned by ValidateCount when n is outside
	// [1, total].
	ErrInvalidCount = errors.New("invalid selection count")

	// ErrRowOutOfRange is returned when toggling a row that is not displayed.
	ErrRowOutOfRange = errors.New("row out of range")
)

// DefaultPageSize matches the initial rows-per-page of the table.
const DefaultPageSize = 5

// Source is the remote collection the controller pages through.
type Source = pagination.PageFetcher

// Options configures a Controller.
type Options struct {
	// PageSize is the initial page size.
	PageSize int

	// Batch configures the concurrent fetches of a select-count run.
	Batch pagination.Config

	// Key overrides the selection identity (title by default).
	Key selection.KeyFunc
}

// Controller owns the page and selection state. All methods are safe for
// concurrent use; network calls never run while the lock is held.
type Controller struct {
	source Source
	batch  *pagination.BatchFetcher
	key    selection.KeyFunc
	logger zerolog.Logger

	mu       sync.Mutex
	page     PageState
	rows     []artwork.Record
	total    int
	loaded   bool
	loading  bool
	seq      uint64
	selected *selection.Set
}

// New creates a controller over source. No page is fetched until
// RequestPage is called.
func New(source Source, opts Options) *Controller {
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	key := opts.Key
	if key == nil {
		key = selection.TitleKey
	}

	return &Controller{
		source:   source,
		batch:    pagination.NewBatchFetcher(source, opts.Batch),
		key:      key,
		logger:   log.With().Str("component", "table").Logger(),
		page:     NewPageState(0, size, 0),
		selected: selection.New(key),
	}
}

// RequestPage loads the page at 0-based index with size rows and makes it
// the displayed page. On failure the error is logged and returned, and the
// previously displayed rows and cursor are kept. A response that arrives
// after a newer RequestPage call is discarded.
func (c *Controller) RequestPage(ctx context.Context, index, size int) error {
	if index < 0 || size <= 0 {
		return fmt.Errorf("%w: index=%d size=%d", ErrInvalidPage, index, size)
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.mu.Unlock()

	page, err := c.source.FetchPage(ctx, index, size)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		pageLoadsTotal.WithLabelValues("stale").Inc()
		c.logger.Debug().Int("page", index).Msg("Discarding superseded page response")
		return nil
	}
	c.loading = false

	if err != nil {
		pageLoadsTotal.WithLabelValues("failed").Inc()
		c.logger.Warn().
			Err(err).
			Int("page", index).
			Int("limit", size).
			Msg("Error fetching page; keeping previous rows")
		return err
	}

	pageLoadsTotal.WithLabelValues("ok").Inc()
	c.rows = page.Records
	c.total = page.Total
	c.page = NewPageState(index, size, page.Total)
	c.loaded = true

	return nil
}

// Result summarizes a SelectCount run.
type Result struct {
	Requested   int
	PagesNeeded int
	Fetched     []int
	Reused      []int
	Failed      []int
	Added       int
	Selected    int
}

// Short reports whether the selection ended below the requested count.
func (r Result) Short() bool {
	return r.Selected < r.Requested
}

// SelectCount grows the selection to n rows by walking pages forward from
// the displayed page.
//
// It computes remaining = n - |selection|; if that is not positive nothing
// happens and the selection is never trimmed. Otherwise it fetches
// ceil(remaining/pageSize) consecutive pages starting at the displayed page
// index, concurrently, and merges their rows in page order, skipping keys
// already selected, until the selection holds n rows. Rows of the displayed
// page are reused instead of being fetched again.
//
// When every fetch succeeded but duplicates left the selection short, further
// pages are fetched after the last one, wrapping to page 0 once the end is
// reached, until n is met or every page has been visited. Failed pages are
// logged and skipped without another round; rows merged before a failure
// are kept.
//
// Range checks on n belong to the caller (see ValidateCount). Overlapping
// calls are not queued; each merge re-checks the count cap under the lock.
// The returned error is non-nil only when ctx ended before the run finished.
func (c *Controller) SelectCount(ctx context.Context, n int) (Result, error) {
	start := time.Now()

	c.mu.Lock()
	page := c.page
	rows := append([]artwork.Record(nil), c.rows...)
	loaded := c.loaded
	pageCount := -1
	if loaded {
		pageCount = page.PageCount
	}
	plan := PlanSelection(n, c.selected.Len(), page, pageCount)
	c.mu.Unlock()

	res := Result{Requested: n, PagesNeeded: plan.PagesNeeded, Selected: n - plan.Remaining}

	if plan.Remaining <= 0 {
		res.Selected = c.SelectedCount()
		selectionRunsTotal.WithLabelValues("noop").Inc()
		c.logger.Debug().Int("requested", n).Msg("Selection already satisfied")
		return res, nil
	}

	visited := make(map[int]bool)
	indices := plan.Indices

	for len(indices) > 0 {
		for _, idx := range indices {
			visited[idx] = true
		}

		var buffer []artwork.Record
		var toFetch []int
		reusedFirst := false
		if loaded && indices[0] == page.PageIndex && len(rows) > 0 {
			reusedFirst = true
			res.Reused = append(res.Reused, indices[0])
			toFetch = indices[1:]
		} else {
			toFetch = indices
		}

		var results []pagination.PageResult
		if len(toFetch) > 0 {
			res.Fetched = append(res.Fetched, toFetch...)
			selectionPagesFetched.Add(float64(len(toFetch)))
			results = c.batch.FetchPages(ctx, toFetch, page.PageSize)
		}

		roundFailed := false
		for _, r := range results {
			if r.Err != nil {
				roundFailed = true
				res.Failed = append(res.Failed, r.Index)
			}
		}
		if t := pagination.Total(results); t >= 0 {
			pageCount = artwork.PageCount(t, page.PageSize)
		}

		if reusedFirst {
			buffer = append(buffer, rows...)
		}
		buffer = append(buffer, pagination.Records(results)...)

		c.mu.Lock()
		added := c.selected.Merge(buffer, n)
		have := c.selected.Len()
		selectedRows.Set(float64(have))
		c.mu.Unlock()

		res.Added += added
		res.Selected = have

		if have >= n || roundFailed || len(buffer) == 0 || ctx.Err() != nil {
			break
		}
		indices = nextIndices(indices[len(indices)-1], n-have, page.PageSize, pageCount, visited)
	}

	outcome := "complete"
	if res.Short() {
		outcome = "short"
	}
	selectionRunsTotal.WithLabelValues(outcome).Inc()

	c.logger.Info().
		Int("requested", n).
		Int("selected", res.Selected).
		Int("added", res.Added).
		Ints("fetched", res.Fetched).
		Ints("failed", res.Failed).
		Dur("duration", time.Since(start)).
		Msg("Select-count run finished")

	return res, ctx.Err()
}

// nextIndices plans a top-up round after last: enough unvisited pages to
// cover remaining rows, moving forward and wrapping to 0 when the page count
// is known.
func nextIndices(last, remaining, size, pageCount int, visited map[int]bool) []int {
	needed := (remaining + size - 1) / size
	seen := make(map[int]bool, needed)
	var out []int

	idx := last
	for len(out) < needed {
		idx++
		if pageCount >= 0 {
			if len(visited)+len(out) >= pageCount {
				break
			}
			if idx >= pageCount {
				idx = 0
			}
		}
		if visited[idx] || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out
}

// ValidateCount checks the select-count precondition 1 <= n <= total.
func (c *Controller) ValidateCount(n int) error {
	c.mu.Lock()
	total := c.total
	c.mu.Unlock()

	if n < 1 || n > total {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidCount, n, total)
	}
	return nil
}

// ToggleRow flips the selection of the i-th displayed row and returns its
// new state.
func (c *Controller) ToggleRow(i int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.rows) {
		return false, fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	on := c.selected.Toggle(c.rows[i])
	selectedRows.Set(float64(c.selected.Len()))
	return on, nil
}

// SelectPage selects every displayed row, or deselects them all when they
// are already all selected.
func (c *Controller) SelectPage() {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := true
	for _, r := range c.rows {
		if !c.selected.Contains(r) {
			all = false
			break
		}
	}
	for _, r := range c.rows {
		if all {
			c.selected.Remove(r)
		} else {
			c.selected.Add(r)
		}
	}
	selectedRows.Set(float64(c.selected.Len()))
}

// SetSelection replaces the selection, as when the table widget reports a
// new selection value.
func (c *Controller) SetSelection(records []artwork.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected.Replace(records)
	selectedRows.Set(float64(c.selected.Len()))
}

// ClearSelection deselects everything.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected.Clear()
	selectedRows.Set(0)
}

// SelectedCount returns the selection size.
func (c *Controller) SelectedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected.Len()
}

// Selected returns the selection in insertion order.
func (c *Controller) Selected() []artwork.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected.Records()
}

// PageState returns the current cursor.
func (c *Controller) PageState() PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Snapshot returns a copy of the state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	sel := c.selected.Records()
	keys := make(map[string]struct{}, len(sel))
	for _, r := range sel {
		keys[c.key(r)] = struct{}{}
	}

	return Snapshot{
		Rows:     append([]artwork.Record(nil), c.rows...),
		Total:    c.total,
		Loading:  c.loading,
		Loaded:   c.loaded,
		Page:     c.page,
		Selected: sel,
		selected: keys,
		key:      c.key,
	}
}
