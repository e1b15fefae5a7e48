package pagination

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/artic-table/pkg/artwork"
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of pages in flight.
	MaxConcurrency int

	// Timeout bounds each page fetch.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
		Timeout:        15 * time.Second,
	}
}

// PageFetcher fetches a single page. *client.Client implements it.
type PageFetcher interface {
	FetchPage(ctx context.Context, index, size int) (*artwork.Page, error)
}

// PageResult is the outcome for one requested page index.
type PageResult struct {
	Index int
	Page  *artwork.Page
	Err   error
}

// BatchFetcher fetches lists of pages in parallel.
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
}

// NewBatchFetcher creates a batch fetcher, filling in defaults for unset
// configuration values.
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	defaults := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
	}
}

type job struct {
	slot  int
	index int
}

// FetchPages fetches every index with size rows per page. The returned slice
// has one entry per element of indices, in the same order.
func (bf *BatchFetcher) FetchPages(ctx context.Context, indices []int, size int) []PageResult {
	results := make([]PageResult, len(indices))
	if len(indices) == 0 {
		return results
	}

	start := time.Now()

	workers := bf.config.MaxConcurrency
	if workers > len(indices) {
		workers = len(indices)
	}

	jobs := make(chan job, len(indices))
	for slot, index := range indices {
		jobs <- job{slot: slot, index: index}
	}
	close(jobs)

	// Each worker writes only to its own job slots, so no lock is needed.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go bf.worker(ctx, size, jobs, results, &wg, i)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	log.Info().
		Ints("pages", indices).
		Int("limit", size).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Batch page fetch complete")

	return results
}

// worker drains the job queue.
func (bf *BatchFetcher) worker(ctx context.Context, size int, jobs <-chan job, results []PageResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for j := range jobs {
		results[j.slot].Index = j.index

		if err := ctx.Err(); err != nil {
			results[j.slot].Err = err
			continue
		}

		pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
		page, err := bf.fetcher.FetchPage(pageCtx, j.index, size)
		cancel()

		if err != nil {
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Int("page", j.index).
				Int("limit", size).
				Msg("Page fetch failed")
			results[j.slot].Err = err
			continue
		}

		results[j.slot].Page = page
		pagesProcessed++
	}

	log.Debug().
		Int("worker_id", workerID).
		Int("pages_processed", pagesProcessed).
		Msg("Worker completed")
}

// Records flattens successful results into one slice, preserving result
// order and each page's row order.
func Records(results []PageResult) []artwork.Record {
	n := 0
	for _, r := range results {
		if r.Err == nil && r.Page != nil {
			n += len(r.Page.Records)
		}
	}

	records := make([]artwork.Record, 0, n)
	for _, r := range results {
		if r.Err == nil && r.Page != nil {
			records = append(records, r.Page.Records...)
		}
	}
	return records
}

// Total returns the highest total reported by any successful result, or -1
// when none succeeded.
func Total(results []PageResult) int {
	total := -1
	for _, r := range results {
		if r.Err == nil && r.Page != nil && r.Page.Total > total {
			total = r.Page.Total
		}
	}
	return total
}
