// Package pagination fetches several artworks pages concurrently.
//
// The batch fetcher takes an explicit list of 0-based page indices, runs
// them through a bounded worker pool with a per-page timeout, and hands back
// one result per requested index in the order the indices were given,
// regardless of completion order. A failed page is logged and reported in
// its result; it never aborts the other fetches.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher(apiClient, pagination.DefaultConfig())
//	results := fetcher.FetchPages(ctx, []int{2, 3, 4}, 5)
//	records := pagination.Records(results)
package pagination
