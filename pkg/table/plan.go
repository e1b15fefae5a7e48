package table

// Plan describes the first round of fetches for a select-count request.
type Plan struct {
	// Remaining is how many rows must still be added.
	Remaining int

	// PagesNeeded is ceil(Remaining / PageSize).
	PagesNeeded int

	// Indices are the consecutive page indices to fetch, starting at the
	// current page and clipped to the last known page.
	Indices []int
}

// PlanSelection computes the fetch plan for selecting n rows when selected
// rows are already chosen. pageCount < 0 means the record total is not yet
// known and no clipping is applied.
func PlanSelection(n, selected int, page PageState, pageCount int) Plan {
	remaining := n - selected
	if remaining <= 0 || page.PageSize <= 0 {
		return Plan{Remaining: max(remaining, 0)}
	}

	needed := (remaining + page.PageSize - 1) / page.PageSize
	plan := Plan{Remaining: remaining, PagesNeeded: needed}

	for i := 0; i < needed; i++ {
		idx := page.PageIndex + i
		if pageCount >= 0 && idx >= pageCount {
			break
		}
		plan.Indices = append(plan.Indices, idx)
	}

	return plan
}
