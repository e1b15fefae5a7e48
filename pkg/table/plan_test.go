package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewPageState(t *testing.T) {
	ps := NewPageState(2, 5, 12)
	want := PageState{Offset: 10, PageSize: 5, PageIndex: 2, PageCount: 3}
	if ps != want {
		t.Errorf("NewPageState() = %+v, want %+v", ps, want)
	}
	if ps.Offset != ps.PageIndex*ps.PageSize {
		t.Error("offset invariant violated")
	}
}

func TestPlanSelection(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		selected  int
		page      PageState
		pageCount int
		want      Plan
	}{
		{
			name:      "scenario from page 2",
			n:         12,
			page:      NewPageState(2, 5, 100),
			pageCount: 20,
			want:      Plan{Remaining: 12, PagesNeeded: 3, Indices: []int{2, 3, 4}},
		},
		{
			name:      "already satisfied",
			n:         3,
			selected:  3,
			page:      NewPageState(0, 5, 100),
			pageCount: 20,
			want:      Plan{},
		},
		{
			name:      "excess selection",
			n:         2,
			selected:  7,
			page:      NewPageState(0, 5, 100),
			pageCount: 20,
			want:      Plan{},
		},
		{
			name:      "counts existing selection",
			n:         8,
			selected:  4,
			page:      NewPageState(1, 5, 100),
			pageCount: 20,
			want:      Plan{Remaining: 4, PagesNeeded: 1, Indices: []int{1}},
		},
		{
			name:      "clipped at last page",
			n:         20,
			page:      NewPageState(1, 5, 12),
			pageCount: 3,
			want:      Plan{Remaining: 20, PagesNeeded: 4, Indices: []int{1, 2}},
		},
		{
			name:      "unknown total not clipped",
			n:         11,
			page:      NewPageState(0, 5, 0),
			pageCount: -1,
			want:      Plan{Remaining: 11, PagesNeeded: 3, Indices: []int{0, 1, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanSelection(tt.n, tt.selected, tt.page, tt.pageCount)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("PlanSelection() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNextIndices(t *testing.T) {
	tests := []struct {
		name      string
		last      int
		remaining int
		pageCount int
		visited   []int
		want      []int
	}{
		{name: "forward", last: 4, remaining: 6, pageCount: 10, visited: []int{2, 3, 4}, want: []int{5, 6}},
		{name: "wraps to start", last: 3, remaining: 10, pageCount: 4, visited: []int{2, 3}, want: []int{0, 1}},
		{name: "all visited", last: 2, remaining: 5, pageCount: 3, visited: []int{0, 1, 2}, want: nil},
		{name: "unknown count", last: 1, remaining: 3, pageCount: -1, visited: []int{0, 1}, want: []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visited := make(map[int]bool)
			for _, v := range tt.visited {
				visited[v] = true
			}
			got := nextIndices(tt.last, tt.remaining, 5, tt.pageCount, visited)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("nextIndices() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
