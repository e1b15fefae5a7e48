package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/artic-table/pkg/artwork"
	"github.com/Sternrassler/artic-table/pkg/table"
)

type selectOutput struct {
	Requested int              `json:"requested"`
	Selected  int              `json:"selected"`
	Fetched   []int            `json:"fetched_pages"`
	Reused    []int            `json:"reused_pages"`
	Failed    []int            `json:"failed_pages"`
	Records   []artwork.Record `json:"records"`
}

func newSelectCmd(a *app) *cobra.Command {
	var (
		page   int
		size   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "select <count>",
		Short: "Select N rows across pages starting at a page and print them",
		Long: `Select N rows across pages without the interactive table.

The page given by --page is loaded first, exactly as if it were on screen.
The following pages are then fetched concurrently and merged in page order,
skipping titles that are already selected, until N rows are selected.
Failed pages are logged and skipped, so the result can fall short of N.`,
		Example: `  artic-table select 12 --page 2 --size 5
  artic-table select 40 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("count %q is not a number", args[0])
			}

			size := a.pageSize(cmd, size)
			ctrl := a.controller(size)
			ctx := cmd.Context()

			if err := ctrl.RequestPage(ctx, page, size); err != nil {
				return fmt.Errorf("fetch page %d: %w", page, err)
			}
			if err := ctrl.ValidateCount(n); err != nil {
				return err
			}

			// err is only set when ctx ended; the partial selection is
			// still printed.
			res, err := ctrl.SelectCount(ctx, n)
			selected := ctrl.Selected()

			out := cmd.OutOrStdout()
			if asJSON {
				if werr := writeRecordsJSON(out, selectOutput{
					Requested: res.Requested,
					Selected:  res.Selected,
					Fetched:   nonNil(res.Fetched),
					Reused:    nonNil(res.Reused),
					Failed:    nonNil(res.Failed),
					Records:   selected,
				}); werr != nil {
					return werr
				}
				return err
			}

			if werr := writeRecordsTable(out, selected); werr != nil {
				return werr
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, summary(res))
			return err
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "0-based page the selection starts at")
	cmd.Flags().IntVar(&size, "size", 0, "rows per page (default ARTIC_PAGE_SIZE or 5)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func summary(res table.Result) string {
	s := fmt.Sprintf("Selected %d of %d rows", res.Selected, res.Requested)
	if len(res.Fetched) > 0 {
		s += fmt.Sprintf(" · fetched pages %v", res.Fetched)
	}
	if len(res.Failed) > 0 {
		s += fmt.Sprintf(" · failed pages %v", res.Failed)
	}
	return s
}

func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
