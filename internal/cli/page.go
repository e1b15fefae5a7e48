package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/artic-table/pkg/artwork"
)

type pageOutput struct {
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
	PageCount int              `json:"page_count"`
	Total     int              `json:"total"`
	Records   []artwork.Record `json:"records"`
}

func newPageCmd(a *app) *cobra.Command {
	var (
		page   int
		size   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Print one page of artworks",
		Long: `Print one page of artworks.

--page is the 0-based page index; --page 0 is page 1 of the API.`,
		Example: `  artic-table page --page 2 --size 10
  artic-table page --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			size := a.pageSize(cmd, size)
			ctrl := a.controller(size)

			if err := ctrl.RequestPage(cmd.Context(), page, size); err != nil {
				return fmt.Errorf("fetch page %d: %w", page, err)
			}
			snap := ctrl.Snapshot()

			out := cmd.OutOrStdout()
			if asJSON {
				return writeRecordsJSON(out, pageOutput{
					Page:      snap.Page.PageIndex,
					PageSize:  snap.Page.PageSize,
					PageCount: snap.Page.PageCount,
					Total:     snap.Total,
					Records:   snap.Rows,
				})
			}

			if err := writeRecordsTable(out, snap.Rows); err != nil {
				return err
			}
			fmt.Fprintf(out, "\npage %d of %d · %d records\n", snap.Page.PageIndex+1, snap.Page.PageCount, snap.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "0-based page index")
	cmd.Flags().IntVar(&size, "size", 0, "rows per page (default ARTIC_PAGE_SIZE or 5)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
