package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/artic-table/internal/tui"
)

func newBrowseCmd(a *app) *cobra.Command {
	var (
		page int
		size int
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive artworks table (default)",
		Long: `Open the interactive artworks table.

Navigation:
  ↑/k, ↓/j    Move the cursor
  ←/h, →/l    Previous / next page
  +/-         Change rows per page (5, 10, 20, 50)
  r           Reload the current page

Selection:
  Space       Toggle the row under the cursor
  a           Toggle every row on the page
  s           Select N rows across pages
  c           Clear the selection
  q           Quit

Logs are discarded unless --log-file is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 0 {
				return fmt.Errorf("--page must not be negative")
			}
			size := a.pageSize(cmd, size)

			model := tui.New(a.controller(size), tui.Options{
				Context:   cmd.Context(),
				StartPage: page,
				PageSize:  size,
			})
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("run tui: %w", err)
			}
			if m, ok := final.(tui.Model); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%d rows selected\n", m.Selected())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "0-based page to open first")
	cmd.Flags().IntVar(&size, "size", 0, "rows per page (default ARTIC_PAGE_SIZE or 5)")
	return cmd
}
