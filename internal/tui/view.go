package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/Sternrassler/artic-table/pkg/artwork"
	"github.com/Sternrassler/artic-table/pkg/table"
)

var (
	bgBase   = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}
	bgCursor = lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#282828"}
	dimColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}

	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#333333"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}).
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().Bold(true)
	separatorStyle   = lipgloss.NewStyle().Faint(true)
	cursorRowStyle   = lipgloss.NewStyle().Background(bgCursor)
	selectedRowStyle = lipgloss.NewStyle().Bold(true)
	normalRowStyle   = lipgloss.NewStyle()
	footerStyle      = lipgloss.NewStyle().Foreground(dimColor).Padding(0, 1)
	statusStyle      = lipgloss.NewStyle().Italic(true).Padding(0, 1)
	loadingStyle     = lipgloss.NewStyle().Italic(true).Padding(0, 1)
	spinnerStyle     = lipgloss.NewStyle().Bold(true)
	errorStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	modalTitleStyle  = lipgloss.NewStyle().Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2).
			Background(bgBase)
)

const (
	checkboxWidth = 3
	yearWidth     = 6
	cursorWidth   = 2
	columnGap     = 1
	minTextWidth  = 40
)

// column widths for title, place of origin, artist and inscriptions.
type layout struct {
	title, origin, artist, inscriptions int
}

func (m Model) layout() layout {
	fixed := cursorWidth + checkboxWidth + 2*yearWidth + 6*columnGap
	text := max(m.width-fixed, minTextWidth)

	l := layout{
		title:  text * 30 / 100,
		origin: text * 15 / 100,
		artist: text * 30 / 100,
	}
	l.inscriptions = text - l.title - l.origin - l.artist
	return l
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.ctrl.Snapshot()

	var b strings.Builder
	b.WriteString(m.viewTitleBar(snap))
	b.WriteString("\n")
	b.WriteString(m.viewTable(snap))
	b.WriteString("\n")
	b.WriteString(m.viewFooter(snap))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.helpLine()))

	view := b.String()
	if m.popoverOpen {
		view = m.overlayPopover(view)
	}
	return view
}

func (m Model) viewTitleBar(snap table.Snapshot) string {
	left := "Art Institute of Chicago · Artworks"
	right := fmt.Sprintf("%d selected", len(snap.Selected))
	gap := max(m.width-runewidth.StringWidth(left)-runewidth.StringWidth(right)-2, 1)
	return titleBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) viewTable(snap table.Snapshot) string {
	if !snap.Loaded {
		if snap.Loading || m.loading {
			return loadingStyle.Render(m.spinner.View() + " Loading artworks...")
		}
		return errorStyle.Render("No artworks loaded. Press r to retry.")
	}

	l := m.layout()
	var b strings.Builder

	header := strings.Repeat(" ", cursorWidth) + m.row("", "Title", "Place of origin", "Artist", "Inscriptions", "Start", "End", l)
	b.WriteString(tableHeaderStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", min(lipgloss.Width(header), max(m.width, 1)))))

	if len(snap.Rows) == 0 {
		b.WriteString("\n")
		b.WriteString(loadingStyle.Render("No records on this page"))
		return b.String()
	}

	for i, r := range snap.Rows {
		b.WriteString("\n")

		box := "[ ]"
		style := normalRowStyle
		if snap.IsSelected(r) {
			box = "[x]"
			style = selectedRowStyle
		}
		marker := "  "
		if i == m.cursor {
			marker = "> "
			style = style.Inherit(cursorRowStyle)
		}

		line := marker + m.row(box, r.Title, r.PlaceOfOrigin, r.ArtistDisplay, r.Inscriptions,
			artwork.FormatYear(r.DateStart), artwork.FormatYear(r.DateEnd), l)
		b.WriteString(style.Render(line))
	}
	return b.String()
}

func (m Model) row(box, title, origin, artist, inscriptions, start, end string, l layout) string {
	cells := []string{
		padRight(box, checkboxWidth),
		padRight(truncateRunes(orDash(title), l.title), l.title),
		padRight(truncateRunes(orDash(origin), l.origin), l.origin),
		padRight(truncateRunes(orDash(artist), l.artist), l.artist),
		padRight(truncateRunes(orDash(inscriptions), l.inscriptions), l.inscriptions),
		padLeft(start, yearWidth),
		padLeft(end, yearWidth),
	}
	return strings.Join(cells, strings.Repeat(" ", columnGap))
}

func (m Model) viewFooter(snap table.Snapshot) string {
	var parts []string

	if snap.Loaded {
		parts = append(parts,
			fmt.Sprintf("page %d of %d", snap.Page.PageIndex+1, max(snap.Page.PageCount, 1)),
			fmt.Sprintf("%d records", snap.Total),
		)
	}
	parts = append(parts, fmt.Sprintf("%d rows per page", m.pageSize))

	footer := footerStyle.Render(strings.Join(parts, " · "))
	if m.busy() && snap.Loaded {
		footer += " " + m.spinner.View()
	}
	if m.status != "" {
		footer += statusStyle.Render(m.status)
	}
	return footer
}

func (m Model) helpLine() string {
	return "↑/↓ move  space toggle  a page  ←/→ page  +/- size  s select N  c clear  r reload  q quit"
}

// overlayPopover draws the select-rows popover centered over background.
func (m Model) overlayPopover(background string) string {
	var sb strings.Builder
	sb.WriteString(modalTitleStyle.Render("Select rows across pages"))
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")
	switch {
	case m.selecting:
		sb.WriteString(m.spinner.View() + " Selecting...")
		sb.WriteString("\n\n[Esc] Stop")
	case m.inputErr != "":
		sb.WriteString(errorStyle.Render(m.inputErr))
		sb.WriteString("\n\n[Enter] Select  [Esc] Cancel")
	default:
		sb.WriteString(fmt.Sprintf("1 to %d rows", m.ctrl.Snapshot().Total))
		sb.WriteString("\n\n[Enter] Select  [Esc] Cancel")
	}

	modal := modalStyle.Render(sb.String())

	bgLines := strings.Split(background, "\n")
	modalLines := strings.Split(modal, "\n")

	startLine := max((len(bgLines)-len(modalLines))/2, 0)
	modalWidth := lipgloss.Width(modal)
	leftPadding := max((m.width-modalWidth)/2, 0)

	for len(bgLines) < startLine+len(modalLines) {
		bgLines = append(bgLines, "")
	}

	for i, modalLine := range modalLines {
		idx := startLine + i
		bgLine := bgLines[idx]

		var composite strings.Builder
		if leftPadding > 0 {
			left := ansi.Truncate(bgLine, leftPadding, "")
			composite.WriteString(left)
			if w := lipgloss.Width(left); w < leftPadding {
				composite.WriteString(strings.Repeat(" ", leftPadding-w))
			}
		}
		composite.WriteString(modalLine)
		if rightStart := leftPadding + modalWidth; rightStart < lipgloss.Width(bgLine) {
			composite.WriteString(ansi.Cut(bgLine, rightStart, lipgloss.Width(bgLine)))
		}
		bgLines[idx] = composite.String()
	}

	return strings.Join(bgLines, "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// truncateRunes flattens control whitespace and cuts s to maxWidth cells.
func truncateRunes(s string, maxWidth int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", " ")

	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

func padLeft(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	return strings.Repeat(" ", width-w) + s
}
