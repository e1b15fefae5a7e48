package tui

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Sternrassler/artic-table/pkg/table"
)

// handleKey handles keys while the table has focus.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.ctrl.Snapshot()

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.cancelInflightSelect()
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.cursor < len(snap.Rows)-1 {
			m.cursor++
		}
		return m, nil

	case "home", "g":
		m.cursor = 0
		return m, nil

	case "end", "G":
		m.cursor = max(len(snap.Rows)-1, 0)
		return m, nil

	case " ", "x":
		if _, err := m.ctrl.ToggleRow(m.cursor); err != nil && !errors.Is(err, table.ErrRowOutOfRange) {
			m.logger.Warn().Err(err).Int("row", m.cursor).Msg("Toggle failed")
		}
		return m, nil

	case "a":
		m.ctrl.SelectPage()
		return m, nil

	case "c":
		m.ctrl.ClearSelection()
		m.status = "Selection cleared"
		return m, nil

	case "left", "h":
		if snap.Page.PageIndex > 0 {
			m.cursor = 0
			return m, m.startPageLoad(snap.Page.PageIndex-1, snap.Page.PageSize)
		}
		return m, nil

	case "right", "l":
		if snap.Loaded && snap.Page.PageIndex < snap.Page.PageCount-1 {
			m.cursor = 0
			return m, m.startPageLoad(snap.Page.PageIndex+1, snap.Page.PageSize)
		}
		return m, nil

	case "r":
		index := snap.Page.PageIndex
		if !snap.Loaded {
			index = m.startPage
		}
		return m, m.startPageLoad(index, m.pageSize)

	case "+", "=":
		return m.changePageSize(snap, 1)

	case "-", "_":
		return m.changePageSize(snap, -1)

	case "s":
		if !snap.Loaded || snap.Total == 0 || m.selecting {
			return m, nil
		}
		m.openPopover()
		return m, nil
	}

	return m, nil
}

// changePageSize steps through the page size choices and reloads the page
// that holds the first visible row.
func (m Model) changePageSize(snap table.Snapshot, step int) (tea.Model, tea.Cmd) {
	cur := 0
	for i, s := range m.pageSizes {
		if s == m.pageSize {
			cur = i
			break
		}
	}
	next := cur + step
	if next < 0 || next >= len(m.pageSizes) {
		return m, nil
	}

	size := m.pageSizes[next]
	m.pageSize = size
	m.cursor = 0
	return m, m.startPageLoad(snap.Page.Offset/size, size)
}

func (m *Model) openPopover() {
	m.popoverOpen = true
	m.inputErr = ""
	m.input.SetValue("1")
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) closePopover() {
	m.popoverOpen = false
	m.inputErr = ""
	m.input.Blur()
}

// handlePopoverKey handles keys while the select-rows popover is open. The
// popover stays open until the run it submitted has finished.
func (m Model) handlePopoverKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		m.cancelInflightSelect()
		return m, tea.Quit

	case "esc":
		if m.selecting {
			// Rows merged so far are kept.
			m.cancelInflightSelect()
			return m, nil
		}
		m.closePopover()
		return m, nil

	case "enter":
		if m.selecting {
			return m, nil
		}
		n, err := m.parseCount()
		if err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		m.inputErr = ""
		return m, m.startSelect(n)
	}

	if m.selecting {
		return m, nil
	}

	if msg.Type == tea.KeyRunes && !allDigits(msg.Runes) {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.inputErr = ""
	return m, cmd
}

// parseCount reads the popover value and checks 1 <= n <= total.
func (m Model) parseCount() (int, error) {
	raw := strings.TrimSpace(m.input.Value())
	if raw == "" {
		return 0, errors.New("enter a number")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if err := m.ctrl.ValidateCount(n); err != nil {
		return 0, errors.New("must be between 1 and " + strconv.Itoa(m.ctrl.Snapshot().Total))
	}
	return n, nil
}

func allDigits(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(rs) > 0
}
