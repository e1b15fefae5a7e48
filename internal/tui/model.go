// Package tui is the interactive artworks table: a checkbox column over one
// page of records, a pagination footer and a popover for selecting N rows
// across pages.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/artic-table/pkg/logging"
	"github.com/Sternrassler/artic-table/pkg/table"
)

// DefaultPageSizes are the rows-per-page choices cycled with +/-.
var DefaultPageSizes = []int{5, 10, 20, 50}

// Options configures a Model.
type Options struct {
	// Context bounds every fetch the model starts. Defaults to Background.
	Context context.Context

	// StartPage is the 0-based page shown first.
	StartPage int

	// PageSize is the initial rows per page. It is added to PageSizes when
	// missing.
	PageSize int

	// PageSizes overrides DefaultPageSizes.
	PageSizes []int
}

// pageLoadedMsg is sent when a RequestPage started by the model returns.
type pageLoadedMsg struct {
	requestID uint64
	err       error
}

// selectDoneMsg is sent when a SelectCount run started by the model returns.
type selectDoneMsg struct {
	requestID uint64
	result    table.Result
	err       error
}

// initMsg triggers the first page load through Update so the request ID
// bookkeeping is kept.
type initMsg struct{}

// Model is the bubbletea model of the table.
type Model struct {
	ctrl   *table.Controller
	ctx    context.Context
	logger zerolog.Logger

	startPage int
	pageSize  int
	pageSizes []int
	cursor    int

	// Popover state is local to the view.
	popoverOpen bool
	input       textinput.Model
	inputErr    string

	spinner  spinner.Model
	spinning bool

	loading   bool
	selecting bool
	status    string

	pageRequestID   uint64
	selectRequestID uint64
	cancelSelect    context.CancelFunc

	width  int
	height int

	quitting bool
}

// New creates a model driving ctrl.
func New(ctrl *table.Controller, opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	sizes := opts.PageSizes
	if len(sizes) == 0 {
		sizes = DefaultPageSizes
	}
	size := opts.PageSize
	if size <= 0 {
		size = sizes[0]
	}
	sizes = withSize(sizes, size)

	ti := textinput.New()
	ti.Placeholder = "number of rows"
	ti.CharLimit = 7
	ti.Width = 12
	ti.Prompt = "Select rows: "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	return Model{
		ctrl:      ctrl,
		ctx:       ctx,
		logger:    logging.NewLogger("tui"),
		startPage: max(opts.StartPage, 0),
		pageSize:  size,
		pageSizes: sizes,
		input:     ti,
		spinner:   sp,
		width:     120,
		height:    24,
	}
}

// withSize returns sizes with size inserted in ascending position when it
// is missing.
func withSize(sizes []int, size int) []int {
	out := make([]int, 0, len(sizes)+1)
	inserted := false
	for _, s := range sizes {
		if s == size {
			inserted = true
		}
		if !inserted && s > size {
			out = append(out, size)
			inserted = true
		}
		out = append(out, s)
	}
	if !inserted {
		out = append(out, size)
	}
	return out
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return initMsg{} }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case initMsg:
		return m, m.startPageLoad(m.startPage, m.pageSize)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.popoverOpen {
			return m.handlePopoverKey(msg)
		}
		return m.handleKey(msg)

	case pageLoadedMsg:
		return m.handlePageLoaded(msg)

	case selectDoneMsg:
		return m.handleSelectDone(msg)

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) busy() bool {
	return m.loading || m.selecting
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

// Selected returns the current selection.
func (m Model) Selected() int {
	return m.ctrl.SelectedCount()
}

func (m Model) handlePageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.requestID != m.pageRequestID {
		return m, nil
	}
	m.loading = false

	if msg.err != nil {
		// Previous rows stay on screen; the controller already logged it.
		// A failed resize must not leave the footer on the rejected size.
		if m.ctrl.Snapshot().Loaded {
			m.pageSize = m.ctrl.PageState().PageSize
		}
		return m, nil
	}

	m.pageSize = m.ctrl.PageState().PageSize
	m.clampCursor()
	return m, nil
}

func (m Model) handleSelectDone(msg selectDoneMsg) (tea.Model, tea.Cmd) {
	if msg.requestID != m.selectRequestID {
		return m, nil
	}
	m.selecting = false
	m.cancelSelect = nil
	m.popoverOpen = false
	m.input.Blur()

	res := msg.result
	switch {
	case errors.Is(msg.err, context.Canceled):
		m.status = fmt.Sprintf("Selection cancelled at %d rows", res.Selected)
	case res.Short():
		m.status = fmt.Sprintf("Selected %d of %d requested rows", res.Selected, res.Requested)
	default:
		m.status = fmt.Sprintf("Selected %d rows", res.Selected)
	}
	return m, nil
}

// startPageLoad issues RequestPage in the background. Only the response to
// the latest request clears the loading flag.
func (m *Model) startPageLoad(index, size int) tea.Cmd {
	m.pageRequestID++
	m.loading = true
	reqID := m.pageRequestID

	ctrl, ctx := m.ctrl, m.ctx
	load := func() tea.Msg {
		return pageLoadedMsg{requestID: reqID, err: ctrl.RequestPage(ctx, index, size)}
	}
	return tea.Batch(load, m.startSpinner())
}

// startSelect runs SelectCount(n) in the background.
func (m *Model) startSelect(n int) tea.Cmd {
	m.cancelInflightSelect()
	m.selectRequestID++
	m.selecting = true
	m.status = ""
	reqID := m.selectRequestID

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelSelect = cancel

	ctrl := m.ctrl
	run := func() tea.Msg {
		defer cancel()
		res, err := ctrl.SelectCount(ctx, n)
		return selectDoneMsg{requestID: reqID, result: res, err: err}
	}
	return tea.Batch(run, m.startSpinner())
}

func (m *Model) cancelInflightSelect() {
	if m.cancelSelect != nil {
		m.cancelSelect()
		m.cancelSelect = nil
	}
}

// startSpinner returns a tick command unless the spinner is already running.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) clampCursor() {
	n := len(m.ctrl.Snapshot().Rows)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
