package tui

import (
	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/Iron-Ham/hivecouncil/internal/tui/styles"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Layout constants
const (
	// chromeHeight is every line outside the transcript viewport: header,
	// status and ledger lines, error line, viewport border and help bar.
	chromeHeight = 10
	// chromeWidth is the viewport border plus padding.
	chromeWidth = 4

	minViewportHeight = 5
	minViewportWidth  = 20
)

// Messages

type snapshotMsg council.Snapshot
type clearedMsg struct{}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithCostWarning highlights the running cost once it reaches threshold.
// Zero disables the highlight.
func WithCostWarning(threshold float64) ModelOption {
	return func(m *Model) {
		m.costWarning = threshold
	}
}

// WithTitle sets the line shown under the header, usually the prompt.
func WithTitle(title string) ModelOption {
	return func(m *Model) {
		m.title = title
	}
}

// Model is the Bubbletea model of the session viewer.
type Model struct {
	ctrl    Controller
	updates <-chan council.Snapshot

	snap     council.Snapshot
	spinner  spinner.Model
	viewport viewport.Model

	title       string
	costWarning float64
	width       int
	height      int
	quitting    bool
}

// NewModel creates a model showing ctrl's current snapshot. New snapshots are
// read from updates; a nil channel means the caller delivers them itself.
func NewModel(ctrl Controller, updates <-chan council.Snapshot, opts ...ModelOption) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Secondary

	m := Model{
		ctrl:     ctrl,
		updates:  updates,
		snap:     ctrl.Snapshot(),
		spinner:  sp,
		viewport: viewport.New(80-chromeWidth, 20),
		width:    80,
		height:   20 + chromeHeight,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refreshTranscript()
	return m
}

// Init starts the spinner and the snapshot listener.
func (m Model) Init() tea.Cmd {
	if m.updates == nil {
		return m.spinner.Tick
	}
	return tea.Batch(m.spinner.Tick, waitForSnapshot(m.updates))
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		m.snap = council.Snapshot(msg)
		m.refreshTranscript()
		if m.updates != nil {
			return m, waitForSnapshot(m.updates)
		}
		return m, nil

	case clearedMsg:
		m.snap = m.ctrl.Snapshot()
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleKey maps key presses to controller requests. Requests run as
// commands so the controller never waits on the event loop.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "p":
		if m.snap.Status == council.StatusRunning {
			return m, controlCmd(m.ctrl.Pause)
		}
		return m, nil
	case "r":
		if m.snap.Status == council.StatusPaused {
			return m, controlCmd(m.ctrl.Resume)
		}
		return m, nil
	case "c":
		ctrl := m.ctrl
		return m, func() tea.Msg {
			ctrl.Clear()
			return clearedMsg{}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-chromeWidth, minViewportWidth)
	m.viewport.Height = max(height-chromeHeight, minViewportHeight)
	m.refreshTranscript()
}

// refreshTranscript re-renders the responses, keeping the view pinned to the
// bottom when it already was.
func (m *Model) refreshTranscript() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(renderTranscript(m.snap, m.viewport.Width))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func waitForSnapshot(updates <-chan council.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func controlCmd(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}
