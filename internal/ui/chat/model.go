// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/session"
	"github.com/jeranaias/regnav/internal/ui/components"
	"github.com/jeranaias/regnav/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus identifies the pane receiving navigation keys.
type Focus int

const (
	FocusChat Focus = iota
	FocusGraph
	FocusReferences
)

// focusOrder is the tab cycle.
var focusOrder = []Focus{FocusChat, FocusGraph, FocusReferences}

// String returns the pane name.
func (f Focus) String() string {
	switch f {
	case FocusChat:
		return "chat"
	case FocusGraph:
		return "graph"
	case FocusReferences:
		return "references"
	default:
		return "unknown"
	}
}

// next returns the pane delta steps away in the tab cycle.
func (f Focus) next(delta int) Focus {
	n := len(focusOrder)
	return focusOrder[((int(f)+delta)%n+n)%n]
}

// =============================================================================
// MODEL
// =============================================================================

// Options configures a Model.
type Options struct {
	// Context is the root context; cancelling it aborts the stream.
	Context context.Context
	Backend Backend
	Session *session.Session
	Theme   *styles.Theme
	Logger  *zap.Logger
	// ExportDir receives ctrl+e exports (default: working directory).
	ExportDir string
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	ctx     context.Context
	backend Backend
	session *session.Session
	theme   *styles.Theme
	logger  *zap.Logger
	keyMap  KeyMap

	focus Focus

	// Components
	header   *components.Header
	status   *components.StatusBar
	messages *components.MessageList
	refs     *components.ReferenceList
	graph    *components.GraphView
	detail   *components.DetailView

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// synced is the snapshot last pushed to the side panes.
	synced *model.Snapshot
	// shown is the detail last opened in the modal.
	shown session.Detail

	width  int
	height int
	ready  bool

	exportDir string

	// Shared across model copies
	cancelMgr *cancelManager
	program   *programRef
}

// New creates the TUI model.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme(styles.ModeAuto)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Session == nil {
		opts.Session = session.New(session.Config{Logger: opts.Logger})
	}
	theme := opts.Theme

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the EU AI Act or GDPR..."
	ti.CharLimit = 4096
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.LineSpinner.Frames,
		FPS:    styles.LineSpinner.Duration(),
	}
	sp.Style = theme.Spinner

	status := components.NewStatusBar(theme)
	if opts.Backend != nil {
		status.Backend = opts.Backend.BaseURL()
	}

	m := Model{
		ctx:       opts.Context,
		backend:   opts.Backend,
		session:   opts.Session,
		theme:     theme,
		logger:    opts.Logger.Named("tui"),
		keyMap:    DefaultKeyMap(),
		focus:     FocusChat,
		header:    components.NewHeader(theme),
		status:    status,
		messages:  components.NewMessageList(theme),
		refs:      components.NewReferenceList(theme),
		graph:     components.NewGraphView(theme),
		detail:    components.NewDetailView(theme),
		viewport:  vp,
		input:     ti,
		spinner:   sp,
		exportDir: opts.ExportDir,
		cancelMgr: newCancelManager(),
		program:   &programRef{},
	}
	m.header.SetFilter(m.session.Filter())
	m.syncFocus()
	m.syncSession()
	return m
}

// SetProgram registers the running program so the stream goroutine can
// deliver events. Call it before Run.
func (m Model) SetProgram(p Sender) {
	m.program.set(p)
}

// Session returns the session the model drives.
func (m Model) Session() *session.Session {
	return m.session
}

// Focus returns the focused pane.
func (m Model) Focus() Focus {
	return m.focus
}

// Close cancels any in-flight stream.
func (m Model) Close() {
	m.cancelMgr.cancel()
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the backend health check.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.backend != nil {
		cmds = append(cmds, checkHealthCmd(m.ctx, m.backend))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// SESSION SYNC
// =============================================================================

// syncSession pushes session state into the components. Side panes are
// reset only when the active snapshot changes.
func (m *Model) syncSession() {
	active := m.session.Active()
	if active != m.synced {
		m.synced = active
		m.header.SetSnapshot(active)
		if active != nil {
			m.refs.SetReferences(active.References)
			m.graph.SetGraph(active.Graph)
		} else {
			m.refs.SetReferences(nil)
			m.graph.SetGraph(nil)
		}
	}

	if d, ok := m.session.Detail(); ok {
		if !m.detail.IsOpen() || d.Index != m.shown.Index || d.NodeID != m.shown.NodeID {
			m.shown = d
			m.detail.Open(d.Reference, d.NodeID)
		}
	} else if m.detail.IsOpen() {
		m.detail.Close()
	}

	m.messages.ActiveID = m.session.ActiveMessageID()
	m.messages.SetMessages(m.session.Messages())
	m.refreshViewport(false)
}

// refreshViewport re-renders the transcript. With no message selected the
// view follows the newest line unless the user scrolled away from it.
func (m *Model) refreshViewport(forceBottom bool) {
	follow := forceBottom || m.viewport.AtBottom()
	m.viewport.SetContent(m.messages.View())
	if m.messages.Selected >= 0 {
		m.viewport.SetYOffset(m.messages.LineOffset(m.messages.Selected))
		return
	}
	if follow {
		m.viewport.GotoBottom()
	}
}

// syncFocus updates pane focus flags and the status bar hints.
func (m *Model) syncFocus() {
	m.refs.Focused = m.focus == FocusReferences
	m.graph.Focused = m.focus == FocusGraph
	m.status.Focus = m.focus.String()
	m.status.Shortcuts = shortcuts(m.keyMap.ShortHelp(m.focus))
	if m.focus == FocusChat && m.messages.Selected < 0 {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}
