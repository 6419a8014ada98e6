// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/regnav/internal/backend"
	"github.com/jeranaias/regnav/internal/session"
	"github.com/jeranaias/regnav/internal/ui/components"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.detail.IsOpen() {
			return m, m.detail.Update(msg)
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case StreamEventMsg:
		return m.handleStreamEvent(msg)

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case StreamErrorMsg:
		return m.handleStreamError(msg)

	case HealthMsg:
		return m.handleHealth(msg)

	case ExportCompleteMsg:
		if msg.Error != nil {
			m.status.SetError("Export failed: " + msg.Error.Error())
		} else {
			m.status.SetMessage("Exported to " + msg.Path)
		}
		return m, nil

	case CopyCompleteMsg:
		if msg.Error != nil {
			m.status.SetError("Copy failed: " + msg.Error.Error())
		} else {
			m.status.SetMessage("Reference text copied")
		}
		return m, nil

	case spinner.TickMsg:
		if !m.session.Streaming() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.status.SetMessage(m.spinner.View() + " Streaming...")
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// STREAM HANDLERS
// =============================================================================

func (m Model) handleStreamEvent(msg StreamEventMsg) (tea.Model, tea.Cmd) {
	if !m.session.Apply(msg.MessageID, msg.Event) {
		return m, nil
	}
	if msg.Event.Type == backend.EventError {
		m.logger.Warn("backend reported error", zap.String("message_id", msg.MessageID), zap.String("error", msg.Event.Content))
	}
	m.syncSession()
	return m, nil
}

func (m Model) handleStreamComplete(msg StreamCompleteMsg) (tea.Model, tea.Cmd) {
	m.session.Complete(msg.MessageID)
	m.cancelMgr.cancel()
	m.status.SetStatus(components.StatusReady)
	m.syncSession()
	return m, nil
}

func (m Model) handleStreamError(msg StreamErrorMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Error, context.Canceled) {
		// Quit path; the session is discarded anyway.
		m.session.Complete(msg.MessageID)
		m.syncSession()
		return m, nil
	}
	m.session.Fail(msg.MessageID, msg.Error)
	m.cancelMgr.cancel()
	m.status.SetError(connectionMessage(msg.Error))
	m.syncSession()
	return m, nil
}

func (m Model) handleHealth(msg HealthMsg) (tea.Model, tea.Cmd) {
	if m.session.Streaming() {
		return m, nil
	}
	if msg.Error != nil {
		m.logger.Warn("health check failed", zap.Error(msg.Error))
		m.status.SetStatus(components.StatusOffline)
		m.status.SetMessage("Backend offline: " + connectionMessage(msg.Error))
		return m, nil
	}
	m.status.SetStatus(components.StatusReady)
	return m, nil
}

// connectionMessage is the status bar text for a failed request.
func connectionMessage(err error) string {
	var ce *backend.ClientError
	if errors.As(err, &ce) {
		switch ce.Type {
		case backend.ErrTypeStatus:
			return fmt.Sprintf("%s (HTTP %d)", session.ConnectionErrorText, ce.StatusCode)
		case backend.ErrTypeTimeout:
			return session.ConnectionErrorText + " (timed out)"
		}
	}
	return session.ConnectionErrorText
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.layout()
	m.refreshViewport(false)
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keyMap

	if key.Matches(msg, k.Quit) {
		m.cancelMgr.cancel()
		return m, tea.Quit
	}

	// The detail modal captures all other keys.
	if m.detail.IsOpen() {
		return m.handleDetailKey(msg)
	}

	// So does the reference filter input.
	if m.refs.Filtering() {
		switch {
		case key.Matches(msg, k.Close):
			m.refs.ClearFilter()
		case key.Matches(msg, k.Submit):
			m.refs.StopFilter()
		default:
			return m, m.refs.Update(msg)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, k.NextPane):
		return m.setFocus(m.focus.next(1))
	case key.Matches(msg, k.PrevPane):
		return m.setFocus(m.focus.next(-1))
	case key.Matches(msg, k.CycleFilter):
		f := m.session.CycleFilter()
		m.header.SetFilter(f)
		m.status.SetMessage("Regulation filter: " + f.String())
		return m, nil
	case key.Matches(msg, k.Export):
		return m, m.exportCmd()
	}

	switch m.focus {
	case FocusGraph:
		return m.handleGraphKey(msg)
	case FocusReferences:
		return m.handleReferencesKey(msg)
	default:
		return m.handleChatKey(msg)
	}
}

func (m Model) setFocus(f Focus) (tea.Model, tea.Cmd) {
	m.focus = f
	if f != FocusChat {
		m.messages.ClearSelection()
	}
	m.syncFocus()
	m.layout()
	m.refreshViewport(false)
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Close):
		m.session.CloseDetail()
		m.syncSession()
		return m, nil
	case key.Matches(msg, m.keyMap.Copy):
		detail := m.detail
		return m, func() tea.Msg {
			return CopyCompleteMsg{Error: detail.Copy()}
		}
	}
	return m, m.detail.Update(msg)
}

// handleChatKey types into the input until a message is selected with
// up/down; while selected, s restores that answer's sources and esc
// returns to typing.
func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keyMap
	selecting := m.messages.Selected >= 0

	switch {
	case key.Matches(msg, k.Up):
		m.messages.MoveSelection(-1)
		m.syncFocus()
		m.refreshViewport(false)
		return m, nil
	case key.Matches(msg, k.Down):
		if !selecting {
			return m, nil
		}
		if m.messages.Selected == len(m.messages.Messages)-1 {
			m.messages.ClearSelection()
			m.syncFocus()
			m.refreshViewport(true)
			return m, nil
		}
		m.messages.MoveSelection(1)
		m.refreshViewport(false)
		return m, nil
	case key.Matches(msg, k.PageUp), key.Matches(msg, k.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if selecting {
		switch {
		case key.Matches(msg, k.Restore):
			return m.restoreSelected()
		case key.Matches(msg, k.Close):
			m.messages.ClearSelection()
			m.syncFocus()
			m.refreshViewport(true)
		}
		return m, nil
	}

	if key.Matches(msg, k.Submit) {
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) restoreSelected() (tea.Model, tea.Cmd) {
	sel := m.messages.SelectedMessage()
	if sel == nil || !m.session.RestoreHistory(sel.ID) {
		m.status.SetMessage("No sources for that message")
		return m, nil
	}
	m.status.SetMessage("Showing sources of the selected answer")
	m.syncSession()
	return m, nil
}

// submit sends the input as a new turn.
func (m Model) submit() (tea.Model, tea.Cmd) {
	turn, err := m.session.Submit(m.input.Value())
	switch {
	case errors.Is(err, session.ErrEmptyQuery):
		return m, nil
	case errors.Is(err, session.ErrStreamInFlight):
		m.status.SetMessage("Wait for the current answer to finish")
		return m, nil
	case err != nil:
		m.status.SetError(err.Error())
		return m, nil
	}

	m.input.Reset()
	m.status.SetStatus(components.StatusStreaming)
	m.syncSession()
	m.refreshViewport(true)

	if m.backend == nil {
		return m, func() tea.Msg {
			return StreamErrorMsg{MessageID: turn.ID, Error: &backend.ClientError{Type: backend.ErrTypeConnection, Message: "no backend configured"}}
		}
	}
	return m, tea.Batch(m.streamCmd(turn), m.spinner.Tick)
}

func (m Model) handleGraphKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "left":
		m.graph.Move(-1)
	case "down", "right":
		m.graph.Move(1)
	case "enter":
		nodeID := m.graph.Cursor()
		if nodeID == "" {
			return m, nil
		}
		match, ok := m.session.SelectNode(nodeID)
		if !ok {
			m.status.SetMessage("No retrieved reference for " + nodeID)
			return m, nil
		}
		m.refs.SelectIndex(match.Index)
		m.syncSession()
	}
	return m, nil
}

func (m Model) handleReferencesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keyMap
	switch {
	case key.Matches(msg, k.Up):
		m.refs.MoveCursor(-1)
	case key.Matches(msg, k.Down):
		m.refs.MoveCursor(1)
	case key.Matches(msg, k.Filter):
		return m, m.refs.StartFilter()
	case key.Matches(msg, k.Close):
		m.refs.ClearFilter()
	case key.Matches(msg, k.Submit):
		idx, ok := m.refs.Selected()
		if ok && m.session.SelectReference(idx) {
			m.syncSession()
		}
	}
	return m, nil
}
