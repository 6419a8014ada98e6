// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/regnav/internal/ui/styles"
	"github.com/jeranaias/regnav/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

// Rows taken by the header and status bar.
const chromeRows = 2

// Rows of the chat pane outside the transcript: title plus bordered input.
const chatChromeRows = 3

// paneRect is the outer size of one bordered pane.
type paneRect struct {
	width  int
	height int
}

// panes holds the outer sizes of the three panes for the current layout.
type panes struct {
	chat, graph, refs paneRect
}

// computePanes splits the body area for the layout mode.
func (m Model) computePanes() panes {
	bodyH := maxInt(m.height-chromeRows, 6)
	w := maxInt(m.width, 20)

	switch m.theme.GetLayoutMode() {
	case styles.LayoutWide:
		chatW := w * 3 / 5
		sideW := w - chatW
		graphH := bodyH / 2
		return panes{
			chat:  paneRect{chatW, bodyH},
			graph: paneRect{sideW, graphH},
			refs:  paneRect{sideW, bodyH - graphH},
		}
	case styles.LayoutMedium:
		chatH := bodyH * 3 / 5
		graphW := w / 2
		return panes{
			chat:  paneRect{w, chatH},
			graph: paneRect{graphW, bodyH - chatH},
			refs:  paneRect{w - graphW, bodyH - chatH},
		}
	default:
		full := paneRect{w, bodyH}
		return panes{chat: full, graph: full, refs: full}
	}
}

// innerSize is the content area of a pane.
func (m Model) innerSize(r paneRect) (int, int) {
	frame := m.theme.Pane
	return maxInt(r.width-frame.GetHorizontalFrameSize(), 4),
		maxInt(r.height-frame.GetVerticalFrameSize(), 1)
}

// layout sizes every component for the current terminal size.
func (m *Model) layout() {
	m.theme.SetSize(m.width, m.height)
	m.header.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.detail.SetSize(m.width, m.height)

	p := m.computePanes()

	chatW, chatH := m.innerSize(p.chat)
	m.messages.SetWidth(chatW)
	m.viewport.Width = chatW
	m.viewport.Height = maxInt(chatH-chatChromeRows, 1)
	m.input.Width = maxInt(chatW-lipgloss.Width(m.input.Prompt)-m.theme.InputContainer.GetHorizontalFrameSize()-1, 1)

	gw, gh := m.innerSize(p.graph)
	m.graph.SetSize(gw, gh)

	rw, rh := m.innerSize(p.refs)
	m.refs.SetSize(rw, rh)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	body := m.renderBody()
	if m.detail.IsOpen() {
		bodyH := maxInt(m.height-chromeRows, 1)
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.detail.View(),
			lipgloss.WithWhitespaceChars(" "))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		body,
		m.status.View(),
	)
}

// renderBody arranges the panes for the layout mode. Narrow terminals show
// only the focused pane.
func (m Model) renderBody() string {
	p := m.computePanes()

	switch m.theme.GetLayoutMode() {
	case styles.LayoutWide:
		side := lipgloss.JoinVertical(lipgloss.Left,
			m.renderPane(p.graph, m.focus == FocusGraph, m.graph.View()),
			m.renderPane(p.refs, m.focus == FocusReferences, m.refs.View()),
		)
		return lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderPane(p.chat, m.focus == FocusChat, m.chatView()),
			side,
		)
	case styles.LayoutMedium:
		side := lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderPane(p.graph, m.focus == FocusGraph, m.graph.View()),
			m.renderPane(p.refs, m.focus == FocusReferences, m.refs.View()),
		)
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderPane(p.chat, m.focus == FocusChat, m.chatView()),
			side,
		)
	}

	switch m.focus {
	case FocusGraph:
		return m.renderPane(p.graph, true, m.graph.View())
	case FocusReferences:
		return m.renderPane(p.refs, true, m.refs.View())
	default:
		return m.renderPane(p.chat, true, m.chatView())
	}
}

// renderPane draws content inside a bordered box of exactly r.
func (m Model) renderPane(r paneRect, focused bool, content string) string {
	style := m.theme.PaneStyle(focused)
	w := maxInt(r.width-style.GetHorizontalBorderSize(), 1)
	h := maxInt(r.height-style.GetVerticalBorderSize(), 1)
	inner := maxInt(h-style.GetVerticalPadding(), 1)
	return style.Width(w).Height(h).Render(clipLines(content, inner))
}

// chatView is the transcript with the input below it.
func (m Model) chatView() string {
	t := m.theme
	title := "Conversation"
	if conv := m.session.Conversation(); conv != nil && conv.Title != "" {
		title = conv.Title
	}
	chatW, _ := m.innerSize(m.computePanes().chat)

	return lipgloss.JoinVertical(lipgloss.Left,
		t.PaneTitle.Render(util.TruncateWidth(title, chatW)),
		m.viewport.View(),
		t.InputContainer.Width(chatW).Render(m.input.View()),
	)
}

// =============================================================================
// HELPERS
// =============================================================================

// clipLines keeps at most n lines of s.
func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
