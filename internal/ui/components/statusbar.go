// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/regnav/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusChecking
	StatusStreaming
	StatusOffline
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusChecking:
		return "Connecting..."
	case StatusStreaming:
		return "Streaming..."
	case StatusOffline:
		return "Backend offline"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape indicator so state is readable without color.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusChecking, StatusStreaming:
		return "~"
	case StatusOffline:
		return styles.StatusIndicators.Warning
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// Shortcut is one key hint shown on the right of the bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar represents the bottom status bar.
type StatusBar struct {
	Status    Status
	Message   string // transient message, shown instead of the status text
	Focus     string // focused pane name
	Backend   string
	Width     int
	Shortcuts []Shortcut
	theme     *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status: StatusChecking,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the status and clears any transient message.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
	s.Message = ""
}

// SetMessage shows a transient message next to the status icon.
func (s *StatusBar) SetMessage(msg string) {
	s.Message = msg
}

// SetError switches to the error state with msg.
func (s *StatusBar) SetError(msg string) {
	s.Status = StatusError
	s.Message = msg
}

// View renders the status bar.
func (s *StatusBar) View() string {
	t := s.theme

	text := s.Message
	if text == "" {
		text = s.Status.String()
	}
	left := s.statusStyle().Render(s.Status.Icon()) + " " + text
	if s.Focus != "" && s.Width >= 60 {
		left += t.ShortcutDesc.Render(" | " + s.Focus)
	}
	if s.Backend != "" && s.Width >= 100 {
		left += t.ShortcutDesc.Render(" | " + s.Backend)
	}

	inner := s.Width - t.StatusBar.GetHorizontalFrameSize()
	right := s.renderShortcuts(inner - lipgloss.Width(left) - 2)

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right

	return t.StatusBar.Width(s.Width).MaxWidth(s.Width).Render(line)
}

// renderShortcuts fits as many shortcuts as budget allows.
func (s *StatusBar) renderShortcuts(budget int) string {
	t := s.theme
	var parts []string
	used := 0
	for _, sc := range s.Shortcuts {
		part := t.ShortcutKey.Render(sc.Key) + " " + t.ShortcutDesc.Render(sc.Desc)
		w := lipgloss.Width(part)
		if len(parts) > 0 {
			w += 2
		}
		if used+w > budget {
			break
		}
		parts = append(parts, part)
		used += w
	}
	return strings.Join(parts, "  ")
}

func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return s.theme.SuccessStyle
	case StatusOffline:
		return s.theme.WarningStyle
	case StatusError:
		return s.theme.ErrorStyle
	default:
		return s.theme.InfoStyle
	}
}
