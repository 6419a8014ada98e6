// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/regnav/internal/ui/components"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the TUI.
type KeyMap struct {
	Submit      key.Binding
	NextPane    key.Binding
	PrevPane    key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Restore     key.Binding
	Filter      key.Binding
	Close       key.Binding
	Copy        key.Binding
	CycleFilter key.Binding
	Export      key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit/open"),
		),
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus"),
		),
		PrevPane: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "focus back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "select"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "select"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Restore: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sources"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter refs"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "regulation"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown for a pane in the status bar.
func (k KeyMap) ShortHelp(f Focus) []key.Binding {
	switch f {
	case FocusGraph:
		return []key.Binding{k.NextPane, k.Up, k.Submit, k.CycleFilter, k.Export, k.Quit}
	case FocusReferences:
		return []key.Binding{k.NextPane, k.Filter, k.Submit, k.CycleFilter, k.Export, k.Quit}
	default:
		return []key.Binding{k.NextPane, k.Up, k.Restore, k.CycleFilter, k.Export, k.Quit}
	}
}

// shortcuts converts bindings to status bar hints.
func shortcuts(bindings []key.Binding) []components.Shortcut {
	out := make([]components.Shortcut, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, components.Shortcut{Key: h.Key, Desc: h.Desc})
	}
	return out
}
