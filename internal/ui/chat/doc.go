// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the regnav terminal UI as a Bubble Tea model.

The Model owns one *session.Session and a set of passive components. Every
state change happens in Update on the Bubble Tea loop goroutine; the
streaming reader runs as a tea.Cmd and forwards decoded events with
tea.Program.Send, then returns a completion or error message.

# Panes

	+------------------------------------------------------------+
	| regnav  EU AI Act & GDPR      Confidence: 87% [####] [All] |
	+----------------------------------+-------------------------+
	| chat transcript                  | citation graph          |
	|                                  +-------------------------+
	| > question                       | reference cards         |
	+----------------------------------+-------------------------+
	| [OK] Ready                      tab focus  ctrl+f filter   |

Focus cycles chat, graph, references with tab and shift+tab. Narrow
terminals show only the focused pane.

# Keys

	enter       submit (chat), open reference (graph, references)
	up/down     select message, graph node or reference card
	s           restore the selected answer's sources (chat)
	/           filter references
	esc         close modal or filter, leave message selection
	y           copy reference text (detail view)
	ctrl+f      cycle regulation filter
	ctrl+e      export transcript
	ctrl+c      quit
*/
package chat
