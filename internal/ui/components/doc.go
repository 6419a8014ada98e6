// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual UI components for the regnav TUI.

Components are passive renderers. They hold only presentation state (width,
scroll offset, cursor, filter text) and are fed the session's active
snapshot by the chat model on every update.

# Components

  - Header: brand, regulation filter badge and the confidence meter
  - MessageList: chat transcript with streaming cursor and source hints
  - ReferenceList: reference cards with a "/" text filter
  - DetailView: modal for one reference, scrollable, glamour-rendered
  - GraphView: rasterised citation graph with a node cursor
  - StatusBar: connection state, transient messages and shortcuts

# Usage

	theme := styles.NewTheme(styles.ModeAuto)
	header := components.NewHeader(theme)
	header.SetSnapshot(sess.Active())
	view := header.View()
*/
package components
