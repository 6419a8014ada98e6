// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the state of one conversation with the assistant.
//
// A Session holds the ordered message list, the active retrieval snapshot
// that drives the graph and reference panes, the open detail view and the
// regulation filter. The TUI, the chat REPL and the ask command all drive
// the same type.
//
// # Lifecycle of a turn
//
//	turn, err := sess.Submit("Which systems are high-risk?")
//	// err is ErrStreamInFlight while another answer streams
//	client.StreamChat(ctx, turn.Request, func(ev backend.Event) {
//	    sess.Apply(turn.ID, ev)
//	})
//	sess.Complete(turn.ID) // or sess.Fail(turn.ID, err)
//
// Metadata events become the active snapshot immediately. Every answer
// keeps its own snapshot, and RestoreHistory points the panes back at an
// older one without copying it.
package session
