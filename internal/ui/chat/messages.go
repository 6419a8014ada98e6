// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/regnav/internal/backend"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamEventMsg delivers one decoded record for the answer MessageID.
type StreamEventMsg struct {
	MessageID string
	Event     backend.Event
}

// StreamCompleteMsg signals that the stream for MessageID ended cleanly.
type StreamCompleteMsg struct {
	MessageID string
}

// StreamErrorMsg signals a transport or status failure for MessageID.
type StreamErrorMsg struct {
	MessageID string
	Error     error
}

// =============================================================================
// BACKEND MESSAGES
// =============================================================================

// HealthMsg reports the result of the startup health check.
type HealthMsg struct {
	Error error
}

// =============================================================================
// ACTION RESULTS
// =============================================================================

// ExportCompleteMsg reports the result of a transcript export.
type ExportCompleteMsg struct {
	Path  string
	Error error
}

// CopyCompleteMsg reports the result of a clipboard copy.
type CopyCompleteMsg struct {
	Error error
}
