// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/regnav/internal/backend"
	"github.com/jeranaias/regnav/internal/session"
)

// HealthTimeout bounds the startup health check.
const HealthTimeout = 5 * time.Second

// Backend is the part of *backend.Client the TUI uses.
type Backend interface {
	StreamChat(ctx context.Context, req backend.ChatRequest, handler backend.EventHandler) error
	CheckHealth(ctx context.Context) error
	BaseURL() string
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// streamCmd runs one turn. Each decoded record is forwarded with Send, in
// order, from the command goroutine; the returned message is delivered
// after all of them.
func (m *Model) streamCmd(turn session.Turn) tea.Cmd {
	client := m.backend
	program := m.program
	logger := m.logger

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelMgr.setCancelFunc(cancel)

	return func() tea.Msg {
		defer cancel()

		start := time.Now()
		err := client.StreamChat(ctx, turn.Request, func(ev backend.Event) {
			program.send(StreamEventMsg{MessageID: turn.ID, Event: ev})
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Debug("stream cancelled", zap.String("message_id", turn.ID))
			}
			return StreamErrorMsg{MessageID: turn.ID, Error: err}
		}
		logger.Debug("stream complete",
			zap.String("message_id", turn.ID),
			zap.Duration("elapsed", time.Since(start)),
		)
		return StreamCompleteMsg{MessageID: turn.ID}
	}
}

// checkHealthCmd probes the backend once.
func checkHealthCmd(ctx context.Context, client Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
		defer cancel()
		return HealthMsg{Error: client.CheckHealth(ctx)}
	}
}
