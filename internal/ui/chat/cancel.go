// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// CANCEL FUNCTION MANAGEMENT (THREAD-SAFE)
// =============================================================================

// cancelManager holds the cancel function of the in-flight stream. It is
// shared by pointer so Bubble Tea's model copies see the same state.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// setCancelFunc stores a new cancel function, cancelling any previous one.
func (cm *cancelManager) setCancelFunc(fn context.CancelFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
	}
	cm.cancelFunc = fn
}

// cancel invokes the stored cancel function and clears it. Safe to call
// multiple times.
func (cm *cancelManager) cancel() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}

// =============================================================================
// PROGRAM REFERENCE
// =============================================================================

// Sender is the part of *tea.Program the stream goroutine needs.
type Sender interface {
	Send(msg tea.Msg)
}

// programRef is set once the program exists. Events arriving before that
// are dropped.
type programRef struct {
	mu sync.Mutex
	p  Sender
}

func (r *programRef) set(p Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
