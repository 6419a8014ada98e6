// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/regnav/internal/export"
)

// exportCmd writes the conversation as Markdown into the export dir. The
// file is rendered here, on the update goroutine, so no stream event can
// interleave with it.
func (m Model) exportCmd() tea.Cmd {
	now := time.Now()
	t := export.Transcript{
		Conversation: m.session.Conversation(),
		Filter:       m.session.Filter(),
		ExportedAt:   now,
	}
	if m.backend != nil {
		t.BackendURL = m.backend.BaseURL()
	}

	path := export.DefaultFilename(t, ".md")
	if m.exportDir != "" {
		path = filepath.Join(m.exportDir, path)
	}
	written, err := export.ToFile(t, export.ForPath(path, nil), path)
	if err != nil {
		m.logger.Warn("export failed", zap.Error(err))
	} else {
		m.logger.Info("conversation exported", zap.String("path", written))
	}
	return func() tea.Msg {
		return ExportCompleteMsg{Path: written, Error: err}
	}
}
