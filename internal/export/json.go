// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/regnav/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports the complete transcript, snapshots included.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

type jsonDocument struct {
	Generator  string           `json:"generator"`
	ExportedAt time.Time        `json:"exported_at"`
	Backend    string           `json:"backend,omitempty"`
	Filter     model.Filter     `json:"filter"`
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	CreatedAt  time.Time        `json:"created_at"`
	Messages   []*model.Message `json:"messages"`
}

// Export converts a transcript to indented JSON.
func (e *JSONExporter) Export(t Transcript) ([]byte, error) {
	conv := t.Conversation
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	exported := t.ExportedAt
	if exported.IsZero() {
		exported = time.Now()
	}

	// Streaming messages keep their text in a private buffer; export what
	// the user currently sees.
	msgs := make([]*model.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		if m.IsStreaming {
			cp := model.NewMessage(m.Role, m.GetDisplayContent())
			cp.ID, cp.Timestamp, cp.Snapshot = m.ID, m.Timestamp, m.Snapshot
			m = cp
		}
		msgs = append(msgs, m)
	}

	return json.MarshalIndent(jsonDocument{
		Generator:  "regnav",
		ExportedAt: exported,
		Backend:    t.BackendURL,
		Filter:     t.Filter,
		ID:         conv.ID,
		Title:      conv.Title,
		CreatedAt:  conv.CreatedAt,
		Messages:   msgs,
	}, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
