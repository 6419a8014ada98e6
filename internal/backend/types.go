// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"github.com/jeranaias/regnav/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the body of POST /api/chat and /api/chat/stream.
// Regulation is nil for "All" and marshals as JSON null.
type ChatRequest struct {
	Query      string  `json:"query"`
	Regulation *string `json:"regulation"`
}

// NewChatRequest builds a request for query under filter.
func NewChatRequest(query string, filter model.Filter) ChatRequest {
	return ChatRequest{Query: query, Regulation: filter.Regulation()}
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventType is the discriminator of one NDJSON stream record.
type EventType string

const (
	EventMetadata EventType = "metadata"
	EventToken    EventType = "token"
	EventError    EventType = "error"
)

// Event is one decoded stream record. Only the fields belonging to Type
// are meaningful.
type Event struct {
	Type EventType `json:"type"`

	// token, error
	Content string `json:"content,omitempty"`

	// metadata
	Confidence float64           `json:"confidence,omitempty"`
	Context    []model.Reference `json:"context,omitempty"`
	GraphData  *model.Graph      `json:"graph_data,omitempty"`
}

// Snapshot builds the immutable snapshot carried by a metadata event.
func (e Event) Snapshot() *model.Snapshot {
	return model.NewSnapshot(e.Confidence, e.Context, e.GraphData)
}

// EventHandler receives events in stream order. It is called synchronously
// on the reading goroutine.
type EventHandler func(Event)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the body of POST /api/chat.
type ChatResponse struct {
	Answer     string            `json:"answer"`
	Confidence float64           `json:"confidence"`
	Context    []model.Reference `json:"context"`
	GraphData  *model.Graph      `json:"graph_data,omitempty"`
}

// Snapshot returns the retrieval metadata of the response.
func (r *ChatResponse) Snapshot() *model.Snapshot {
	return model.NewSnapshot(r.Confidence, r.Context, r.GraphData)
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// errorBody is the FastAPI-style error payload some backends return.
type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}
