// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jeranaias/regnav/internal/backend"
	"github.com/jeranaias/regnav/internal/model"
)

// =============================================================================
// SCRIPT TYPES
// =============================================================================

// Metadata is the retrieval block an entry replays before its tokens.
type Metadata struct {
	Confidence float64           `json:"confidence"`
	Context    []model.Reference `json:"context"`
	GraphData  *model.Graph      `json:"graph_data,omitempty"`
}

// Entry is one scripted answer.
type Entry struct {
	// Match is a case-insensitive substring of the query. Empty matches
	// every query.
	Match string `json:"match"`

	// Regulation restricts the entry to one filter. Empty matches any.
	Regulation string `json:"regulation,omitempty"`

	// TokenDelayMS is the pause before each token.
	TokenDelayMS int `json:"token_delay_ms,omitempty"`

	Metadata *Metadata `json:"metadata,omitempty"`
	Tokens   []string  `json:"tokens,omitempty"`

	// Error is sent as a trailing error record.
	Error string `json:"error,omitempty"`

	// Status, when set, fails the request with this HTTP status before
	// anything is streamed.
	Status int `json:"status,omitempty"`
}

// TokenDelay returns the per-token pause.
func (e *Entry) TokenDelay() time.Duration {
	return time.Duration(e.TokenDelayMS) * time.Millisecond
}

// Answer joins the tokens.
func (e *Entry) Answer() string {
	return strings.Join(e.Tokens, "")
}

// Events returns the NDJSON records of the entry in stream order.
func (e *Entry) Events() []backend.Event {
	events := make([]backend.Event, 0, len(e.Tokens)+2)
	if e.Metadata != nil {
		events = append(events, backend.Event{
			Type:       backend.EventMetadata,
			Confidence: e.Metadata.Confidence,
			Context:    e.Metadata.Context,
			GraphData:  e.Metadata.GraphData,
		})
	}
	for _, tok := range e.Tokens {
		events = append(events, backend.Event{Type: backend.EventToken, Content: tok})
	}
	if e.Error != "" {
		events = append(events, backend.Event{Type: backend.EventError, Content: e.Error})
	}
	return events
}

// Script is an ordered list of entries.
type Script struct {
	Entries []Entry
}

// =============================================================================
// LOADING
// =============================================================================

// ErrEmptyScript is returned for a script with no entries.
var ErrEmptyScript = errors.New("script has no entries")

// LoadScript reads and validates a JSON script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes and validates a JSON script.
func ParseScript(data []byte) (*Script, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	s := &Script{Entries: entries}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks every entry.
func (s *Script) Validate() error {
	if len(s.Entries) == 0 {
		return ErrEmptyScript
	}
	for i, e := range s.Entries {
		if e.TokenDelayMS < 0 {
			return fmt.Errorf("entry %d: token_delay_ms must be >= 0", i)
		}
		if e.Status != 0 && (e.Status < 400 || e.Status > 599) {
			return fmt.Errorf("entry %d: status must be 4xx or 5xx, got %d", i, e.Status)
		}
		if e.Regulation != "" {
			if _, err := model.ParseFilter(e.Regulation); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
		}
		if e.Metadata == nil && len(e.Tokens) == 0 && e.Error == "" && e.Status == 0 {
			return fmt.Errorf("entry %d: needs metadata, tokens, error or status", i)
		}
	}
	return nil
}

// =============================================================================
// MATCHING
// =============================================================================

// Lookup returns the entry answering query under regulation (nil for all).
func (s *Script) Lookup(query string, regulation *string) (*Entry, bool) {
	fold := cases.Fold()
	q := fold.String(query)
	for i := range s.Entries {
		e := &s.Entries[i]
		if e.Regulation != "" && !sameRegulation(e.Regulation, regulation) {
			continue
		}
		if e.Match == "" || strings.Contains(q, fold.String(e.Match)) {
			return e, true
		}
	}
	return nil, false
}

// sameRegulation compares an entry regulation with a request filter.
func sameRegulation(entry string, req *string) bool {
	want, err := model.ParseFilter(entry)
	if err != nil {
		return false
	}
	got := model.FilterAll
	if req != nil {
		if f, err := model.ParseFilter(*req); err == nil {
			got = f
		}
	}
	return want == got
}
