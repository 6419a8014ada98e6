// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Transcript is the input to every exporter.
type Transcript struct {
	Conversation *model.Conversation
	// Filter in effect when the export was taken.
	Filter model.Filter
	// BackendURL the answers came from.
	BackendURL string
	// ExportedAt defaults to time.Now().
	ExportedAt time.Time
}

// Exporter defines the interface for conversation exporters.
type Exporter interface {
	// Export renders the transcript in the target format.
	Export(t Transcript) ([]byte, error)

	// FileExtension returns the file extension (".md", ".json").
	FileExtension() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool

	// IncludeExcerpts quotes the start of each source's text.
	IncludeExcerpts bool

	// ExcerptRunes bounds each quoted excerpt.
	ExcerptRunes int
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeTimestamps: true,
		IncludeExcerpts:   true,
		ExcerptRunes:      240,
	}
}

// ForPath picks an exporter from the file extension. Anything other than
// .json gets Markdown.
func ForPath(path string, opts *Options) Exporter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONExporter()
	}
	return NewMarkdownExporter(opts)
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile renders t with exporter and writes it atomically to path with
// 0600 permissions. An empty path generates a name in the working
// directory. Returns the written path.
func ToFile(t Transcript, exporter Exporter, path string) (string, error) {
	if t.Conversation == nil {
		return "", fmt.Errorf("conversation is nil")
	}
	if t.ExportedAt.IsZero() {
		t.ExportedAt = time.Now()
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if path == "" {
		path = DefaultFilename(t, exporter.FileExtension())
	}
	if err := util.AtomicWriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// DefaultFilename builds "regnav_<title>_<timestamp><ext>".
func DefaultFilename(t Transcript, ext string) string {
	when := t.ExportedAt
	if when.IsZero() {
		when = time.Now()
	}
	title := "conversation"
	if t.Conversation != nil && t.Conversation.Title != "" {
		title = t.Conversation.Title
	}
	return fmt.Sprintf("regnav_%s_%s%s", sanitizeFilename(title), when.Format("20060102_150405"), ext)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	s = util.TruncateRunes(s, 50)

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := make([]rune, 0, len(s))
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "conversation"
	}
	return string(result)
}

// confidenceText formats a 0-100 confidence score.
func confidenceText(c float64) string {
	return fmt.Sprintf("%.0f%%", c)
}
