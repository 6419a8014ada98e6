// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// Markdown wraps a glamour renderer sized to one pane. It falls back to
// the raw text when the renderer cannot be built or fails.
type Markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer for the given glamour standard style.
func NewMarkdown(style string) *Markdown {
	return &Markdown{style: style}
}

// SetWidth rebuilds the renderer when the wrap width changes.
func (md *Markdown) SetWidth(width int) {
	if width < 10 {
		width = 10
	}
	if width == md.width && md.renderer != nil {
		return
	}
	md.width = width
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(md.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		md.renderer = nil
		return
	}
	md.renderer = r
}

// Render renders content, trimming glamour's surrounding blank lines.
func (md *Markdown) Render(content string) string {
	if md.renderer == nil {
		return content
	}
	out, err := md.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// clampIndex keeps i within [0, n).
func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
