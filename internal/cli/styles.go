// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/regnav/internal/ui/styles"
)

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

var (
	// TitleStyle is used for headings
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Purple)

	// LabelStyle is used for reference labels ("GDPR Art. 35")
	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Cyan)

	// MutedStyle is used for secondary text
	MutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// PromptStyle is the REPL prompt
	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	// SuccessStyle is used for OK statuses
	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.SuccessHighContrast).
			Bold(true)

	// ErrorStyle is used for failures
	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.ErrorHighContrast).
			Bold(true)

	// WarningStyle is used for warnings
	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.WarningHighContrast)
)

// style applies s only when stdout is styled.
func style(s lipgloss.Style, text string, styled bool) string {
	if !styled {
		return text
	}
	return s.Render(text)
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// newMarkdownRenderer builds a glamour renderer for width. Nil on failure;
// callers then print raw text.
func newMarkdownRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// renderMarkdown renders content, or returns it unchanged if rendering
// is unavailable.
func renderMarkdown(r *glamour.TermRenderer, content string) string {
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}
