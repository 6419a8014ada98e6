// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT - Title bar with filter badge and confidence meter
// =============================================================================

// MeterWidth is the number of cells in the confidence bar.
const MeterWidth = 10

// Header represents the title bar component.
type Header struct {
	Title    string
	Subtitle string
	Filter   model.Filter
	Width    int

	// confidence is shown only once a response has arrived.
	confidence    float64
	hasConfidence bool

	theme *styles.Theme
}

// NewHeader creates a new Header component with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title:    "regnav",
		Subtitle: "EU AI Act & GDPR",
		Filter:   model.FilterAll,
		Width:    80,
		theme:    theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetFilter updates the filter badge.
func (h *Header) SetFilter(f model.Filter) {
	h.Filter = f
}

// SetSnapshot shows the confidence of snap, or hides the meter for nil.
func (h *Header) SetSnapshot(snap *model.Snapshot) {
	if snap == nil {
		h.hasConfidence = false
		h.confidence = 0
		return
	}
	h.hasConfidence = true
	h.confidence = snap.Confidence
}

// ConfidenceText returns the unstyled meter, or "" before any response.
func (h *Header) ConfidenceText() string {
	if !h.hasConfidence {
		return ""
	}
	return fmt.Sprintf("Confidence: %.0f%% [%s]", h.confidence, styles.RenderMeter(MeterWidth, h.confidence))
}

// View renders the header as a single line.
func (h *Header) View() string {
	t := h.theme

	left := t.HeaderTitle.Render(h.Title)
	if h.Width >= 60 && h.Subtitle != "" {
		left += " " + t.HeaderSubtitle.Render(h.Subtitle)
	}

	right := t.FilterBadge.Render(h.Filter.String())
	if text := h.ConfidenceText(); text != "" {
		meter := lipgloss.NewStyle().
			Foreground(styles.ConfidenceColor(h.confidence)).
			Bold(true).
			Render(text)
		right = meter + " " + right
	}

	inner := h.Width - t.Header.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + lipgloss.NewStyle().Width(gap).Render("") + right

	return t.Header.Width(h.Width).MaxWidth(h.Width).Render(line)
}
