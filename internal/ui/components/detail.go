// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/ui/styles"
)

// =============================================================================
// DETAIL VIEW COMPONENT - Modal for one reference
// =============================================================================

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// DetailView shows one reference in full. The body scrolls.
type DetailView struct {
	ref    model.Reference
	nodeID string
	open   bool

	viewport viewport.Model
	markdown *Markdown

	Width  int
	Height int
	theme  *styles.Theme
}

// NewDetailView creates a closed detail view.
func NewDetailView(theme *styles.Theme) *DetailView {
	vp := viewport.New(60, 10)
	vp.Style = lipgloss.NewStyle()
	return &DetailView{
		viewport: vp,
		markdown: NewMarkdown(theme.GlamourStyle()),
		Width:    60,
		Height:   20,
		theme:    theme,
	}
}

// Open shows ref. nodeID is the graph node it was reached from, if any.
func (d *DetailView) Open(ref model.Reference, nodeID string) {
	d.ref = ref
	d.nodeID = nodeID
	d.open = true
	d.layout()
	d.viewport.GotoTop()
}

// Close hides the modal.
func (d *DetailView) Close() {
	d.open = false
}

// IsOpen reports whether the modal is visible.
func (d *DetailView) IsOpen() bool {
	return d.open
}

// Reference returns the reference on display.
func (d *DetailView) Reference() model.Reference {
	return d.ref
}

// SetSize sizes the modal from the terminal dimensions.
func (d *DetailView) SetSize(termWidth, termHeight int) {
	d.Width = minInt(maxInt(termWidth*3/4, 30), termWidth)
	d.Height = minInt(maxInt(termHeight*3/4, 10), termHeight)
	d.layout()
}

// Copy writes the full reference text to the system clipboard.
func (d *DetailView) Copy() error {
	return writeClipboard(d.ref.Text)
}

// Update scrolls the body.
func (d *DetailView) Update(msg tea.Msg) tea.Cmd {
	if !d.open {
		return nil
	}
	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return cmd
}

// layout recomputes the body viewport.
func (d *DetailView) layout() {
	frame := d.theme.Modal.GetHorizontalFrameSize()
	inner := maxInt(d.Width-frame, 10)
	// heading, title, blank, blank, score, source, hint
	chrome := 7 + d.theme.Modal.GetVerticalFrameSize()

	d.viewport.Width = inner
	d.viewport.Height = maxInt(d.Height-chrome, 3)
	d.markdown.SetWidth(inner)
	if d.open {
		d.viewport.SetContent(d.markdown.Render(d.ref.Text))
	}
}

// View renders the modal box.
func (d *DetailView) View() string {
	if !d.open {
		return ""
	}
	t := d.theme

	lines := []string{
		t.ModalHeading.Render(d.ref.Heading()),
		t.ModalTitle.Render(d.ref.Metadata.Title),
		"",
		d.viewport.View(),
		"",
		t.ModalMeta.Render("Score: " + d.ref.ScoreText()),
		t.ModalMeta.Render("Source: " + d.ref.SourceLabel()),
	}

	hint := "esc close  y copy  up/down scroll"
	if d.viewport.TotalLineCount() > d.viewport.Height {
		hint += fmt.Sprintf("  %d%%", int(d.viewport.ScrollPercent()*100))
	}
	lines = append(lines, t.ModalHint.Render(hint))

	return t.Modal.Width(d.Width - t.Modal.GetHorizontalBorderSize()).Render(strings.Join(lines, "\n"))
}
