// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/ui/styles"
	"github.com/jeranaias/regnav/internal/util"
)

// =============================================================================
// REFERENCE LIST COMPONENT - Retrieved reference cards
// =============================================================================

// EmptyReferencesText is shown when the active snapshot has no references.
const EmptyReferencesText = "No references retrieved yet."

// ExcerptLines bounds the excerpt shown on each card.
const ExcerptLines = 4

// ReferenceList renders the active references as selectable cards.
type ReferenceList struct {
	refs []model.Reference
	// visible holds indices into refs that pass the filter.
	visible []int
	// cursor indexes visible.
	cursor int
	offset int

	query     string
	filtering bool
	input     textinput.Model

	Width   int
	Height  int
	Focused bool
	theme   *styles.Theme
}

// NewReferenceList creates an empty reference list.
func NewReferenceList(theme *styles.Theme) *ReferenceList {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter references"
	ti.CharLimit = 100
	ti.PromptStyle = theme.FilterPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder

	return &ReferenceList{
		input:  ti,
		Width:  40,
		Height: 20,
		theme:  theme,
	}
}

// SetSize updates the pane dimensions.
func (rl *ReferenceList) SetSize(width, height int) {
	rl.Width = width
	rl.Height = height
	rl.input.Width = maxInt(width-4, 5)
}

// SetReferences replaces the cards. The filter text is kept and reapplied.
func (rl *ReferenceList) SetReferences(refs []model.Reference) {
	rl.refs = refs
	rl.cursor = 0
	rl.offset = 0
	rl.applyFilter()
}

// Len returns the number of references before filtering.
func (rl *ReferenceList) Len() int {
	return len(rl.refs)
}

// Visible returns the indices of references that pass the filter.
func (rl *ReferenceList) Visible() []int {
	return rl.visible
}

// Selected returns the index, into the unfiltered references, of the card
// under the cursor.
func (rl *ReferenceList) Selected() (int, bool) {
	if len(rl.visible) == 0 {
		return 0, false
	}
	return rl.visible[rl.cursor], true
}

// MoveCursor moves the card cursor by delta, stopping at the ends.
func (rl *ReferenceList) MoveCursor(delta int) {
	rl.cursor = clampIndex(rl.cursor+delta, len(rl.visible))
}

// SelectIndex moves the cursor to reference i, clearing the filter when it
// hides that reference.
func (rl *ReferenceList) SelectIndex(i int) {
	if i < 0 || i >= len(rl.refs) {
		return
	}
	for pos, idx := range rl.visible {
		if idx == i {
			rl.cursor = pos
			return
		}
	}
	rl.ClearFilter()
	rl.cursor = clampIndex(i, len(rl.visible))
}

// =============================================================================
// FILTER
// =============================================================================

// Filtering reports whether the filter input has focus.
func (rl *ReferenceList) Filtering() bool {
	return rl.filtering
}

// Query returns the current filter text.
func (rl *ReferenceList) Query() string {
	return rl.query
}

// StartFilter focuses the filter input.
func (rl *ReferenceList) StartFilter() tea.Cmd {
	rl.filtering = true
	rl.input.SetValue(rl.query)
	rl.input.CursorEnd()
	return rl.input.Focus()
}

// StopFilter leaves the filter input and keeps the query applied.
func (rl *ReferenceList) StopFilter() {
	rl.filtering = false
	rl.input.Blur()
}

// ClearFilter drops the query and shows every reference.
func (rl *ReferenceList) ClearFilter() {
	rl.StopFilter()
	rl.SetQuery("")
}

// SetQuery applies a filter query.
func (rl *ReferenceList) SetQuery(q string) {
	rl.query = q
	rl.input.SetValue(q)
	rl.applyFilter()
}

// Update feeds key messages to the filter input while it has focus.
func (rl *ReferenceList) Update(msg tea.Msg) tea.Cmd {
	if !rl.filtering {
		return nil
	}
	var cmd tea.Cmd
	rl.input, cmd = rl.input.Update(msg)
	if v := rl.input.Value(); v != rl.query {
		rl.query = v
		rl.applyFilter()
	}
	return cmd
}

func (rl *ReferenceList) applyFilter() {
	visible := make([]int, 0, len(rl.refs))
	for i, ref := range rl.refs {
		if MatchesQuery(ref, rl.query) {
			visible = append(visible, i)
		}
	}
	rl.visible = visible
	rl.cursor = clampIndex(rl.cursor, len(rl.visible))
	rl.offset = 0
}

// foldText case-folds s after NFC normalisation so composed and decomposed
// accents compare equal.
func foldText(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// MatchesQuery reports whether ref passes a filter query.
func MatchesQuery(ref model.Reference, query string) bool {
	needle := foldText(strings.TrimSpace(query))
	return needle == "" || strings.Contains(referenceHaystack(ref), needle)
}

func referenceHaystack(ref model.Reference) string {
	return foldText(strings.Join([]string{
		ref.Metadata.Regulation,
		ref.Metadata.ArticleNumber,
		ref.CardLabel(),
		ref.Metadata.Title,
		ref.Text,
	}, "\n"))
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the pane contents (without the pane border).
func (rl *ReferenceList) View() string {
	t := rl.theme
	width := maxInt(rl.Width, 10)

	title := fmt.Sprintf("References (%d)", len(rl.refs))
	if rl.query != "" {
		title = fmt.Sprintf("References (%d of %d)", len(rl.visible), len(rl.refs))
	}
	lines := []string{t.PaneTitle.Render(title)}

	if rl.filtering || rl.query != "" {
		if rl.filtering {
			lines = append(lines, rl.input.View())
		} else {
			lines = append(lines, t.FilterPrompt.Render("/")+t.CardExcerpt.Render(util.TruncateWidth(rl.query, width-1)))
		}
	}

	if len(rl.refs) == 0 {
		lines = append(lines, t.PaneEmpty.Render(EmptyReferencesText))
		return strings.Join(lines, "\n")
	}
	if len(rl.visible) == 0 {
		lines = append(lines, t.PaneEmpty.Render("No references match the filter."))
		return strings.Join(lines, "\n")
	}

	budget := rl.Height - len(lines)
	cards := make([]string, len(rl.visible))
	for pos, idx := range rl.visible {
		cards[pos] = rl.renderCard(idx, pos == rl.cursor, width)
	}
	rl.scrollTo(cards, budget)

	used := 0
	for pos := rl.offset; pos < len(cards); pos++ {
		h := lipgloss.Height(cards[pos])
		if used > 0 && used+h > budget {
			break
		}
		lines = append(lines, cards[pos])
		used += h
	}
	return strings.Join(lines, "\n")
}

// scrollTo adjusts the offset so the cursor card is on screen.
func (rl *ReferenceList) scrollTo(cards []string, budget int) {
	if rl.cursor < rl.offset {
		rl.offset = rl.cursor
		return
	}
	for rl.offset < rl.cursor {
		used := 0
		for pos := rl.offset; pos <= rl.cursor; pos++ {
			used += lipgloss.Height(cards[pos])
		}
		if used <= budget {
			return
		}
		rl.offset++
	}
}

func (rl *ReferenceList) renderCard(idx int, selected bool, width int) string {
	t := rl.theme
	ref := rl.refs[idx]
	inner := maxInt(width-2, 8)

	label := t.CardLabel.
		Foreground(styles.RegulationColor(ref.Metadata.Regulation)).
		Render(util.TruncateWidth(fmt.Sprintf("%d. %s", idx+1, ref.CardLabel()), inner))

	lines := []string{label}
	if ref.Metadata.Title != "" {
		lines = append(lines, t.CardTitle.Render(util.TruncateWidth(ref.Metadata.Title, inner)))
	}
	for _, l := range util.Excerpt(ref.Text, inner, ExcerptLines) {
		lines = append(lines, t.CardExcerpt.Render(l))
	}

	style := t.Card
	if selected && rl.Focused {
		style = t.CardSelected
	}
	return style.Render(strings.Join(lines, "\n"))
}
