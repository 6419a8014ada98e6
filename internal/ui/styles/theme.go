// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeDark  = "dark"
	ModeLight = "light"
	ModeAuto  = "auto"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	FilterBadge    lipgloss.Style

	// ==========================================================================
	// PANE STYLES
	// ==========================================================================

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style
	PaneEmpty   lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	UserText        lipgloss.Style
	AssistantText   lipgloss.Style
	ErrorText       lipgloss.Style
	MessageSelected lipgloss.Style
	SourcesHint     lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// REFERENCE CARD STYLES
	// ==========================================================================

	Card         lipgloss.Style
	CardSelected lipgloss.Style
	CardLabel    lipgloss.Style
	CardTitle    lipgloss.Style
	CardExcerpt  lipgloss.Style
	FilterPrompt lipgloss.Style

	// ==========================================================================
	// DETAIL MODAL STYLES
	// ==========================================================================

	Modal        lipgloss.Style
	ModalHeading lipgloss.Style
	ModalTitle   lipgloss.Style
	ModalMeta    lipgloss.Style
	ModalHint    lipgloss.Style

	// ==========================================================================
	// GRAPH STYLES
	// ==========================================================================

	GraphEdge          lipgloss.Style
	GraphRetrieved     lipgloss.Style
	GraphCited         lipgloss.Style
	GraphSelected      lipgloss.Style
	GraphLabel         lipgloss.Style
	GraphLabelSelected lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// SPINNER AND STATISTICS STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	StatsLabel   lipgloss.Style
	StatsValue   lipgloss.Style

	// ==========================================================================
	// ACCESSIBILITY: Status indicator styles with shapes and high contrast
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
}

// NewTheme creates a new theme with all styles configured. mode is one of
// ModeDark, ModeLight or ModeAuto; anything else is treated as auto.
func NewTheme(mode string) *Theme {
	// Detect terminal capabilities
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// GlamourStyle names the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.FilterBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 1)

	// Panes
	t.Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.PaneFocused = t.Pane.
		BorderForeground(FocusRing)

	t.PaneTitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.PaneEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Messages
	t.UserLabel = lipgloss.NewStyle().
		Foreground(UserBubbleBorder).
		Bold(true)

	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(AssistantBubbleBorder).
		Bold(true)

	t.UserText = lipgloss.NewStyle().
		Foreground(UserBubbleFg)

	t.AssistantText = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		Bold(true)

	t.MessageSelected = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(FocusRing).
		PaddingLeft(1)

	t.SourcesHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Reference cards
	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Overlay).
		PaddingLeft(1)

	t.CardSelected = t.Card.
		BorderForeground(FocusRing).
		Background(SelectionBg)

	t.CardLabel = lipgloss.NewStyle().
		Bold(true)

	t.CardTitle = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.CardExcerpt = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.FilterPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Detail modal
	t.Modal = lipgloss.NewStyle().
		Background(Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.ModalHeading = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.ModalTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Italic(true)

	t.ModalMeta = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ModalHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Graph
	t.GraphEdge = lipgloss.NewStyle().
		Foreground(GraphEdge)

	t.GraphRetrieved = lipgloss.NewStyle().
		Foreground(NodeRetrieved).
		Bold(true)

	t.GraphCited = lipgloss.NewStyle().
		Foreground(NodeCited)

	t.GraphSelected = lipgloss.NewStyle().
		Foreground(NodeSelected).
		Bold(true)

	t.GraphLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.GraphLabelSelected = lipgloss.NewStyle().
		Foreground(NodeSelected).
		Bold(true).
		Underline(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Spinner and statistics
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.StatsLabel = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StatsValue = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	// Accessibility
	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)

	t.InfoStyle = lipgloss.NewStyle().
		Foreground(InfoHighContrast).
		Bold(true)
}

// PaneStyle returns the border style for a pane.
func (t *Theme) PaneStyle(focused bool) lipgloss.Style {
	if focused {
		return t.PaneFocused
	}
	return t.Pane
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns: panes stacked, chat only
	LayoutMedium                   // 60-100 columns: chat over a side column
	LayoutWide                     // >= 100 columns: chat beside graph and references
)
