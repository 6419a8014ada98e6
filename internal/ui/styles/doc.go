// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the regnav TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. The theme mode from config ("dark", "light", "auto") is applied
once by NewTheme.

# Color System (colors.go)

  - Purple - assistant messages, modal borders
  - Cyan - focus ring, user highlights, filter badge
  - Emerald/Amber/Rose - confidence high/medium/low
  - RegulationGDPR, RegulationAIAct - reference card accents

Graph nodes use NodeRetrieved, NodeCited and NodeSelected so the two node
types stay distinct without relying on glyph shape alone.

# Meters (animations.go)

RenderMeter draws the ASCII confidence bar. Spinner frame sets feed the
bubbles spinner.

# Usage

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(width, height)
	box := theme.PaneStyle(focused).Width(40).Render(body)
*/
package styles
