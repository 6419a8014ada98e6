// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"time"
)

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// LineSpinner - Simple line rotation, shown while an answer streams.
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// =============================================================================
// METERS
// =============================================================================

// Meter characters for the confidence bar.
var (
	MeterFull    = "#"
	MeterEmpty   = "-"
	MeterPartial = []string{".", ":", "+"}
)

// RenderMeter creates a bar of exactly width cells.
// percent is clamped to 0-100.
func RenderMeter(width int, percent float64) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := float64(width) * percent / 100
	full := int(filled)
	partial := int((filled - float64(full)) * float64(len(MeterPartial)+1))

	var sb strings.Builder
	sb.Grow(width)

	for i := 0; i < full && i < width; i++ {
		sb.WriteString(MeterFull)
	}
	if full < width && partial > 0 {
		sb.WriteString(MeterPartial[partial-1])
		full++
	}
	for i := full; i < width; i++ {
		sb.WriteString(MeterEmpty)
	}
	return sb.String()
}
