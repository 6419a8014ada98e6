// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: all truncation here counts display cells, not bytes. Article
// titles arrive in every EU language and must never be cut mid-rune.

// TruncateRunes truncates a string to a maximum number of runes.
// If the string is truncated, "..." is appended.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateWidth truncates a string to a maximum display width, appending
// "..." when there is room for it. The result never exceeds maxWidth cells.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadWidth right-pads s with spaces to exactly width cells, truncating
// first if it is wider.
func PadWidth(s string, width int) string {
	s = TruncateWidth(s, width)
	return runewidth.FillRight(s, width)
}

// StringWidth returns the display width of a string.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// WrapWidth soft-wraps text at word boundaries so no line exceeds width
// cells. Existing newlines are kept. Words wider than width are hard-split.
func WrapWidth(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var line strings.Builder
		lineWidth := 0
		for _, word := range words {
			for runewidth.StringWidth(word) > width {
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					// Single rune wider than the column; emit it alone.
					head = string([]rune(word)[:1])
				}
				if lineWidth > 0 {
					lines = append(lines, line.String())
					line.Reset()
					lineWidth = 0
				}
				lines = append(lines, head)
				word = word[len(head):]
			}
			if word == "" {
				continue
			}
			w := runewidth.StringWidth(word)
			if lineWidth > 0 && lineWidth+1+w > width {
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}
			if lineWidth > 0 {
				line.WriteByte(' ')
				lineWidth++
			}
			line.WriteString(word)
			lineWidth += w
		}
		lines = append(lines, line.String())
	}
	return lines
}

// Excerpt wraps text to width and keeps at most maxLines lines. When lines
// are dropped, the last kept line ends with an ellipsis.
func Excerpt(text string, width, maxLines int) []string {
	if maxLines <= 0 {
		return nil
	}
	lines := WrapWidth(strings.TrimSpace(text), width)
	if len(lines) <= maxLines {
		return lines
	}
	lines = lines[:maxLines]
	last := lines[maxLines-1]
	if runewidth.StringWidth(last)+3 > width {
		last = runewidth.Truncate(last, width-3, "")
	}
	lines[maxLines-1] = last + "..."
	return lines
}
