// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/util"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// frontmatter is marshalled with yaml so titles need no hand escaping.
type frontmatter struct {
	Title     string `yaml:"title"`
	Generator string `yaml:"generator"`
	Date      string `yaml:"date"`
	Exported  string `yaml:"exported"`
	Backend   string `yaml:"backend,omitempty"`
	Filter    string `yaml:"filter"`
	Messages  int    `yaml:"messages"`
	Answers   int    `yaml:"answers_with_sources"`
}

// Export converts a transcript to Markdown. Every assistant answer that
// carries a snapshot is followed by its confidence and numbered sources.
func (e *MarkdownExporter) Export(t Transcript) ([]byte, error) {
	conv := t.Conversation
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}
	exported := t.ExportedAt
	if exported.IsZero() {
		exported = time.Now()
	}

	title := conv.Title
	if title == "" {
		title = "regnav conversation"
	}

	fm, err := yaml.Marshal(frontmatter{
		Title:     title,
		Generator: "regnav",
		Date:      conv.CreatedAt.Format(time.RFC3339),
		Exported:  exported.Format(time.RFC3339),
		Backend:   t.BackendURL,
		Filter:    t.Filter.String(),
		Messages:  len(conv.Messages),
		Answers:   len(conv.AssistantAnswers()),
	})
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(fm)
	sb.WriteString("---\n\n")

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(title)))
	sb.WriteString("## Conversation\n\n")

	for i, msg := range conv.Messages {
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", msg.Role.DisplayName(), msg.Timestamp.Format("15:04:05")))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", msg.Role.DisplayName()))
		}

		sb.WriteString(strings.TrimSpace(msg.GetDisplayContent()))
		sb.WriteString("\n\n")

		if msg.Role == model.RoleAssistant && msg.Snapshot != nil {
			sb.WriteString(e.formatSources(msg.Snapshot))
		}

		if i < len(conv.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\n*Exported from regnav on %s*\n", exported.Format("January 2, 2006 at 3:04 PM")))
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// formatSources renders the confidence line and numbered source list.
func (e *MarkdownExporter) formatSources(snap *model.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Confidence:** %s\n\n", confidenceText(snap.Confidence)))

	if len(snap.References) == 0 {
		sb.WriteString("*No references retrieved.*\n\n")
		return sb.String()
	}

	sb.WriteString("**Sources**\n\n")
	for i, ref := range snap.References {
		sb.WriteString(fmt.Sprintf("%d. **%s**", i+1, ref.CardLabel()))
		if ref.Metadata.Title != "" {
			sb.WriteString(": " + escapeMarkdown(ref.Metadata.Title))
		}
		sb.WriteString(fmt.Sprintf(" (Score: %s, Source: %s)\n", ref.ScoreText(), ref.SourceLabel()))

		if e.options.IncludeExcerpts && strings.TrimSpace(ref.Text) != "" {
			excerpt := util.TruncateRunes(strings.Join(strings.Fields(ref.Text), " "), e.options.ExcerptRunes)
			sb.WriteString("   > " + excerpt + "\n")
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that break headings and list items.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}
