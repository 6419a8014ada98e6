// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/ui/styles"
	"github.com/jeranaias/regnav/internal/util"
)

// =============================================================================
// MESSAGE LIST COMPONENT - Chat transcript
// =============================================================================

// StreamingCursor is appended to an answer while tokens arrive.
const StreamingCursor = "▌"

// MessageList renders the chat transcript.
type MessageList struct {
	Messages []*model.Message
	Width    int

	// Selected is the index of the highlighted message, -1 for none.
	Selected int
	// ActiveID is the message whose snapshot drives the side panes.
	ActiveID string

	ShowTimestamps bool

	markdown *Markdown
	// rendered caches glamour output of finalized answers by message id.
	rendered map[string]string
	theme    *styles.Theme
}

// NewMessageList creates a new MessageList.
func NewMessageList(theme *styles.Theme) *MessageList {
	ml := &MessageList{
		Width:          80,
		Selected:       -1,
		ShowTimestamps: true,
		markdown:       NewMarkdown(theme.GlamourStyle()),
		rendered:       make(map[string]string),
		theme:          theme,
	}
	ml.markdown.SetWidth(ml.contentWidth())
	return ml
}

// SetWidth updates the width and drops cached renders.
func (ml *MessageList) SetWidth(width int) {
	if width == ml.Width {
		return
	}
	ml.Width = width
	ml.markdown.SetWidth(ml.contentWidth())
	ml.rendered = make(map[string]string)
}

// SetMessages replaces the transcript.
func (ml *MessageList) SetMessages(msgs []*model.Message) {
	ml.Messages = msgs
	if ml.Selected >= len(msgs) {
		ml.Selected = len(msgs) - 1
	}
}

// SelectedMessage returns the highlighted message, or nil.
func (ml *MessageList) SelectedMessage() *model.Message {
	if ml.Selected < 0 || ml.Selected >= len(ml.Messages) {
		return nil
	}
	return ml.Messages[ml.Selected]
}

// MoveSelection moves the highlight by delta, stopping at the ends. With
// no highlight it starts from the last message.
func (ml *MessageList) MoveSelection(delta int) {
	n := len(ml.Messages)
	if n == 0 {
		ml.Selected = -1
		return
	}
	if ml.Selected < 0 {
		ml.Selected = n - 1
		return
	}
	ml.Selected = clampIndex(ml.Selected+delta, n)
}

// ClearSelection removes the highlight.
func (ml *MessageList) ClearSelection() {
	ml.Selected = -1
}

// View renders every message separated by a blank line.
func (ml *MessageList) View() string {
	blocks := make([]string, 0, len(ml.Messages))
	for i, msg := range ml.Messages {
		blocks = append(blocks, ml.renderMessage(i, msg))
	}
	return strings.Join(blocks, "\n\n")
}

// LineOffset returns the first line of message i in View's output.
func (ml *MessageList) LineOffset(i int) int {
	line := 0
	for j := 0; j < i && j < len(ml.Messages); j++ {
		line += strings.Count(ml.renderMessage(j, ml.Messages[j]), "\n") + 2
	}
	return line
}

func (ml *MessageList) renderMessage(i int, msg *model.Message) string {
	t := ml.theme

	label := t.UserLabel.Render(msg.Role.DisplayName())
	if msg.Role == model.RoleAssistant {
		label = t.AssistantLabel.Render(msg.Role.DisplayName())
	}
	header := label
	if ml.ShowTimestamps {
		header += " " + t.StatsLabel.Render(msg.Timestamp.Format("15:04"))
	}
	if msg.HasSources() {
		n := len(msg.Snapshot.References)
		hint := fmt.Sprintf("[%d sources]", n)
		if msg.ID == ml.ActiveID {
			hint = fmt.Sprintf("[showing %d sources]", n)
		}
		header += " " + t.SourcesHint.Render(hint)
	}

	body := ml.renderBody(msg)

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(body)
	if !msg.IsStreaming && msg.TokenCount > 0 && ml.Width >= 60 {
		sb.WriteString("\n")
		sb.WriteString(t.StatsLabel.Render(msg.FormatStats()))
	}

	out := sb.String()
	if i == ml.Selected {
		return t.MessageSelected.Render(out)
	}
	return out
}

func (ml *MessageList) renderBody(msg *model.Message) string {
	t := ml.theme
	content := msg.GetDisplayContent()

	if msg.Role == model.RoleUser {
		return t.UserText.Render(strings.Join(util.WrapWidth(content, ml.contentWidth()), "\n"))
	}

	if msg.IsStreaming {
		if content == "" {
			return t.ThinkingText.Render("Searching the regulations...")
		}
		return t.AssistantText.Render(strings.Join(util.WrapWidth(content+StreamingCursor, ml.contentWidth()), "\n"))
	}

	if cached, ok := ml.rendered[msg.ID]; ok {
		return cached
	}
	out := ml.markdown.Render(content)
	ml.rendered[msg.ID] = out
	return out
}

func (ml *MessageList) contentWidth() int {
	return maxInt(ml.Width-4, 10)
}
