// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/jeranaias/regnav/internal/model"
)

func score(f float64) *float64 { return &f }

func sampleTranscript() Transcript {
	conv := model.NewConversation()
	conv.AddAssistantText("Hello! Ask me anything.")
	conv.AddUserMessage("When is a DPIA required?")

	a := conv.AddAssistantMessage()
	a.Attach(model.NewSnapshot(87, []model.Reference{
		{
			Text:     "Where a type of processing is likely to result in a high risk to the rights and freedoms of natural persons, the controller shall carry out an assessment.",
			Metadata: model.ReferenceMetadata{Title: "Data protection impact assessment", ArticleNumber: "35", Regulation: "GDPR"},
			Score:    score(0.912),
		},
		{
			Text:     "Deployers of high-risk AI systems shall use the information provided.",
			Metadata: model.ReferenceMetadata{Title: "Obligations of deployers", ArticleNumber: "26", Regulation: "AI Act", Source: "EUR-Lex"},
		},
	}, nil))
	a.AppendToken("A DPIA is required under Article 35 when processing is high risk.")
	a.FinalizeStream(nil)

	return Transcript{
		Conversation: conv,
		Filter:       model.FilterGDPR,
		BackendURL:   "http://localhost:8000",
		ExportedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestMarkdownExporter_IncludesSources(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, "### You")
	assert.Contains(t, md, "A DPIA is required under Article 35")
	assert.Contains(t, md, "**Confidence:** 87%")
	assert.Contains(t, md, "1. **GDPR Art. 35**: Data protection impact assessment (Score: 91.2%, Source: Official Text)")
	assert.Contains(t, md, "2. **AI Act Art. 26**: Obligations of deployers (Score: N/A, Source: EUR-Lex)")
	assert.Contains(t, md, "   > Where a type of processing")

	// The greeting carries no snapshot and gets no sources block.
	assert.Equal(t, 1, strings.Count(md, "**Sources**"))
}

func TestMarkdownExporter_Frontmatter(t *testing.T) {
	tr := sampleTranscript()
	tr.Conversation.Title = `Art. 35: "high risk" # check`

	out, err := NewMarkdownExporter(nil).Export(tr)
	require.NoError(t, err)

	parts := strings.SplitN(string(out), "---\n", 3)
	require.Len(t, parts, 3)

	var fm frontmatter
	require.NoError(t, yaml.Unmarshal([]byte(parts[1]), &fm))
	assert.Equal(t, tr.Conversation.Title, fm.Title)
	assert.Equal(t, "regnav", fm.Generator)
	assert.Equal(t, "GDPR", fm.Filter)
	assert.Equal(t, 3, fm.Messages)
	assert.Equal(t, 1, fm.Answers)
	assert.Equal(t, "2025-03-01T10:00:00Z", fm.Exported)
}

func TestMarkdownExporter_NoTimestampsNoExcerpts(t *testing.T) {
	out, err := NewMarkdownExporter(&Options{}).Export(sampleTranscript())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<sub>")
	assert.NotContains(t, string(out), "   > ")
}

func TestMarkdownExporter_Errors(t *testing.T) {
	_, err := NewMarkdownExporter(nil).Export(Transcript{})
	assert.Error(t, err)

	_, err = NewMarkdownExporter(nil).Export(Transcript{Conversation: &model.Conversation{}})
	assert.Error(t, err)
}

func TestJSONExporter_IncludesSnapshots(t *testing.T) {
	out, err := NewJSONExporter().Export(sampleTranscript())
	require.NoError(t, err)

	var doc struct {
		Filter   string `json:"filter"`
		Messages []struct {
			Role     string `json:"role"`
			Content  string `json:"content"`
			Snapshot *struct {
				Confidence float64           `json:"confidence"`
				Context    []model.Reference `json:"context"`
			} `json:"snapshot"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "GDPR", doc.Filter)
	require.Len(t, doc.Messages, 3)
	require.NotNil(t, doc.Messages[2].Snapshot)
	assert.Equal(t, 87.0, doc.Messages[2].Snapshot.Confidence)
	assert.Len(t, doc.Messages[2].Snapshot.Context, 2)
}

func TestJSONExporter_StreamingMessageContent(t *testing.T) {
	tr := sampleTranscript()
	live := tr.Conversation.AddAssistantMessage()
	live.AppendToken("partial")

	out, err := NewJSONExporter().Export(tr)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"content": "partial"`)
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	tr := sampleTranscript()

	path, err := ToFile(tr, ForPath("x.json", nil), filepath.Join(dir, "out.json"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestForPath(t *testing.T) {
	assert.IsType(t, &JSONExporter{}, ForPath("a.JSON", nil))
	assert.IsType(t, &MarkdownExporter{}, ForPath("a.md", nil))
	assert.IsType(t, &MarkdownExporter{}, ForPath("a", nil))
}

func TestDefaultFilename(t *testing.T) {
	tr := sampleTranscript()
	name := DefaultFilename(tr, ".md")
	assert.Equal(t, "regnav_When_is_a_DPIA_required-_20250301_100000.md", name)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b-c_d", sanitizeFilename("a/b:c d"))
	assert.Equal(t, "conversation", sanitizeFilename(""))
}
