// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_StreamingLifecycle(t *testing.T) {
	msg := NewAssistantMessage()
	msg.AppendToken("Article ")
	msg.AppendToken("5")

	if got := msg.GetDisplayContent(); got != "Article 5" {
		t.Fatalf("GetDisplayContent() = %q, want %q", got, "Article 5")
	}

	msg.FinalizeStream(nil)
	if msg.IsStreaming {
		t.Fatal("message still streaming after FinalizeStream")
	}

	msg.AppendToken(" late")
	msg.Attach(NewSnapshot(10, nil, nil))
	if msg.Content != "Article 5" {
		t.Errorf("finalized message mutated: %q", msg.Content)
	}
	if msg.Snapshot != nil {
		t.Error("finalized message accepted a snapshot")
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("Datenschutz-Grundverordnung")
	if got := msg.Preview(10); got != "Datensc..." {
		t.Errorf("Preview(10) = %q", got)
	}
	if got := msg.Preview(100); got != msg.Content {
		t.Errorf("Preview(100) = %q", got)
	}
}

// =============================================================================
// REFERENCE TESTS
// =============================================================================

func TestReference_Formatting(t *testing.T) {
	ref := Reference{
		Text: "Personal data shall be processed lawfully.",
		Metadata: ReferenceMetadata{
			Title:         "Principles relating to processing",
			ArticleNumber: "5",
			Regulation:    "GDPR",
		},
		Score: floatPtr(0.875),
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"card label", ref.CardLabel(), "GDPR Art. 5"},
		{"heading", ref.Heading(), "GDPR - Article 5"},
		{"constructed id", ref.ConstructedID(), "GDPR_5"},
		{"score", ref.ScoreText(), "87.5%"},
		{"default source", ref.SourceLabel(), "Official Text"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %q, want %q", tc.got, tc.want)
			}
		})
	}
}

func TestReference_ScoreNA(t *testing.T) {
	if got := (Reference{}).ScoreText(); got != "N/A" {
		t.Errorf("nil score = %q, want N/A", got)
	}
	if got := (Reference{Score: floatPtr(0)}).ScoreText(); got != "N/A" {
		t.Errorf("zero score = %q, want N/A", got)
	}
}

func TestReference_WireNames(t *testing.T) {
	raw := `{"text":"t","metadata":{"title":"x","article_number":"6","regulation":"AI Act","source":"EUR-Lex"},"score":0.5,"node_id":"AI Act_6"}`
	var ref Reference
	if err := json.Unmarshal([]byte(raw), &ref); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ref.Metadata.ArticleNumber != "6" || ref.NodeID != "AI Act_6" || ref.SourceLabel() != "EUR-Lex" {
		t.Errorf("unexpected decode: %+v", ref)
	}
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestNewSnapshot_CopiesInputs(t *testing.T) {
	refs := []Reference{{Text: "a"}}
	g := &Graph{Nodes: []Node{{ID: "n1"}}}

	snap := NewSnapshot(80, refs, g)
	refs[0].Text = "changed"
	g.Nodes[0].ID = "changed"

	if snap.References[0].Text != "a" {
		t.Error("snapshot references alias caller slice")
	}
	if snap.Graph.Nodes[0].ID != "n1" {
		t.Error("snapshot graph aliases caller slice")
	}
}

func TestSnapshot_ReferenceBounds(t *testing.T) {
	snap := NewSnapshot(0, []Reference{{Text: "a"}}, nil)
	if _, ok := snap.Reference(1); ok {
		t.Error("Reference(1) should be out of range")
	}
	var nilSnap *Snapshot
	if _, ok := nilSnap.Reference(0); ok {
		t.Error("nil snapshot should have no references")
	}
}

// =============================================================================
// FILTER TESTS
// =============================================================================

func TestFilter_Cycle(t *testing.T) {
	f := FilterAll
	want := []Filter{FilterGDPR, FilterAIAct, FilterAll}
	for _, w := range want {
		f = f.Next()
		if f != w {
			t.Fatalf("Next() = %q, want %q", f, w)
		}
	}
}

func TestFilter_Regulation(t *testing.T) {
	if FilterAll.Regulation() != nil {
		t.Error("All should map to null")
	}
	if r := FilterAIAct.Regulation(); r == nil || *r != "AI Act" {
		t.Errorf("AI Act regulation = %v", r)
	}
}

func TestParseFilter(t *testing.T) {
	tests := map[string]Filter{
		"":       FilterAll,
		"all":    FilterAll,
		"GDPR":   FilterGDPR,
		"ai act": FilterAIAct,
		"ai-act": FilterAIAct,
	}
	for in, want := range tests {
		got, err := ParseFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseFilter(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFilter("CCPA"); err == nil {
		t.Error("ParseFilter(CCPA) should fail")
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AssistantAnswers(t *testing.T) {
	conv := NewConversation()
	conv.AddAssistantText("greeting")
	conv.AddUserMessage("q1")
	a1 := conv.AddAssistantMessage()
	a1.Attach(NewSnapshot(70, nil, nil))
	a1.FinalizeStream(nil)
	conv.AddUserMessage("q2")
	conv.AddAssistantMessage().FinalizeStream(nil)

	answers := conv.AssistantAnswers()
	if len(answers) != 1 || answers[0] != a1 {
		t.Fatalf("AssistantAnswers() = %v", answers)
	}
	if conv.Title != "q1" {
		t.Errorf("Title = %q, want q1", conv.Title)
	}
}

func TestConversation_KeepsEveryAnswer(t *testing.T) {
	conv := NewConversation()
	first := conv.AddAssistantMessage()
	first.Attach(NewSnapshot(90, []Reference{{Text: "t", NodeID: "GDPR_5"}}, nil))
	first.FinalizeStream(nil)

	for i := 0; i < 1500; i++ {
		conv.AddUserMessage("x")
	}

	if conv.MessageCount() != 1501 {
		t.Errorf("MessageCount() = %d, want 1501", conv.MessageCount())
	}
	if got := conv.GetMessageByID(first.ID); got == nil || got.Snapshot == nil {
		t.Fatal("oldest answer or its snapshot was dropped")
	}
	if answers := conv.AssistantAnswers(); len(answers) != 1 || answers[0] != first {
		t.Errorf("AssistantAnswers() = %v", answers)
	}
}
