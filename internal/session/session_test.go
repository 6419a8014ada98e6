// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/regnav/internal/backend"
	"github.com/jeranaias/regnav/internal/graph"
	"github.com/jeranaias/regnav/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func gdprRef(art string) model.Reference {
	return model.Reference{
		Text:     "GDPR article " + art,
		Metadata: model.ReferenceMetadata{Regulation: "GDPR", ArticleNumber: art, Title: "Article " + art},
	}
}

func metadata(conf float64, refs ...model.Reference) backend.Event {
	nodes := make([]model.Node, 0, len(refs))
	for _, r := range refs {
		nodes = append(nodes, model.Node{ID: r.ConstructedID(), Label: r.CardLabel(), Type: model.NodeRetrieved})
	}
	return backend.Event{
		Type:       backend.EventMetadata,
		Confidence: conf,
		Context:    refs,
		GraphData:  &model.Graph{Nodes: nodes},
	}
}

func token(s string) backend.Event {
	return backend.Event{Type: backend.EventToken, Content: s}
}

// answer runs one complete turn and returns the assistant message id.
func answer(t *testing.T, s *Session, q string, events ...backend.Event) string {
	t.Helper()
	turn, err := s.Submit(q)
	require.NoError(t, err)
	for _, ev := range events {
		s.Apply(turn.ID, ev)
	}
	s.Complete(turn.ID)
	return turn.ID
}

// =============================================================================
// SUBMISSION TESTS
// =============================================================================

func TestNew_Greeting(t *testing.T) {
	s := New(Config{})
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleAssistant, msgs[0].Role)
	assert.Equal(t, DefaultGreeting, msgs[0].Content)
	assert.Nil(t, s.Active())
	assert.Equal(t, model.FilterAll, s.Filter())
}

func TestSubmit_AppendsUserAndPlaceholder(t *testing.T) {
	s := New(Config{Filter: model.FilterGDPR})

	turn, err := s.Submit("  What is profiling?  ")
	require.NoError(t, err)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.RoleUser, msgs[1].Role)
	assert.Equal(t, "What is profiling?", msgs[1].Content)
	assert.Equal(t, turn.ID, msgs[2].ID)
	assert.True(t, msgs[2].IsStreaming)

	assert.Equal(t, "What is profiling?", turn.Request.Query)
	require.NotNil(t, turn.Request.Regulation)
	assert.Equal(t, "GDPR", *turn.Request.Regulation)
}

func TestSubmit_RejectsEmpty(t *testing.T) {
	s := New(Config{})
	_, err := s.Submit("   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Len(t, s.Messages(), 1)
}

func TestSubmit_RejectsWhileStreaming(t *testing.T) {
	s := New(Config{})
	first, err := s.Submit("first")
	require.NoError(t, err)

	_, err = s.Submit("second")
	assert.ErrorIs(t, err, ErrStreamInFlight)
	assert.Len(t, s.Messages(), 3, "rejected submission must not add messages")

	s.Complete(first.ID)
	_, err = s.Submit("second")
	assert.NoError(t, err)
}

// =============================================================================
// STREAM EVENT TESTS
// =============================================================================

func TestApply_MetadataBeforeTokensIsActiveImmediately(t *testing.T) {
	s := New(Config{})
	turn, _ := s.Submit("q")

	require.True(t, s.Apply(turn.ID, metadata(88, gdprRef("5"))))

	active := s.Active()
	require.NotNil(t, active)
	assert.Equal(t, 88.0, active.Confidence)
	assert.Len(t, active.References, 1)
	assert.Equal(t, turn.ID, s.ActiveMessageID())
	assert.Same(t, active, s.Message(turn.ID).Snapshot)
	assert.True(t, s.Streaming())
}

func TestApply_TokensAccumulateInOrder(t *testing.T) {
	s := New(Config{})
	turn, _ := s.Submit("q")

	for _, tok := range []string{"Under ", "Article ", "5, ", "data must be ", "minimised."} {
		s.Apply(turn.ID, token(tok))
	}
	assert.Equal(t, "Under Article 5, data must be minimised.", s.Message(turn.ID).GetDisplayContent())

	s.Complete(turn.ID)
	msg := s.Message(turn.ID)
	assert.False(t, msg.IsStreaming)
	assert.Equal(t, "Under Article 5, data must be minimised.", msg.Content)
	assert.False(t, s.Streaming())
}

func TestApply_ErrorRecordIsInline(t *testing.T) {
	s := New(Config{})
	turn, _ := s.Submit("q")

	s.Apply(turn.ID, token("Partial"))
	s.Apply(turn.ID, backend.Event{Type: backend.EventError, Content: "LLM quota exceeded"})
	s.Complete(turn.ID)

	assert.Equal(t, "Partial\n[Error: LLM quota exceeded]", s.Message(turn.ID).Content)
}

func TestApply_LateEventsIgnored(t *testing.T) {
	s := New(Config{})
	id := answer(t, s, "q", token("done"))

	assert.False(t, s.Apply(id, token(" more")))
	assert.False(t, s.Apply(id, metadata(10, gdprRef("1"))))
	assert.Equal(t, "done", s.Message(id).Content)
	assert.Nil(t, s.Active())
}

// =============================================================================
// FAILURE TESTS
// =============================================================================

func TestFail_AppendsConnectionErrorAndKeepsHistory(t *testing.T) {
	s := New(Config{})
	first := answer(t, s, "first", token("ok"))

	turn, _ := s.Submit("second")
	s.Apply(turn.ID, token("half"))
	s.Fail(turn.ID, &backend.ClientError{Type: backend.ErrTypeStatus, Message: "502"})

	msgs := s.Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, "ok", s.Message(first).Content)
	assert.Equal(t, "half"+ConnectionErrorSuffix, msgs[4].Content)
	assert.False(t, msgs[4].IsStreaming)
	assert.False(t, s.Streaming())

	_, err := s.Submit("third")
	assert.NoError(t, err, "a failed turn must release the stream slot")
}

func TestFail_NotTrailingAddsErrorMessage(t *testing.T) {
	s := New(Config{})
	id := answer(t, s, "q", token("fine"))

	s.Fail(id, errors.New("late"))

	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	assert.Equal(t, ConnectionErrorText, last.Content)
	assert.Equal(t, "fine", s.Message(id).Content)
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestRestoreHistory_RepointsActiveWithoutMutation(t *testing.T) {
	s := New(Config{})
	first := answer(t, s, "q1", metadata(70, gdprRef("5")), token("a"))
	second := answer(t, s, "q2", metadata(90, gdprRef("6"), gdprRef("7")), token("b"))

	firstSnap := s.Message(first).Snapshot
	secondSnap := s.Message(second).Snapshot
	assert.Same(t, secondSnap, s.Active())

	require.True(t, s.RestoreHistory(first))
	assert.Same(t, firstSnap, s.Active())
	assert.Equal(t, first, s.ActiveMessageID())

	// Neither stored snapshot changed.
	assert.Equal(t, 70.0, s.Message(first).Snapshot.Confidence)
	assert.Len(t, s.Message(first).Snapshot.References, 1)
	assert.Equal(t, 90.0, s.Message(second).Snapshot.Confidence)
	assert.Len(t, s.Message(second).Snapshot.References, 2)
	assert.Same(t, secondSnap, s.Message(second).Snapshot)
}

func TestRestoreHistory_NoSnapshotIsNoop(t *testing.T) {
	s := New(Config{})
	withSources := answer(t, s, "q1", metadata(70, gdprRef("5")))
	without := answer(t, s, "q2", token("no metadata"))

	assert.False(t, s.RestoreHistory(without))
	assert.False(t, s.RestoreHistory("missing"))
	assert.Equal(t, withSources, s.ActiveMessageID())
}

// =============================================================================
// SELECTION TESTS
// =============================================================================

func TestSelectNode_OpensDetail(t *testing.T) {
	s := New(Config{})
	answer(t, s, "q", metadata(80, gdprRef("5"), gdprRef("17")))

	m, ok := s.SelectNode("GDPR_17")
	require.True(t, ok)
	assert.Equal(t, graph.TierConstructed, m.Tier)

	d, open := s.Detail()
	require.True(t, open)
	assert.Equal(t, 1, d.Index)
	assert.Equal(t, "GDPR_17", d.NodeID)
	assert.Equal(t, "GDPR_17", s.SelectedNode())

	s.CloseDetail()
	_, open = s.Detail()
	assert.False(t, open)
	assert.Equal(t, "GDPR_17", s.SelectedNode())
}

func TestSelectNode_MissLeavesStateUnchanged(t *testing.T) {
	s := New(Config{})
	answer(t, s, "q", metadata(80, gdprRef("5")))
	require.True(t, s.SelectReference(0))

	_, ok := s.SelectNode("AI Act_9")
	assert.False(t, ok)

	d, open := s.Detail()
	assert.True(t, open)
	assert.Equal(t, 0, d.Index)
	assert.Empty(t, s.SelectedNode())
}

func TestSelectNode_BeforeAnyResponse(t *testing.T) {
	s := New(Config{})
	_, ok := s.SelectNode("GDPR_5")
	assert.False(t, ok)
}

func TestSelectReference_Bounds(t *testing.T) {
	s := New(Config{})
	assert.False(t, s.SelectReference(0))

	answer(t, s, "q", metadata(80, gdprRef("5")))
	assert.False(t, s.SelectReference(1))
	assert.False(t, s.SelectReference(-1))
	assert.True(t, s.SelectReference(0))
}

func TestNewMetadataClosesStaleDetail(t *testing.T) {
	s := New(Config{})
	answer(t, s, "q1", metadata(80, gdprRef("5")))
	s.SelectNode("GDPR_5")

	answer(t, s, "q2", metadata(60, gdprRef("6")))
	_, open := s.Detail()
	assert.False(t, open)
	assert.Empty(t, s.SelectedNode())
}

// =============================================================================
// FILTER TESTS
// =============================================================================

func TestCycleFilter(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, model.FilterGDPR, s.CycleFilter())
	assert.Equal(t, model.FilterAIAct, s.CycleFilter())
	assert.Equal(t, model.FilterAll, s.CycleFilter())

	turn, err := s.Submit("q")
	require.NoError(t, err)
	assert.Nil(t, turn.Request.Regulation)
}
