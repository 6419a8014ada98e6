// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/regnav/internal/backend"
	"github.com/jeranaias/regnav/internal/graph"
	"github.com/jeranaias/regnav/internal/model"
)

// DefaultGreeting opens every conversation.
const DefaultGreeting = "Hello! I am your EU AI Act & GDPR Compliance Assistant. Ask me anything."

// Inline markers appended to an answer.
const (
	ConnectionErrorSuffix = "\n[Connection Error]"
	ConnectionErrorText   = "Error connecting to server."
)

// Sentinel errors returned by Submit.
var (
	ErrStreamInFlight = errors.New("a response is still streaming")
	ErrEmptyQuery     = errors.New("query is empty")
)

// =============================================================================
// SESSION
// =============================================================================

// Config holds the initial state of a session.
type Config struct {
	// Greeting is the first assistant message (default: DefaultGreeting)
	Greeting string

	// Filter is the initial regulation filter (default: All)
	Filter model.Filter

	// Logger receives selection misses and late events (default: no-op)
	Logger *zap.Logger
}

// Turn is one accepted submission.
type Turn struct {
	// ID is the assistant placeholder the stream writes into.
	ID      string
	Request backend.ChatRequest
}

// Detail is the reference open in the detail view.
type Detail struct {
	Index     int
	Reference model.Reference
	// NodeID is set when the detail was opened from the graph.
	NodeID string
}

// Session owns all conversation state: the message list, the active
// retrieval snapshot shown in the graph and reference panes, the open
// detail view and the regulation filter. Views receive the *Session and
// read from it; only Session methods mutate it.
//
// At most one response streams at a time. Submit refuses new queries until
// the in-flight turn is completed or failed.
type Session struct {
	mu sync.Mutex

	conv   *model.Conversation
	filter model.Filter

	// active is the snapshot driving the graph and reference panes.
	active     *model.Snapshot
	activeFrom string

	inflight string
	stats    *model.Statistics

	detail       *Detail
	selectedNode string

	logger *zap.Logger
}

// New creates a session seeded with the greeting.
func New(cfg Config) *Session {
	if cfg.Greeting == "" {
		cfg.Greeting = DefaultGreeting
	}
	if cfg.Filter == "" {
		cfg.Filter = model.FilterAll
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	conv := model.NewConversation()
	conv.AddAssistantText(cfg.Greeting)

	return &Session{
		conv:   conv,
		filter: cfg.Filter,
		logger: logger.Named("session"),
	}
}

// =============================================================================
// SUBMISSION AND STREAM EVENTS
// =============================================================================

// Submit records a user question and a streaming assistant placeholder.
// The returned Turn carries the request to send and the placeholder id.
func (s *Session) Submit(query string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return Turn{}, ErrEmptyQuery
	}
	if s.inflight != "" {
		return Turn{}, ErrStreamInFlight
	}

	s.conv.AddUserMessage(query)
	msg := s.conv.AddAssistantMessage()
	s.inflight = msg.ID
	s.stats = model.NewStatistics()

	return Turn{ID: msg.ID, Request: backend.NewChatRequest(query, s.filter)}, nil
}

// Apply folds one stream event into the in-flight answer. Events for any
// other message are ignored and Apply returns false.
func (s *Session) Apply(id string, ev backend.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.streamingMessage(id)
	if msg == nil {
		s.logger.Debug("ignoring event for finished turn", zap.String("message_id", id), zap.String("type", string(ev.Type)))
		return false
	}

	switch ev.Type {
	case backend.EventMetadata:
		snap := ev.Snapshot()
		msg.Attach(snap)
		s.setActive(snap, id)
	case backend.EventToken:
		s.stats.RecordFirstToken()
		msg.AppendToken(ev.Content)
	case backend.EventError:
		msg.AppendToken("\n[Error: " + ev.Content + "]")
	default:
		return false
	}
	return true
}

// Complete finalizes the in-flight answer. Later events for it are ignored.
func (s *Session) Complete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.streamingMessage(id)
	if msg == nil {
		return
	}
	s.stats.Finalize()
	msg.FinalizeStream(s.stats)
	s.inflight = ""
	s.stats = nil
}

// Fail ends the in-flight turn after a transport or status error. The
// partial answer is kept with a connection marker appended. When the
// trailing message is not that answer, a separate error message is added.
func (s *Session) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Warn("turn failed", zap.String("message_id", id), zap.Error(err))

	last := s.conv.GetLastMessage()
	if msg := s.streamingMessage(id); msg != nil && last == msg {
		msg.AppendToken(ConnectionErrorSuffix)
		if s.stats != nil {
			s.stats.Finalize()
		}
		msg.FinalizeStream(s.stats)
	} else {
		if msg != nil {
			msg.FinalizeStream(nil)
		}
		s.conv.AddAssistantText(ConnectionErrorText)
	}
	if s.inflight == id {
		s.inflight = ""
		s.stats = nil
	}
}

// streamingMessage returns the in-flight message if it has the given id.
func (s *Session) streamingMessage(id string) *model.Message {
	if id == "" || id != s.inflight {
		return nil
	}
	msg := s.conv.GetMessageByID(id)
	if msg == nil || !msg.IsStreaming {
		return nil
	}
	return msg
}

// =============================================================================
// ACTIVE CONTEXT
// =============================================================================

// RestoreHistory makes the snapshot of message id the active one. Other
// snapshots are not touched. Returns false when the message has none.
func (s *Session) RestoreHistory(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.conv.GetMessageByID(id)
	if msg == nil || msg.Snapshot == nil {
		return false
	}
	s.setActive(msg.Snapshot, id)
	return true
}

// setActive swaps the active snapshot and drops selection state that
// pointed into the previous one.
func (s *Session) setActive(snap *model.Snapshot, from string) {
	s.active = snap
	s.activeFrom = from
	s.detail = nil
	s.selectedNode = ""
}

// Active returns the active snapshot, or nil before the first response.
func (s *Session) Active() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveMessageID returns the id of the message whose snapshot is active.
func (s *Session) ActiveMessageID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeFrom
}

// =============================================================================
// SELECTION
// =============================================================================

// SelectNode resolves a graph node against the active references and opens
// the detail view on a match. A miss is logged and changes nothing.
func (s *Session) SelectNode(nodeID string) (graph.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var refs []model.Reference
	if s.active != nil {
		refs = s.active.References
	}
	m, ok := graph.Resolve(nodeID, refs)
	if !ok {
		s.logger.Debug("graph node has no retrieved reference", zap.String("node_id", nodeID))
		return graph.Match{}, false
	}

	s.logger.Debug("graph node resolved",
		zap.String("node_id", nodeID),
		zap.Int("index", m.Index),
		zap.Stringer("tier", m.Tier),
	)
	s.selectedNode = nodeID
	s.detail = &Detail{Index: m.Index, Reference: m.Reference, NodeID: nodeID}
	return m, true
}

// SelectReference opens the detail view on the i-th active reference.
func (s *Session) SelectReference(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, ok := s.active.Reference(i)
	if !ok {
		return false
	}
	s.detail = &Detail{Index: i, Reference: ref}
	return true
}

// Detail returns the open detail view.
func (s *Session) Detail() (Detail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail == nil {
		return Detail{}, false
	}
	return *s.detail, true
}

// CloseDetail closes the detail view. The graph selection is kept.
func (s *Session) CloseDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detail = nil
}

// SelectedNode returns the highlighted graph node id.
func (s *Session) SelectedNode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedNode
}

// =============================================================================
// FILTER AND ACCESSORS
// =============================================================================

// Filter returns the regulation filter used for the next submission.
func (s *Session) Filter() model.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter replaces the regulation filter.
func (s *Session) SetFilter(f model.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// CycleFilter advances All -> GDPR -> AI Act -> All and returns the new value.
func (s *Session) CycleFilter() model.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = s.filter.Next()
	return s.filter
}

// Streaming reports whether a turn is in flight.
func (s *Session) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight != ""
}

// InFlightID returns the id of the streaming answer, or "".
func (s *Session) InFlightID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

// Messages returns the message list. The slice is a copy; the messages are
// shared and must only be read.
func (s *Session) Messages() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.Message(nil), s.conv.Messages...)
}

// Message returns a message by id.
func (s *Session) Message(id string) *model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.GetMessageByID(id)
}

// Answers returns the assistant messages that carry sources, oldest first.
func (s *Session) Answers() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.AssistantAnswers()
}

// Conversation returns the underlying conversation for export.
func (s *Session) Conversation() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv
}
