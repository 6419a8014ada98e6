// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/regnav/internal/model"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
}

// chunkedStream writes each part and flushes, so the client sees
// records split across reads.
func chunkedStream(parts ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher := w.(http.Flusher)
		for _, p := range parts {
			io.WriteString(w, p)
			flusher.Flush()
		}
	}
}

func collect(t *testing.T, c *Client, req ChatRequest) ([]Event, error) {
	t.Helper()
	var events []Event
	err := c.StreamChat(context.Background(), req, func(ev Event) {
		events = append(events, ev)
	})
	return events, err
}

// =============================================================================
// STREAM TESTS
// =============================================================================

func TestStreamChat_SendsRequestBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathChatStream, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	_, err := collect(t, c, NewChatRequest("What is personal data?", model.FilterAll))
	require.NoError(t, err)

	assert.Equal(t, "What is personal data?", got["query"])
	regulation, present := got["regulation"]
	assert.True(t, present, "regulation must be sent as null")
	assert.Nil(t, regulation)
}

func TestStreamChat_FilterIsSent(t *testing.T) {
	var got ChatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	_, err := collect(t, c, NewChatRequest("q", model.FilterAIAct))
	require.NoError(t, err)
	require.NotNil(t, got.Regulation)
	assert.Equal(t, "AI Act", *got.Regulation)
}

func TestStreamChat_DeliversEventsInOrder(t *testing.T) {
	c := newTestClient(t, chunkedStream(
		`{"type":"metadata","confidence":90,"context":[],"graph_data":{"nodes":[],"edges":[]}}`+"\n"+`{"type":"tok`,
		`en","content":"Under "}`+"\n",
		"garbage\n",
		`{"type":"token","content":"Article 5"}`,
	))

	events, err := collect(t, c, NewChatRequest("q", model.FilterGDPR))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, EventMetadata, events[0].Type)
	assert.Equal(t, "Under ", events[1].Content)
	assert.Equal(t, "Article 5", events[2].Content)
}

func TestStreamChat_NonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"detail":"vector store unavailable"}`)
	})

	events, err := collect(t, c, NewChatRequest("q", model.FilterAll))
	assert.Empty(t, events)
	require.Error(t, err)
	assert.True(t, IsStatus(err))
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Contains(t, err.Error(), "vector store unavailable")

	var cerr *ClientError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, http.StatusInternalServerError, cerr.StatusCode)
}

func TestStreamChat_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: url})
	err := c.StreamChat(context.Background(), NewChatRequest("q", model.FilterAll), func(Event) {})
	require.Error(t, err)
	assert.True(t, IsConnection(err), "got %v", err)
}

func TestStreamChat_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"type":"token","content":"partial"}`+"\n")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	var got []Event
	err := c.StreamChat(ctx, NewChatRequest("q", model.FilterAll), func(ev Event) {
		got = append(got, ev)
		cancel()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, got, 1)
}

func TestStreamChat_IdleTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, StreamIdleTimeout: 50 * time.Millisecond})
	err := c.StreamChat(context.Background(), NewChatRequest("q", model.FilterAll), func(Event) {})
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "got %v", err)
}

// =============================================================================
// CHAT AND HEALTH TESTS
// =============================================================================

func TestChat_DecodesResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathChat, r.URL.Path)
		io.WriteString(w, `{"answer":"Yes.","confidence":72,"context":[{"text":"t","metadata":{"title":"x","article_number":"9","regulation":"GDPR"}}],"graph_data":null}`)
	})

	resp, err := c.Chat(context.Background(), NewChatRequest("q", model.FilterGDPR))
	require.NoError(t, err)
	assert.Equal(t, "Yes.", resp.Answer)
	assert.Equal(t, 72.0, resp.Confidence)
	require.Len(t, resp.Context, 1)
	assert.Nil(t, resp.Snapshot().Graph)
}

func TestChat_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>")
	})

	_, err := c.Chat(context.Background(), NewChatRequest("q", model.FilterAll))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"ok", http.StatusOK, `{"status":"ok"}`, nil},
		{"degraded", http.StatusOK, `{"status":"degraded"}`, ErrInvalidResponse},
		{"server error", http.StatusServiceUnavailable, ``, ErrStatus},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, PathHealth, r.URL.Path)
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})
			err := c.CheckHealth(context.Background())
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, 60*time.Second, c.httpClient.Timeout)
	assert.Zero(t, c.streamClient.Timeout)
}
