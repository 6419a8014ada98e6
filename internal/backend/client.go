// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Endpoint paths on the Assistant Backend.
const (
	PathChatStream = "/api/chat/stream"
	PathChat       = "/api/chat"
	PathHealth     = "/api/health"
)

// DefaultBaseURL is used when no URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// readChunkSize is the size of each body read while streaming.
const readChunkSize = 4096

// maxErrorBody bounds how much of a failed response body is read.
const maxErrorBody = 4096

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the Assistant Backend base URL (default: http://localhost:8000)
	BaseURL string

	// Timeout for non-streaming requests (default: 60s)
	Timeout time.Duration

	// StreamIdleTimeout aborts a stream that delivers no bytes for this
	// long. Zero disables the watchdog.
	StreamIdleTimeout time.Duration

	// Logger receives request and stream diagnostics (default: no-op)
	Logger *zap.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           DefaultBaseURL,
		Timeout:           60 * time.Second,
		StreamIdleTimeout: 120 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Assistant Backend over HTTP.
//
// The Client is safe for concurrent use; each call is one independent
// request with no retry.
//
// Example:
//
//	client := backend.NewClientWithConfig(&backend.ClientConfig{BaseURL: url})
//	err := client.StreamChat(ctx, backend.NewChatRequest(q, model.FilterGDPR),
//	    func(ev backend.Event) { ... })
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	streamClient *http.Client
	logger       *zap.Logger
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client, filling zero values with defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		// Streams are bounded by the context and the idle watchdog,
		// never by a whole-request timeout.
		streamClient: &http.Client{},
		logger:       logger.Named("backend"),
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// StreamChat posts req to /api/chat/stream and calls handler for each
// decoded record in order. It returns nil when the body ends normally,
// ctx.Err() when ctx is cancelled, and a *ClientError otherwise.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest, handler EventHandler) error {
	requestID := uuid.NewString()
	log := c.logger.With(zap.String("request_id", requestID))

	body, err := json.Marshal(req)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(streamCtx, http.MethodPost, c.config.BaseURL+PathChatStream, bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")
	httpReq.Header.Set("X-Request-ID", requestID)

	log.Info("stream request", zap.String("url", httpReq.URL.String()), zap.Stringp("regulation", req.Regulation))

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		cerr := classifyTransport("stream request", err)
		log.Warn("stream request failed", zap.Error(cerr))
		return cerr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cerr := statusError("stream request", resp.StatusCode, resp.Status, readErrorDetail(resp.Body))
		log.Warn("stream rejected", zap.Int("status", resp.StatusCode), zap.Error(cerr))
		return cerr
	}

	var idleFired atomic.Bool
	var watchdog *time.Timer
	if idle := c.config.StreamIdleTimeout; idle > 0 {
		watchdog = time.AfterFunc(idle, func() {
			idleFired.Store(true)
			cancel()
		})
		defer watchdog.Stop()
	}

	decoder := NewDecoder(log)
	delivered := 0
	chunk := make([]byte, readChunkSize)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			if watchdog != nil {
				watchdog.Reset(c.config.StreamIdleTimeout)
			}
			for _, ev := range decoder.Feed(chunk[:n]) {
				handler(ev)
				delivered++
			}
		}

		if readErr == nil {
			continue
		}
		if errors.Is(readErr, io.EOF) {
			for _, ev := range decoder.Flush() {
				handler(ev)
				delivered++
			}
			log.Info("stream finished", zap.Int("events", delivered), zap.Int("skipped", decoder.Skipped()))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if idleFired.Load() {
			cerr := &ClientError{Type: ErrTypeTimeout, Message: "stream idle for " + c.config.StreamIdleTimeout.String()}
			log.Warn("stream idle", zap.Error(cerr))
			return cerr
		}
		cerr := classifyTransport("stream read", readErr)
		log.Warn("stream interrupted", zap.Int("events", delivered), zap.Error(cerr))
		return cerr
	}
}

// =============================================================================
// NON-STREAMING CHAT
// =============================================================================

// Chat posts req to /api/chat and returns the complete answer.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+PathChat, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport("chat request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError("chat request", resp.StatusCode, resp.Status, readErrorDetail(resp.Body))
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return &result, nil
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckHealth verifies the backend answers /api/health with status "ok".
func (c *Client) CheckHealth(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+PathHealth, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return classifyTransport("health check", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("health check", resp.StatusCode, resp.Status, "")
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode health response", Cause: err}
	}
	if health.Status != "ok" {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "backend reports status " + health.Status}
	}
	return nil
}

// readErrorDetail extracts a human-readable reason from an error body.
func readErrorDetail(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil {
		if eb.Detail != "" {
			return eb.Detail
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	return strings.TrimSpace(string(data))
}
