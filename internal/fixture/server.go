// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/jeranaias/regnav/internal/backend"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr matches the client's default backend URL.
	DefaultAddr = "127.0.0.1:8000"

	// DefaultRPS is the per-IP request rate.
	DefaultRPS = 5

	// DefaultBurst is the per-IP burst size.
	DefaultBurst = 10

	// MaxRequestBodySize bounds a chat request body (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxQueryLength bounds the query text.
	MaxQueryLength = 10000

	// fallbackAnswer is streamed when no entry matches.
	fallbackAnswer = "No scripted answer matches this question."
)

// ============================================================================
// CONFIG
// ============================================================================

// Config configures the fixture server.
type Config struct {
	// Addr is the listen address (default: 127.0.0.1:8000)
	Addr string

	// ScriptPath is a JSON script; empty uses the demo script.
	ScriptPath string

	// Watch reloads ScriptPath when it changes.
	Watch bool

	// RPS and Burst configure the per-IP limiter. RPS <= 0 disables it.
	RPS   float64
	Burst int

	// AllowedOrigins for CORS (default: any)
	AllowedOrigins []string

	// Logger (default: no-op)
	Logger *zap.Logger
}

// DefaultConfig returns the default fixture configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:           DefaultAddr,
		Watch:          true,
		RPS:            DefaultRPS,
		Burst:          DefaultBurst,
		AllowedOrigins: []string{"*"},
	}
}

// ============================================================================
// SERVER
// ============================================================================

// Server replays a script over the Assistant Backend API.
type Server struct {
	config  *Config
	router  *mux.Router
	limiter *RateLimiter
	logger  *zap.Logger

	mu     sync.RWMutex
	script *Script
	server *http.Server
}

// NewServer loads the script and builds the routes.
func NewServer(config *Config) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = []string{"*"}
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	script := DemoScript()
	if config.ScriptPath != "" {
		loaded, err := LoadScript(config.ScriptPath)
		if err != nil {
			return nil, err
		}
		script = loaded
	}

	s := &Server{
		config:  config,
		router:  mux.NewRouter(),
		limiter: NewRateLimiter(config.RPS, config.Burst),
		logger:  logger.Named("fixture"),
		script:  script,
	}
	s.setupRoutes()
	return s, nil
}

// Script returns the script in use.
func (s *Server) Script() *Script {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.script
}

// SetScript swaps the script. In-flight responses finish with the old one.
func (s *Server) SetScript(script *Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = script
}

// ============================================================================
// ROUTES
// ============================================================================

// Routes live on the top-level router: a subrouter reports a method
// mismatch as 404 instead of 405.
func (s *Server) setupRoutes() {
	s.router.HandleFunc(backend.PathChatStream, s.handleChatStream).Methods(http.MethodPost)
	s.router.HandleFunc(backend.PathChat, s.handleChat).Methods(http.MethodPost)
	s.router.HandleFunc(backend.PathHealth, s.handleHealth).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return Chain(
		RecoveryMiddleware(s.logger),
		LoggingMiddleware(s.logger),
		c.Handler,
		RateLimitMiddleware(s.limiter, s.logger),
	)(s.router)
}

// ============================================================================
// HANDLERS
// ============================================================================

// handleChatStream handles POST /api/chat/stream.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	entry := s.lookup(req)
	if entry.Status != 0 {
		writeError(w, entry.Status, http.StatusText(entry.Status))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	enc := json.NewEncoder(w)
	delay := entry.TokenDelay()

	for _, ev := range entry.Events() {
		if ev.Type == backend.EventToken && delay > 0 {
			if !sleep(ctx, delay) {
				s.logger.Debug("client went away mid-stream")
				return
			}
		}
		// Encode terminates each record with a newline.
		if err := enc.Encode(ev); err != nil {
			s.logger.Debug("stream write failed", zap.Error(err))
			return
		}
		flusher.Flush()
	}
}

// handleChat handles POST /api/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	entry := s.lookup(req)
	if entry.Status != 0 {
		writeError(w, entry.Status, http.StatusText(entry.Status))
		return
	}
	if entry.Error != "" {
		writeError(w, http.StatusInternalServerError, entry.Error)
		return
	}

	resp := backend.ChatResponse{Answer: entry.Answer()}
	if md := entry.Metadata; md != nil {
		resp.Confidence = md.Confidence
		resp.Context = md.Context
		resp.GraphData = md.GraphData
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, backend.HealthResponse{Status: "ok"})
}

// decodeRequest reads and validates a chat request, writing the error
// response itself when it fails.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (backend.ChatRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req backend.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return req, false
		}
		s.logger.Debug("invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return req, false
	}

	req.Query = strings.TrimSpace(req.Query)
	switch {
	case req.Query == "":
		writeError(w, http.StatusUnprocessableEntity, "query must not be empty")
		return req, false
	case len(req.Query) > MaxQueryLength:
		writeError(w, http.StatusUnprocessableEntity, "query too long")
		return req, false
	}
	return req, true
}

// lookup finds the scripted entry for req, or a fallback.
func (s *Server) lookup(req backend.ChatRequest) *Entry {
	regulation := "All"
	if req.Regulation != nil {
		regulation = *req.Regulation
	}

	if entry, ok := s.Script().Lookup(req.Query, req.Regulation); ok {
		s.logger.Info("scripted answer",
			zap.String("match", entry.Match),
			zap.String("regulation", regulation),
		)
		return entry
	}
	s.logger.Info("no scripted answer", zap.String("regulation", regulation))
	return &Entry{Tokens: []string{fallbackAnswer}}
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Run serves until ctx is done, then shuts down gracefully. The script
// watcher runs alongside when configured.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.config.ScriptPath != "" && s.config.Watch {
		sw, err := NewScriptWatcher(s.config.ScriptPath, DefaultReloadDebounce, s.SetScript, s.logger)
		if err != nil {
			s.logger.Warn("script watching disabled", zap.Error(err))
		} else {
			go sw.Run(ctx)
		}
	}

	s.mu.Lock()
	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("fixture server listening", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	s.logger.Info("fixture server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// ============================================================================
// HELPERS
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError uses the FastAPI error shape the client understands.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// sleep waits d or until ctx is done. Returns false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
