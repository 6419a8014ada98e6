// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/regnav/internal/backend"
	"github.com/jeranaias/regnav/internal/config"
	"github.com/jeranaias/regnav/internal/fixture"
	"github.com/jeranaias/regnav/internal/logging"
	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/session"
)

// =============================================================================
// HELPERS
// =============================================================================

// newFixtureClient serves the demo script without token delays and returns
// a client pointed at it.
func newFixtureClient(t *testing.T) *backend.Client {
	t.Helper()
	cfg := fixture.DefaultConfig()
	cfg.RPS = 0
	srv, err := fixture.NewServer(cfg)
	require.NoError(t, err)

	script := fixture.DemoScript()
	for i := range script.Entries {
		script.Entries[i].TokenDelayMS = 0
	}
	srv.SetScript(script)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL: ts.URL,
		Timeout: 5 * time.Second,
	})
}

func plainAsk(query string) askOptions {
	return askOptions{Query: query, Filter: model.FilterAll, Width: 80}
}

func newTestREPL(t *testing.T) (*repl, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &repl{
		sess:      session.New(session.Config{}),
		client:    newFixtureClient(t),
		out:       &out,
		width:     80,
		exportDir: t.TempDir(),
		logger:    logging.Nop(),
	}, &out
}

// =============================================================================
// ASK
// =============================================================================

func TestRunAsk_StreamsAnswerAndSources(t *testing.T) {
	var out bytes.Buffer
	err := runAsk(context.Background(), &out, newFixtureClient(t), plainAsk("When is a DPIA required?"))
	require.NoError(t, err)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "A **DPIA** is required "), text)
	assert.Contains(t, text, "Confidence: 87%")
	assert.Contains(t, text, "  1. GDPR Art. 35  Data protection impact assessment")
	assert.Contains(t, text, "  3. AI Act Art. 26  Obligations of deployers of high-risk AI systems")
	assert.Contains(t, text, "Source: EUR-Lex")
}

func TestRunAsk_NoStreamUsesChatEndpoint(t *testing.T) {
	opts := plainAsk("Which AI systems are high-risk?")
	opts.NoStream = true

	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), &out, newFixtureClient(t), opts))

	text := out.String()
	assert.Contains(t, text, "Confidence: 74%")
	assert.Contains(t, text, "1. AI Act Art. 6  Classification rules for high-risk AI systems")
}

func TestRunAsk_JSON(t *testing.T) {
	opts := plainAsk("When is a DPIA required?")
	opts.JSON = true

	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), &out, newFixtureClient(t), opts))

	var resp struct {
		Success bool      `json:"success"`
		Command string    `json:"command"`
		Data    askResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ask", resp.Command)
	require.NotNil(t, resp.Data.Confidence)
	assert.Equal(t, 87.0, *resp.Data.Confidence)
	assert.Len(t, resp.Data.References, 3)
	require.NotNil(t, resp.Data.Graph)
	assert.Len(t, resp.Data.Graph.Nodes, 5)
	assert.Equal(t, "All", resp.Data.Filter)
}

func TestRunAsk_ErrorRecordIsShownInline(t *testing.T) {
	var out bytes.Buffer
	err := runAsk(context.Background(), &out, newFixtureClient(t), plainAsk("please simulate error"))
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Looking that up... \n[Error: retrieval service unavailable]")
	assert.Contains(t, text, "No sources were returned.")
}

func TestRunAsk_StatusErrorKeepsMarker(t *testing.T) {
	var out bytes.Buffer
	err := runAsk(context.Background(), &out, newFixtureClient(t), plainAsk("simulate outage"))
	require.Error(t, err)
	assert.True(t, backend.IsStatus(err))
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.Contains(t, out.String(), "[Connection Error]")
	assert.NotContains(t, out.String(), "Confidence:")
}

func TestRunAsk_UnreachableBackend(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	client := backend.NewClientWithConfig(&backend.ClientConfig{BaseURL: url, Timeout: time.Second})
	var out bytes.Buffer
	err := runAsk(context.Background(), &out, client, plainAsk("anything"))
	require.Error(t, err)
	assert.True(t, backend.IsConnection(err))
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
}

func TestRunAsk_EmptyQuestionIsUsageError(t *testing.T) {
	var out bytes.Buffer
	err := runAsk(context.Background(), &out, newFixtureClient(t), plainAsk("   "))
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Empty(t, out.String())
}

// =============================================================================
// CHAT REPL
// =============================================================================

func TestREPL_AskPrintsSummary(t *testing.T) {
	r, out := newTestREPL(t)

	assert.True(t, r.handleLine(context.Background(), "When is a DPIA required?"))
	assert.Contains(t, out.String(), "A **DPIA** is required ")
	assert.Contains(t, out.String(), "Confidence: 87%  References: 3")
	assert.False(t, r.sess.Streaming())
}

func TestREPL_SlashCommands(t *testing.T) {
	r, out := newTestREPL(t)
	ctx := context.Background()
	require.True(t, r.handleLine(ctx, "When is a DPIA required?"))

	tests := []struct {
		line string
		want string
	}{
		{"/sources", "2. GDPR Art. 36  Prior consultation"},
		{"/ref 2", "GDPR - Article 36"},
		{"/ref 9", "No reference 9 in the current sources."},
		{"/ref", "Usage: /ref <n>"},
		{"/node GDPR_35", "GDPR - Article 35"},
		{"/node GDPR_9", "No retrieved reference for GDPR_9"},
		{"/graph", "Citations: GDPR_35 -> GDPR_9, GDPR_36 -> GDPR_35"},
		{"/bogus", "Unknown command /bogus. Type /help."},
		{"/help", "/node <id>"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			out.Reset()
			assert.True(t, r.handleLine(ctx, tt.line))
			assert.Contains(t, out.String(), tt.want)
		})
	}

	_, open := r.sess.Detail()
	assert.False(t, open, "detail is closed after printing")
}

func TestREPL_FilterCommand(t *testing.T) {
	r, out := newTestREPL(t)
	ctx := context.Background()

	r.handleLine(ctx, "/filter ai-act")
	assert.Equal(t, model.FilterAIAct, r.sess.Filter())
	assert.Contains(t, out.String(), "Regulation filter: AI Act")

	r.handleLine(ctx, "/filter")
	assert.Equal(t, model.FilterAll, r.sess.Filter())

	out.Reset()
	r.handleLine(ctx, "/filter ccpa")
	assert.Equal(t, model.FilterAll, r.sess.Filter())
	assert.Contains(t, out.String(), "unknown filter")
}

func TestREPL_SourcesRestoresEarlierAnswer(t *testing.T) {
	r, out := newTestREPL(t)
	ctx := context.Background()

	r.handleLine(ctx, "When is a DPIA required?")
	r.handleLine(ctx, "Which AI systems are high-risk?")
	require.Len(t, r.sess.Answers(), 2)
	assert.Equal(t, "AI_Act_6", r.sess.Active().References[0].NodeID)

	out.Reset()
	r.handleLine(ctx, "/sources 1")
	assert.Contains(t, out.String(), "Sources of answer 1:")
	assert.Equal(t, "GDPR_35", r.sess.Active().References[0].NodeID)

	out.Reset()
	r.handleLine(ctx, "/sources 5")
	assert.Contains(t, out.String(), "No answer 5 with sources (have 2).")
	assert.Equal(t, "GDPR_35", r.sess.Active().References[0].NodeID)
}

func TestREPL_Export(t *testing.T) {
	r, out := newTestREPL(t)
	ctx := context.Background()
	r.handleLine(ctx, "When is a DPIA required?")

	path := filepath.Join(t.TempDir(), "dpia.json")
	r.handleLine(ctx, "/export "+path)
	assert.Contains(t, out.String(), "Exported to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Contains(t, string(data), "GDPR_35")
}

func TestREPL_Quit(t *testing.T) {
	r, _ := newTestREPL(t)
	for _, line := range []string{"/quit", "/exit", "/q", "/QUIT"} {
		assert.False(t, r.handleLine(context.Background(), line), line)
	}
}

func TestREPL_CancelTurnWhenIdle(t *testing.T) {
	r, _ := newTestREPL(t)
	assert.False(t, r.cancelTurn())

	called := false
	r.setCancel(func() { called = true })
	assert.True(t, r.cancelTurn())
	assert.True(t, called)
	assert.False(t, r.cancelTurn())
}

func TestREPL_InterruptCancelsStreamingTurn(t *testing.T) {
	r, out := newTestREPL(t)
	sigs := make(chan os.Signal, 1)
	stop := r.watchInterrupts(sigs)

	cancelled := make(chan struct{})
	r.setCancel(func() { close(cancelled) })
	sigs <- os.Interrupt

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("interrupt did not cancel the turn")
	}

	// an interrupt while idle is ignored
	sigs <- os.Interrupt

	stop()
	stop()
	assert.Equal(t, 1, strings.Count(out.String(), "[Cancelled]"))
	assert.False(t, r.cancelTurn())
}

func TestREPL_InterruptedAnswerIsNotAnError(t *testing.T) {
	r, out := newTestREPL(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, r.handleLine(ctx, "When is a DPIA required?"))
	assert.NotContains(t, out.String(), "[Error]")
	assert.NotContains(t, out.String(), "[Connection Error]")
	assert.False(t, r.sess.Streaming())
}

// =============================================================================
// HEALTH
// =============================================================================

func TestRunHealth(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runHealth(context.Background(), &out, newFixtureClient(t), false, false))
	assert.True(t, strings.HasPrefix(out.String(), "[OK] http://"), out.String())
}

func TestRunHealth_JSONFailure(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()
	client := backend.NewClientWithConfig(&backend.ClientConfig{BaseURL: url, Timeout: time.Second})

	var out bytes.Buffer
	err := runHealth(context.Background(), &out, client, true, false)
	require.Error(t, err)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "health", resp.Command)
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	var out bytes.Buffer

	require.NoError(t, runConfigInit(&out, path, false))
	assert.FileExists(t, path)

	err := runConfigInit(&out, path, false)
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	require.NoError(t, runConfigInit(&out, path, true))

	cfg, err := config.Load(config.Options{Path: path, DotEnvPath: filepath.Join(t.TempDir(), ".env")})
	require.NoError(t, err)
	assert.Equal(t, config.Default().Backend.URL, cfg.Backend.URL)
}

func TestConfigPath_ReportsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	var out bytes.Buffer
	require.NoError(t, runConfigPath(&out, path))
	assert.Contains(t, out.String(), "not created yet")

	require.NoError(t, os.WriteFile(path, nil, 0600))
	out.Reset()
	require.NoError(t, runConfigPath(&out, path))
	assert.Equal(t, path+"\n", out.String())
}

func TestConfigShow(t *testing.T) {
	cfg := config.Default()
	var out bytes.Buffer
	require.NoError(t, runConfigShow(&out, cfg, false))
	assert.Contains(t, out.String(), "[backend]")

	out.Reset()
	require.NoError(t, runConfigShow(&out, cfg, true))
	assert.Contains(t, out.String(), `"url": "`+cfg.Backend.URL+`"`)
}

// =============================================================================
// EXIT CODES AND FLAGS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", usageErrorf("bad"), ExitUsageError},
		{"config", &ConfigError{Err: errors.New("broken")}, ExitConfigError},
		{"validation", config.ValidateErrors{{Field: "backend.url", Message: "required"}}, ExitConfigError},
		{"timeout", &backend.ClientError{Type: backend.ErrTypeTimeout, Message: "slow"}, ExitTimeoutError},
		{"connection", &backend.ClientError{Type: backend.ErrTypeConnection, Message: "refused"}, ExitNetworkError},
		{"status", &backend.ClientError{Type: backend.ErrTypeStatus, StatusCode: 502}, ExitNetworkError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestResolveFilter(t *testing.T) {
	cfg := config.Default()
	cfg.UI.DefaultFilter = "GDPR"

	f, err := resolveFilter("", cfg)
	require.NoError(t, err)
	assert.Equal(t, model.FilterGDPR, f)

	f, err = resolveFilter("ai-act", cfg)
	require.NoError(t, err)
	assert.Equal(t, model.FilterAIAct, f)

	_, err = resolveFilter("hipaa", cfg)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestRootCommand_Subcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"tui", "ask", "chat", "health", "config", "serve-fixture", "version"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, rootCmd.Flags().Lookup("filter"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("api-url"))
}
