// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/regnav/internal/config"
	"github.com/jeranaias/regnav/internal/export"
	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/session"
)

var chatFlags struct {
	filter string
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Line-oriented chat with slash commands",
	Long: `Start an interactive question and answer session without the full-screen
UI. Type a question to stream an answer. Type /help for the slash commands.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatFlags.filter, "filter", "f", "", "initial regulation filter: all, gdpr or ai-act")
	rootCmd.AddCommand(chatCmd)
}

// =============================================================================
// CHAT CLI (line editing and history)
// =============================================================================

// ChatCLI provides input history and line editing for the chat REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads the saved history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile, err := config.HistoryPath()
	if err != nil {
		historyFile = filepath.Join(os.TempDir(), "regnav_history")
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// chatBackend is the part of *backend.Client the REPL uses.
type chatBackend interface {
	askBackend
	BaseURL() string
}

// repl is one chat session. Input reading lives in runChat so that
// handleLine can be driven directly.
type repl struct {
	sess      *session.Session
	client    chatBackend
	out       io.Writer
	styled    bool
	width     int
	exportDir string
	logger    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, logger := appEnv.cfg, appEnv.logger

	filter, err := resolveFilter(chatFlags.filter, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	r := &repl{
		sess: session.New(session.Config{
			Greeting: cfg.UI.Greeting,
			Filter:   filter,
			Logger:   logger,
		}),
		client: newBackendClient(cfg, logger),
		out:    out,
		styled: IsStdoutTTY() && ColorsEnabled(),
		width:  GetTerminalWidth(),
		logger: logger,
	}

	input := NewChatCLI()
	defer input.Close()

	// First Ctrl+C while an answer streams cancels only that answer.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	stopWatch := r.watchInterrupts(sigChan)
	defer func() {
		signal.Stop(sigChan)
		stopWatch()
	}()

	r.printGreeting()
	for {
		line, err := input.ReadInput(style(PromptStyle, "regnav> ", r.styled))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D or a closed stdin all end the session.
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				logger.Debug("input closed", zap.Error(err))
			}
			fmt.Fprintln(out)
			return nil
		}
		if !r.handleLine(cmd.Context(), line) {
			return nil
		}
	}
}

func (r *repl) printGreeting() {
	msgs := r.sess.Messages()
	if len(msgs) > 0 {
		fmt.Fprintln(r.out, msgs[0].Content)
	}
	fmt.Fprintln(r.out, style(MutedStyle,
		fmt.Sprintf("Regulation filter: %s. Type /help for commands.", r.sess.Filter()), r.styled))
}

// handleLine processes one input line. It returns false when the session
// should end.
func (r *repl) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if strings.HasPrefix(line, "/") {
		return r.command(line)
	}

	if err := r.ask(ctx, line); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(r.out, "%s %v\n", style(ErrorStyle, "[Error]", r.styled), err)
	}
	return true
}

// ask streams one answer and prints a one-line source summary.
func (r *repl) ask(ctx context.Context, query string) error {
	turn, err := r.sess.Submit(query)
	if err != nil {
		return err
	}

	turnCtx, cancel := context.WithCancel(ctx)
	r.setCancel(cancel)
	defer func() {
		r.setCancel(nil)
		cancel()
	}()

	err = askStream(turnCtx, r.out, r.sess, turn, r.client, true)
	fmt.Fprintln(r.out)
	if err != nil {
		return err
	}

	if snap := r.sess.Message(turn.ID).Snapshot; snap != nil {
		fmt.Fprintln(r.out, style(MutedStyle,
			fmt.Sprintf("Confidence: %.0f%%  References: %d  (/sources to list)", snap.Confidence, len(snap.References)),
			r.styled))
	}
	return nil
}

// watchInterrupts cancels the streaming turn on each signal from sigs
// until the returned stop is called. stop waits for the watcher to exit.
func (r *repl) watchInterrupts(sigs <-chan os.Signal) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			case <-sigs:
				if r.cancelTurn() {
					fmt.Fprintln(r.out, "\n"+style(WarningStyle, "[Cancelled]", r.styled))
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}

func (r *repl) setCancel(cancel context.CancelFunc) {
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
}

// cancelTurn cancels the streaming answer. Returns false when idle.
func (r *repl) cancelTurn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	r.cancel = nil
	return true
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

const chatHelp = `Commands:
  /filter [all|gdpr|ai-act]  show or change the regulation filter (no argument cycles)
  /sources [n]               list the sources of the latest or n-th answer
  /ref <n>                   show the full text of reference n
  /node <id>                 show the reference behind a graph node
  /graph                     draw the citation graph
  /export [path]             save the conversation (.md or .json)
  /help                      show this help
  /quit                      leave`

// command runs a slash command. It returns false on /quit.
func (r *repl) command(line string) bool {
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "/quit", "/exit", "/q":
		return false
	case "/help", "/h", "/?":
		fmt.Fprintln(r.out, chatHelp)
	case "/filter":
		r.cmdFilter(args)
	case "/sources":
		r.cmdSources(args)
	case "/ref":
		r.cmdRef(args)
	case "/node":
		r.cmdNode(args)
	case "/graph":
		snap := r.sess.Active()
		if snap == nil {
			fmt.Fprintln(r.out, "No citation graph yet. Ask a question first.")
			break
		}
		printGraph(r.out, snap.Graph, r.sess.SelectedNode(), r.width)
	case "/export":
		r.cmdExport(args)
	default:
		r.warn(fmt.Sprintf("Unknown command %s. Type /help.", fields[0]))
	}
	return true
}

func (r *repl) cmdFilter(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Regulation filter: %s\n", r.sess.CycleFilter())
		return
	}
	f, err := model.ParseFilter(strings.Join(args, " "))
	if err != nil {
		r.warn(err.Error())
		return
	}
	r.sess.SetFilter(f)
	fmt.Fprintf(r.out, "Regulation filter: %s\n", f)
}

func (r *repl) cmdSources(args []string) {
	if len(args) > 0 {
		answers := r.sess.Answers()
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(answers) {
			r.warn(fmt.Sprintf("No answer %s with sources (have %d).", args[0], len(answers)))
			return
		}
		r.sess.RestoreHistory(answers[n-1].ID)
		fmt.Fprintf(r.out, "Sources of answer %d:\n", n)
	}
	printSources(r.out, r.sess.Active(), r.styled)
}

func (r *repl) cmdRef(args []string) {
	if len(args) != 1 {
		r.warn("Usage: /ref <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || !r.sess.SelectReference(n-1) {
		r.warn(fmt.Sprintf("No reference %s in the current sources.", args[0]))
		return
	}
	r.showDetail()
}

func (r *repl) cmdNode(args []string) {
	if len(args) != 1 {
		r.warn("Usage: /node <id>")
		return
	}
	if _, ok := r.sess.SelectNode(args[0]); !ok {
		r.warn("No retrieved reference for " + args[0])
		return
	}
	r.showDetail()
}

func (r *repl) showDetail() {
	d, ok := r.sess.Detail()
	if !ok {
		return
	}
	printDetail(r.out, d, r.styled, r.width)
	r.sess.CloseDetail()
}

func (r *repl) cmdExport(args []string) {
	t := export.Transcript{
		Conversation: r.sess.Conversation(),
		Filter:       r.sess.Filter(),
		BackendURL:   r.client.BaseURL(),
	}
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		path = filepath.Join(r.exportDir, export.DefaultFilename(t, ".md"))
	}

	written, err := export.ToFile(t, export.ForPath(path, export.DefaultOptions()), path)
	if err != nil {
		r.logger.Warn("export failed", zap.String("path", path), zap.Error(err))
		r.warn("Export failed: " + err.Error())
		return
	}
	fmt.Fprintln(r.out, style(SuccessStyle, "Exported to "+written, r.styled))
}

func (r *repl) warn(msg string) {
	fmt.Fprintln(r.out, style(WarningStyle, msg, r.styled))
}
