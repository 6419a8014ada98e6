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
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/regnav/internal/backend"
	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/session"
)

var askFlags struct {
	filter   string
	noStream bool
	json     bool
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the answer with its sources",
	Example: `  regnav ask "When is a DPIA required?"
  regnav ask --filter ai-act "Which systems are high-risk?"
  regnav ask --json "What is a data controller?" | jq .data.references`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := resolveFilter(askFlags.filter, appEnv.cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		styled := IsStdoutTTY() && ColorsEnabled() && !askFlags.json
		return runAsk(ctx, cmd.OutOrStdout(), newBackendClient(appEnv.cfg, appEnv.logger), askOptions{
			Query:    strings.Join(args, " "),
			Filter:   filter,
			NoStream: askFlags.noStream,
			JSON:     askFlags.json,
			Styled:   styled,
			Width:    GetTerminalWidth(),
			Logger:   appEnv.logger,
		})
	},
}

func init() {
	askCmd.Flags().StringVarP(&askFlags.filter, "filter", "f", "", "regulation filter: all, gdpr or ai-act")
	askCmd.Flags().BoolVar(&askFlags.noStream, "no-stream", false, "use the non-streaming endpoint")
	askCmd.Flags().BoolVar(&askFlags.json, "json", false, "print the result as JSON")
	rootCmd.AddCommand(askCmd)
}

// askBackend is the part of *backend.Client that ask uses.
type askBackend interface {
	StreamChat(ctx context.Context, req backend.ChatRequest, handler backend.EventHandler) error
	Chat(ctx context.Context, req backend.ChatRequest) (*backend.ChatResponse, error)
}

type askOptions struct {
	Query    string
	Filter   model.Filter
	NoStream bool
	JSON     bool
	// Styled enables colors and markdown rendering.
	Styled bool
	Width  int
	Logger *zap.Logger
}

// askResult is the --json payload.
type askResult struct {
	Query      string            `json:"query"`
	Filter     string            `json:"filter"`
	Answer     string            `json:"answer"`
	Confidence *float64          `json:"confidence"`
	References []model.Reference `json:"references"`
	Graph      *model.Graph      `json:"graph,omitempty"`
}

// runAsk sends one question through a fresh session. Streamed text is
// written to out as it arrives unless JSON output is requested.
func runAsk(ctx context.Context, out io.Writer, client askBackend, opts askOptions) error {
	sess := session.New(session.Config{Filter: opts.Filter, Logger: opts.Logger})
	turn, err := sess.Submit(opts.Query)
	if err != nil {
		if errors.Is(err, session.ErrEmptyQuery) {
			return usageErrorf("question is empty")
		}
		return err
	}

	var runErr error
	if opts.NoStream {
		runErr = askOnce(ctx, sess, turn, client)
	} else {
		runErr = askStream(ctx, out, sess, turn, client, !opts.JSON)
	}

	msg := sess.Message(turn.ID)
	if opts.JSON {
		return printAskJSON(out, opts, msg, runErr)
	}

	if opts.NoStream {
		if opts.Styled {
			fmt.Fprint(out, renderMarkdown(newMarkdownRenderer(opts.Width), msg.GetDisplayContent()))
		} else {
			fmt.Fprintln(out, msg.GetDisplayContent())
		}
	} else {
		fmt.Fprintln(out)
	}
	if runErr != nil {
		return runErr
	}

	printSources(out, msg.Snapshot, opts.Styled)
	return nil
}

// askStream streams the answer, echoing each new piece of the message
// text to out when echo is set.
func askStream(ctx context.Context, out io.Writer, sess *session.Session, turn session.Turn, client askBackend, echo bool) error {
	printed := 0
	flush := func() {
		if !echo {
			return
		}
		text := sess.Message(turn.ID).GetDisplayContent()
		if len(text) > printed {
			fmt.Fprint(out, text[printed:])
			printed = len(text)
		}
	}

	err := client.StreamChat(ctx, turn.Request, func(ev backend.Event) {
		if sess.Apply(turn.ID, ev) {
			flush()
		}
	})
	switch {
	case errors.Is(err, context.Canceled):
		// An interrupted answer keeps what arrived, without an error marker.
		sess.Complete(turn.ID)
		return err
	case err != nil:
		sess.Fail(turn.ID, err)
		flush()
		return err
	}
	sess.Complete(turn.ID)
	return nil
}

// askOnce uses the non-streaming endpoint and folds the response into the
// session as a metadata record followed by a single token.
func askOnce(ctx context.Context, sess *session.Session, turn session.Turn, client askBackend) error {
	resp, err := client.Chat(ctx, turn.Request)
	if err != nil {
		sess.Fail(turn.ID, err)
		return err
	}
	sess.Apply(turn.ID, backend.Event{
		Type:       backend.EventMetadata,
		Confidence: resp.Confidence,
		Context:    resp.Context,
		GraphData:  resp.GraphData,
	})
	sess.Apply(turn.ID, backend.Event{Type: backend.EventToken, Content: resp.Answer})
	sess.Complete(turn.ID)
	return nil
}

func printAskJSON(out io.Writer, opts askOptions, msg *model.Message, runErr error) error {
	result := askResult{
		Query:      opts.Query,
		Filter:     opts.Filter.String(),
		Answer:     msg.GetDisplayContent(),
		References: []model.Reference{},
	}
	if snap := msg.Snapshot; snap != nil {
		conf := snap.Confidence
		result.Confidence = &conf
		result.References = snap.References
		result.Graph = snap.Graph
	}
	return OutputJSON(out, "ask", func() (interface{}, error) {
		return result, runErr
	})
}
