// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/regnav/internal/fixture"
)

var fixtureFlags struct {
	addr    string
	script  string
	noWatch bool
	rps     float64
	burst   int
	origins []string
}

var serveFixtureCmd = &cobra.Command{
	Use:   "serve-fixture",
	Short: "Run a local stand-in for the Assistant Backend",
	Long: `Serve /api/chat/stream, /api/chat and /api/health from a scripted set of
answers, for demos and offline development. Without --script the built-in
demo script is used. A script file is reloaded when it changes.`,
	Example: `  regnav serve-fixture
  regnav serve-fixture --addr 127.0.0.1:9000 --script answers.json
  regnav --api-url http://127.0.0.1:9000 ask "When is a DPIA required?"`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationConsoleLog: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if fixtureFlags.burst < 0 {
			return usageErrorf("--burst must not be negative")
		}

		srv, err := fixture.NewServer(&fixture.Config{
			Addr:           fixtureFlags.addr,
			ScriptPath:     fixtureFlags.script,
			Watch:          !fixtureFlags.noWatch,
			RPS:            fixtureFlags.rps,
			Burst:          fixtureFlags.burst,
			AllowedOrigins: fixtureFlags.origins,
			Logger:         appEnv.logger,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "Fixture backend on http://%s (Ctrl+C to stop)\n", fixtureFlags.addr)
		appEnv.logger.Info("fixture starting",
			zap.String("addr", fixtureFlags.addr),
			zap.String("script", fixtureFlags.script))
		return srv.Run(ctx)
	},
}

func init() {
	f := serveFixtureCmd.Flags()
	f.StringVar(&fixtureFlags.addr, "addr", fixture.DefaultAddr, "listen address")
	f.StringVar(&fixtureFlags.script, "script", "", "JSON answer script (default: built-in demo)")
	f.BoolVar(&fixtureFlags.noWatch, "no-watch", false, "do not reload the script when it changes")
	f.Float64Var(&fixtureFlags.rps, "rps", fixture.DefaultRPS, "per-client request rate limit; 0 disables")
	f.IntVar(&fixtureFlags.burst, "burst", fixture.DefaultBurst, "per-client burst size")
	f.StringSliceVar(&fixtureFlags.origins, "origin", nil, "allowed CORS origin (repeatable, default: any)")
	rootCmd.AddCommand(serveFixtureCmd)
}
