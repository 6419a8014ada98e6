// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

var healthFlags struct {
	json bool
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the Assistant Backend is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newBackendClient(appEnv.cfg, appEnv.logger)
		styled := IsStdoutTTY() && ColorsEnabled() && !healthFlags.json
		return runHealth(cmd.Context(), cmd.OutOrStdout(), client, healthFlags.json, styled)
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthFlags.json, "json", false, "print the result as JSON")
	rootCmd.AddCommand(healthCmd)
}

// healthBackend is the part of *backend.Client that health uses.
type healthBackend interface {
	CheckHealth(ctx context.Context) error
	BaseURL() string
}

type healthResult struct {
	URL       string `json:"url"`
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latency_ms"`
}

func runHealth(ctx context.Context, out io.Writer, client healthBackend, jsonMode bool, styled bool) error {
	start := time.Now()
	err := client.CheckHealth(ctx)
	result := healthResult{
		URL:       client.BaseURL(),
		Healthy:   err == nil,
		LatencyMS: time.Since(start).Milliseconds(),
	}

	if jsonMode {
		return OutputJSON(out, "health", func() (interface{}, error) {
			return result, err
		})
	}
	if err != nil {
		fmt.Fprintf(out, "%s %s\n", style(ErrorStyle, "[FAIL]", styled), result.URL)
		return err
	}
	fmt.Fprintf(out, "%s %s (%dms)\n", style(SuccessStyle, "[OK]", styled), result.URL, result.LatencyMS)
	return nil
}
