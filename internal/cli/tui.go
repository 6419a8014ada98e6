// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/regnav/internal/session"
	"github.com/jeranaias/regnav/internal/ui/chat"
	"github.com/jeranaias/regnav/internal/ui/styles"
)

var tuiFlags struct {
	filter    string
	exportDir string
}

var tuiCmd = &cobra.Command{
	Use:         "tui",
	Short:       "Open the multi-pane terminal UI",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationFullscreen: "true"},
	RunE:        runTUI,
}

func init() {
	addTUIFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

func addTUIFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&tuiFlags.filter, "filter", "f", "", "initial regulation filter: all, gdpr or ai-act")
	cmd.Flags().StringVar(&tuiFlags.exportDir, "export-dir", "", "directory for ctrl+e exports (default: current directory)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, logger := appEnv.cfg, appEnv.logger

	filter, err := resolveFilter(tuiFlags.filter, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess := session.New(session.Config{
		Greeting: cfg.UI.Greeting,
		Filter:   filter,
		Logger:   logger,
	})
	m := chat.New(chat.Options{
		Context:   ctx,
		Backend:   newBackendClient(cfg, logger),
		Session:   sess,
		Theme:     styles.NewTheme(cfg.UI.Theme),
		Logger:    logger,
		ExportDir: tuiFlags.exportDir,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	// Stream goroutines deliver events through the program.
	m.SetProgram(p)

	final, err := p.Run()
	if fm, ok := final.(chat.Model); ok {
		fm.Close()
	}
	return err
}
