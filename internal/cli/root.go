// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/regnav/internal/backend"
	"github.com/jeranaias/regnav/internal/config"
	"github.com/jeranaias/regnav/internal/logging"
	"github.com/jeranaias/regnav/internal/model"
)

// Build information, set with -ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command annotations read by the root pre-run hook.
const (
	// annotationSkipEnv commands run without loading config or logging.
	annotationSkipEnv = "regnav/skip-env"
	// annotationFullscreen commands own the terminal; logs never go to stderr.
	annotationFullscreen = "regnav/fullscreen"
	// annotationConsoleLog commands always mirror logs to stderr.
	annotationConsoleLog = "regnav/console-log"
)

// globalFlags are the persistent flags shared by every command.
var globalFlags struct {
	configPath string
	verbose    bool
	apiURL     string
}

// appEnv is built once per invocation by the root pre-run hook.
var appEnv struct {
	cfg    *config.Config
	logger *zap.Logger
}

var rootCmd = &cobra.Command{
	Use:   "regnav",
	Short: "Terminal navigator for the EU AI Act and GDPR assistant",
	Long: `regnav talks to a retrieval-augmented legal assistant that answers
questions about the EU AI Act and the GDPR. Without a subcommand it opens
the multi-pane terminal UI.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Args:              cobra.NoArgs,
	Annotations:       map[string]string{annotationFullscreen: "true"},
	PersistentPreRunE: setupEnv,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appEnv.logger != nil {
			_ = appEnv.logger.Sync()
		}
	},
	RunE: runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalFlags.configPath, "config", "", "config file (default ~/.regnav/config.toml)")
	pf.BoolVarP(&globalFlags.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&globalFlags.apiURL, "api-url", "", "Assistant Backend base URL (overrides config and environment)")

	addTUIFlags(rootCmd)
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style(ErrorStyle, "Error:", ColorsEnabled()), err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// =============================================================================
// ENVIRONMENT SETUP
// =============================================================================

// setupEnv loads the effective config and opens the log file.
func setupEnv(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[annotationSkipEnv] == "true" {
		appEnv.logger = logging.Nop()
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	appEnv.cfg = cfg

	console := cmd.Annotations[annotationConsoleLog] == "true" ||
		(globalFlags.verbose && cmd.Annotations[annotationFullscreen] != "true")
	appEnv.logger = openLogger(cfg, console)
	appEnv.logger.Debug("starting",
		zap.String("command", cmd.CommandPath()),
		zap.String("backend", cfg.Backend.URL),
		zap.String("version", Version))
	return nil
}

// loadConfig reads config with the --config and --api-url flags applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{Path: globalFlags.configPath})
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	if globalFlags.apiURL != "" {
		cfg.Backend.URL = globalFlags.apiURL
		if err := cfg.Validate(); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}
	return cfg, nil
}

// openLogger builds the rotating file logger. A log file that cannot be
// opened only costs diagnostics, so it degrades to a no-op logger.
func openLogger(cfg *config.Config, console bool) *zap.Logger {
	level := cfg.Log.Level
	if globalFlags.verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{
		Path:       cfg.LogPath(),
		Level:      level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Console:    console,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, style(WarningStyle, "Warning:", ColorsEnabled()), "logging disabled:", err)
		return logging.Nop()
	}
	return logger
}

// newBackendClient builds the backend client from the effective config.
func newBackendClient(cfg *config.Config, logger *zap.Logger) *backend.Client {
	return backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:           cfg.Backend.URL,
		Timeout:           cfg.Timeout(),
		StreamIdleTimeout: cfg.StreamIdle(),
		Logger:            logger,
	})
}

// resolveFilter returns the --filter value, or the configured default
// when the flag is empty.
func resolveFilter(flag string, cfg *config.Config) (model.Filter, error) {
	if flag == "" {
		return cfg.Filter(), nil
	}
	f, err := model.ParseFilter(flag)
	if err != nil {
		return "", usageErrorf(err.Error())
	}
	return f, nil
}
