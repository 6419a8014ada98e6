// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/regnav/internal/config"
)

var configFlags struct {
	json  bool
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, locate or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (file, .env and environment merged)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd.OutOrStdout(), appEnv.cfg, configFlags.json)
	},
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the configuration file path",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipEnv: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath()
		if err != nil {
			return err
		}
		return runConfigPath(cmd.OutOrStdout(), path)
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a default configuration file",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipEnv: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath()
		if err != nil {
			return err
		}
		return runConfigInit(cmd.OutOrStdout(), path, configFlags.force)
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configFlags.json, "json", false, "print as JSON instead of TOML")
	configInitCmd.Flags().BoolVar(&configFlags.force, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// configFilePath returns --config or the default location.
func configFilePath() (string, error) {
	if globalFlags.configPath != "" {
		return globalFlags.configPath, nil
	}
	path, err := config.ConfigPath()
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	return path, nil
}

func runConfigShow(out io.Writer, cfg *config.Config, jsonMode bool) error {
	if jsonMode {
		return NewJSONResponse("config show", cfg).Print(out)
	}
	data, err := cfg.TOML()
	if err != nil {
		return &ConfigError{Err: err}
	}
	_, err = out.Write(data)
	return err
}

func runConfigPath(out io.Writer, path string) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		fmt.Fprintln(out, path)
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(out, "%s (not created yet, run 'regnav config init')\n", path)
	default:
		return &ConfigError{Err: err}
	}
	return nil
}

func runConfigInit(out io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return usageErrorf(fmt.Sprintf("%s already exists (use --force to overwrite)", path))
	}
	if err := config.SaveTOML(config.Default(), path); err != nil {
		return &ConfigError{Err: err}
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}
