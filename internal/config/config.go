// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/regnav/internal/model"
	"github.com/jeranaias/regnav/internal/util"
)

// Environment variables that override the config file.
const (
	EnvAPIURL       = "REGNAV_API_URL"
	EnvAPIURLCompat = "API_URL"
	EnvLogLevel     = "REGNAV_LOG_LEVEL"
	EnvLogPath      = "REGNAV_LOG_PATH"
	EnvFilter       = "REGNAV_FILTER"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete regnav configuration.
type Config struct {
	Backend BackendConfig `toml:"backend" json:"backend"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Log     LogConfig     `toml:"log" json:"log"`
}

// BackendConfig describes how to reach the Assistant Backend.
type BackendConfig struct {
	// URL is the backend base URL
	URL string `toml:"url" json:"url"`
	// TimeoutSecs bounds non-streaming requests (chat, health)
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// StreamIdleSecs aborts a stream silent for this long; 0 disables
	StreamIdleSecs int `toml:"stream_idle_secs" json:"stream_idle_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// DefaultFilter is the regulation filter at startup: "All", "GDPR", "AI Act"
	DefaultFilter string `toml:"default_filter" json:"default_filter"`
	// Greeting replaces the opening assistant message when set
	Greeting string `toml:"greeting" json:"greeting"`
}

// LogConfig controls the rotated log file.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// Path of the log file; empty means ~/.regnav/logs/regnav.log
	Path       string `toml:"path" json:"path"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:            "http://localhost:8000",
			TimeoutSecs:    60,
			StreamIdleSecs: 120,
		},
		UI: UIConfig{
			Theme:         "dark",
			DefaultFilter: string(model.FilterAll),
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the regnav configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".regnav"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath returns the chat REPL line history file.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chat_history"), nil
}

// DefaultLogPath returns ~/.regnav/logs/regnav.log.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "regnav.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Options selects the files Load reads. Empty fields use the defaults.
type Options struct {
	// Path of the TOML file (default: ~/.regnav/config.toml)
	Path string
	// DotEnvPath of the .env file (default: ./.env)
	DotEnvPath string
}

// Load builds the effective configuration. Precedence, lowest first:
// built-in defaults, the TOML file, the .env file, the process environment.
// Missing files are not errors. The result is validated.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	path := opts.Path
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := LoadTOML(cfg, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	dotenv := opts.DotEnvPath
	if dotenv == "" {
		dotenv = DotEnvFile
	}
	fileEnv, err := godotenv.Read(dotenv)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", dotenv, err)
	}

	cfg.ApplyOverrides(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes the TOML file at path over cfg. Keys absent from the
// file keep their current values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	fillDefaults(cfg)
	return nil
}

// fillDefaults restores defaults for values a file explicitly blanked.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Backend.URL == "" {
		cfg.Backend.URL = defaults.Backend.URL
	}
	if cfg.Backend.TimeoutSecs == 0 {
		cfg.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.DefaultFilter == "" {
		cfg.UI.DefaultFilter = defaults.UI.DefaultFilter
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies overrides from the process environment only.
func (c *Config) ApplyEnvOverrides() {
	c.ApplyOverrides(os.LookupEnv)
}

// ApplyOverrides applies environment-style overrides from lookup:
//   - REGNAV_API_URL, then API_URL: backend.url
//   - REGNAV_LOG_LEVEL: log.level
//   - REGNAV_LOG_PATH: log.path
//   - REGNAV_FILTER: ui.default_filter
func (c *Config) ApplyOverrides(lookup func(string) (string, bool)) {
	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}

	if u := get(EnvAPIURL); u != "" {
		c.Backend.URL = u
	} else if u := get(EnvAPIURLCompat); u != "" {
		c.Backend.URL = u
	}
	if level := get(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	if path := get(EnvLogPath); path != "" {
		c.Log.Path = path
	}
	if filter := get(EnvFilter); filter != "" {
		c.UI.DefaultFilter = filter
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	data, err := cfg.TOML()
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// TOML encodes the configuration with a header comment.
func (c *Config) TOML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# regnav configuration file\n")
	buf.WriteString("# Environment variables REGNAV_API_URL, REGNAV_LOG_LEVEL, REGNAV_LOG_PATH\n")
	buf.WriteString("# and REGNAV_FILTER override the values below.\n\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validThemes = map[string]bool{"dark": true, "light": true, "auto": true}

// Validate checks the configuration and returns ValidateErrors on failure.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Backend.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "backend.url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Backend.URL),
		})
	}
	if c.Backend.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "backend.timeout_secs", Message: "cannot be negative"})
	}
	if c.Backend.StreamIdleSecs < 0 {
		errs = append(errs, ValidationError{Field: "backend.stream_idle_secs", Message: "cannot be negative"})
	}

	if _, err := model.ParseFilter(c.UI.DefaultFilter); err != nil {
		errs = append(errs, ValidationError{Field: "ui.default_filter", Message: err.Error()})
	}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		errs = append(errs, ValidationError{Field: "log", Message: "rotation limits cannot be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Filter returns the parsed default filter, falling back to All.
func (c *Config) Filter() model.Filter {
	f, err := model.ParseFilter(c.UI.DefaultFilter)
	if err != nil {
		return model.FilterAll
	}
	return f
}

// Timeout returns the non-streaming request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// StreamIdle returns the stream idle watchdog duration.
func (c *Config) StreamIdle() time.Duration {
	return time.Duration(c.Backend.StreamIdleSecs) * time.Second
}

// LogPath returns the log file path, resolving the default.
func (c *Config) LogPath() string {
	if c.Log.Path != "" {
		return c.Log.Path
	}
	p, err := DefaultLogPath()
	if err != nil {
		return filepath.Join(os.TempDir(), "regnav.log")
	}
	return p
}
