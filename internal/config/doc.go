// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates and saves the regnav configuration.
//
// # Configuration Precedence
//
// Highest wins:
//   - process environment (REGNAV_API_URL, API_URL, REGNAV_LOG_LEVEL, REGNAV_LOG_PATH, REGNAV_FILTER)
//   - ./.env
//   - ~/.regnav/config.toml (or --config)
//   - built-in defaults
//
// # Usage
//
//	cfg, err := config.Load(config.Options{})
//	if err != nil {
//	    return err
//	}
//	client := backend.NewClientWithConfig(&backend.ClientConfig{
//	    BaseURL: cfg.Backend.URL,
//	    Timeout: cfg.Timeout(),
//	})
package config
