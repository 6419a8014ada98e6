// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	"github.com/jeranaias/regnav/internal/backend"
	"github.com/jeranaias/regnav/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates an unreadable or invalid config
	ExitConfigError = 3
	// ExitNetworkError indicates the backend could not be reached
	ExitNetworkError = 5
	// ExitTimeoutError indicates a request timed out
	ExitTimeoutError = 8
)

// UsageError marks bad arguments or flag values.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageErrorf(msg string) error {
	return &UsageError{Message: msg}
}

// ConfigError wraps a failure to load or save configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "config: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// GetExitCode determines the exit code for an error returned by a command.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var configErr *ConfigError
	var validateErrs config.ValidateErrors
	if errors.As(err, &configErr) || errors.As(err, &validateErrs) {
		return ExitConfigError
	}

	switch {
	case backend.IsTimeout(err):
		return ExitTimeoutError
	case backend.IsConnection(err), backend.IsStatus(err):
		return ExitNetworkError
	}
	return ExitGeneralError
}
