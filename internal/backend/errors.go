// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error talking to the Assistant Backend.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel ClientErrors by type so errors.Is(err, ErrTimeout)
// holds for any timeout.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	if t == e {
		return true
	}
	return t.Message == "" && t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeStatus
	ErrTypeTimeout
	ErrTypeInvalidResponse
)

// String returns a short name for logs.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeStatus:
		return "status"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is checks. Message is left empty so they
// match any ClientError of the same type.
var (
	ErrConnection      = &ClientError{Type: ErrTypeConnection}
	ErrStatus          = &ClientError{Type: ErrTypeStatus}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse}
)

// IsConnection reports whether err is a transport failure.
func IsConnection(err error) bool {
	return isType(err, ErrTypeConnection)
}

// IsStatus reports whether err came from a non-2xx response.
func IsStatus(err error) bool {
	return isType(err, ErrTypeStatus)
}

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool {
	return isType(err, ErrTypeTimeout)
}

func isType(err error, t ErrorType) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == t
	}
	return false
}

// classifyTransport turns an http.Client.Do error into a ClientError.
func classifyTransport(op string, err error) *ClientError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: op + " timed out", Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: op + " timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: op + " failed", Cause: err}
}

// statusError builds the error for a non-2xx response.
func statusError(op string, code int, status, detail string) *ClientError {
	msg := fmt.Sprintf("%s: backend returned %s", op, status)
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return &ClientError{Type: ErrTypeStatus, Message: msg, StatusCode: code}
}
