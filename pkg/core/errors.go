package core

import (
	"fmt"
)

// Error is the canonical error type for the voice client.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// ErrConfigUnavailable means the runtime config fetch failed or timed
	// out. Callers fall back to built-in defaults; never fatal.
	ErrConfigUnavailable ErrorType = "config_unavailable"

	// ErrPermissionDenied means capture device access was refused. The
	// session surfaces Error state and the user must retry.
	ErrPermissionDenied ErrorType = "permission_denied"

	// ErrChannel is a transport-level failure reported by the realtime
	// channel. Terminal for the current session.
	ErrChannel ErrorType = "channel_error"

	// ErrMalformedPayload means an inbound audio chunk could not be
	// decoded. The chunk is dropped; session state is unchanged.
	ErrMalformedPayload ErrorType = "malformed_payload"

	// ErrInvalidRequest covers caller mistakes (bad voice name, empty
	// model, nil arguments).
	ErrInvalidRequest ErrorType = "invalid_request_error"
)

// NewConfigUnavailableError creates a config fetch error.
func NewConfigUnavailableError(message string) *Error {
	return &Error{
		Type:    ErrConfigUnavailable,
		Message: message,
	}
}

// NewPermissionDeniedError creates a capture permission error.
func NewPermissionDeniedError(message string) *Error {
	return &Error{
		Type:    ErrPermissionDenied,
		Message: message,
	}
}

// NewChannelError creates a transport error for the realtime channel.
func NewChannelError(message string) *Error {
	return &Error{
		Type:    ErrChannel,
		Message: message,
	}
}

// NewMalformedPayloadError creates a codec decode error.
func NewMalformedPayloadError(message string) *Error {
	return &Error{
		Type:    ErrMalformedPayload,
		Message: message,
	}
}

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return &Error{
		Type:    ErrInvalidRequest,
		Message: message,
	}
}

// IsFatal reports whether the error forces the session out of Connected.
// Config and codec errors are recoverable in place; everything else
// terminates the current session.
func (e *Error) IsFatal() bool {
	switch e.Type {
	case ErrConfigUnavailable, ErrMalformedPayload:
		return false
	default:
		return true
	}
}
