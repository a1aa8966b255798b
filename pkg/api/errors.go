package api

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionTerminated is wrapped by the NotFoundError returned when a
	// request targets a stream session that has already ended.
	ErrSessionTerminated = errors.New("session terminated")

	// ErrOwnerGone reports that a consumer was already terminated when a
	// session tried to start monitoring it.
	ErrOwnerGone = errors.New("owner is no longer alive")

	// ErrShutdown is the termination reason of sessions removed by an
	// administrative shutdown.
	ErrShutdown = errors.New("session terminated by registry")
)

// NotFoundError reports a 404 from the daemon when the caller marked 404 as
// meaningful, or a request against a session that no longer exists.
type NotFoundError struct {
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return "not found: " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *NotFoundError) Unwrap() error {
	return e.cause
}

// RequestError reports a 4xx/5xx daemon response carrying a structured
// error body.
type RequestError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed (HTTP %d): %s", e.Status, e.Message)
}

// ProtocolDefect reports a response that violates the daemon protocol: an
// unexpected status, a non-JSON error body, or a malformed stream chunk.
// It is not a recoverable condition and callers should not retry.
type ProtocolDefect struct {
	Status int    `json:"status,omitempty"`
	Detail string `json:"detail"`
	cause  error
}

// Error implements the error interface.
func (e *ProtocolDefect) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("protocol defect (HTTP %d): %s", e.Status, e.Detail)
	}
	return "protocol defect: " + e.Detail
}

// Unwrap returns the underlying cause, if any.
func (e *ProtocolDefect) Unwrap() error {
	return e.cause
}

// ArgumentError reports an invalid caller-supplied option. It is always
// returned before any network call is made.
type ArgumentError struct {
	Option  string `json:"option"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("invalid argument: %s (option: %s)", e.Message, e.Option)
	}
	return "invalid argument: " + e.Message
}

// NewNotFoundError creates a NotFoundError with the given message.
func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

// NewSessionNotFoundError creates a NotFoundError for a session that has
// already terminated or was never registered.
func NewSessionNotFoundError(id string) *NotFoundError {
	return &NotFoundError{
		Message: fmt.Sprintf("session %s", id),
		cause:   ErrSessionTerminated,
	}
}

// NewRequestError creates a RequestError for the given HTTP status.
func NewRequestError(status int, message string) *RequestError {
	return &RequestError{Status: status, Message: message}
}

// NewProtocolDefect creates a ProtocolDefect. cause may be nil.
func NewProtocolDefect(status int, detail string, cause error) *ProtocolDefect {
	return &ProtocolDefect{Status: status, Detail: detail, cause: cause}
}

// NewArgumentError creates an ArgumentError for the named option.
func NewArgumentError(option, message string) *ArgumentError {
	return &ArgumentError{Option: option, Message: message}
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
