package prometheus

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure a tool call can produce. Each distinct
// upstream failure mode maps deterministically to exactly one kind, so tests
// and callers can assert on the kind rather than message substrings.
type ErrorKind int

const (
	// ErrConfiguration indicates missing or invalid server configuration,
	// such as an unset Prometheus URL.
	ErrConfiguration ErrorKind = iota
	// ErrInvalidParameter indicates a malformed or missing tool argument.
	// These errors are caller-correctable.
	ErrInvalidParameter
	// ErrUpstreamTimeout indicates the Prometheus server did not respond
	// within the request timeout.
	ErrUpstreamTimeout
	// ErrUpstreamUnreachable indicates the connection to the Prometheus
	// server could not be established.
	ErrUpstreamUnreachable
	// ErrUpstreamAuth indicates the Prometheus server rejected the request
	// with HTTP 401 or 403.
	ErrUpstreamAuth
	// ErrUpstreamHTTP indicates a non-auth HTTP error status.
	ErrUpstreamHTTP
	// ErrUpstreamProtocol indicates a malformed JSON body or a response
	// envelope whose status field is not "success".
	ErrUpstreamProtocol
)

func (k ErrorKind) String() string {
	switch k {
	case ErrConfiguration:
		return "configuration"
	case ErrInvalidParameter:
		return "invalid_parameter"
	case ErrUpstreamTimeout:
		return "upstream_timeout"
	case ErrUpstreamUnreachable:
		return "upstream_unreachable"
	case ErrUpstreamAuth:
		return "upstream_auth"
	case ErrUpstreamHTTP:
		return "upstream_http"
	case ErrUpstreamProtocol:
		return "upstream_protocol"
	}
	return "unknown"
}

// Error is the error type returned by this package. It carries the
// classification kind, a user-facing message, and the wrapped cause when one
// exists.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// KindOf returns the classification of err, or ok=false when err is not an
// *Error from this package.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
