package domain

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorKind tells callers where a failure came from.
type ErrorKind int

const (
	// KindTransport covers unreachable servers, timeouts and malformed responses.
	KindTransport ErrorKind = iota + 1
	// KindAPI covers non-2xx responses from the server.
	KindAPI
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAPI:
		return "api"
	}
	return "unknown"
}

// Error is the only failure type produced by the HTTP client adapter.
type Error struct {
	Kind    ErrorKind
	Status  int // HTTP status for KindAPI, zero otherwise
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the server rejected the request's credentials.
func (e *Error) Unauthorized() bool {
	return e.Kind == KindAPI && e.Status == http.StatusUnauthorized
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
