// Package remote is the HTTP client for the shared clipboard service. It
// performs exactly one request per call: retry and backoff policy belongs to
// the caller.
package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind separates failures that never produced an HTTP response from
// responses with a non-success status.
type Kind int

const (
	// KindTransport covers DNS, connect, TLS, timeout, and body read failures.
	KindTransport Kind = iota
	// KindHTTPStatus covers responses outside the 2xx range.
	KindHTTPStatus
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http-status"
	default:
		return "unknown"
	}
}

// Sentinel errors for classification. Use errors.Is(err, remote.ErrNotFound).
var (
	ErrTransport       = errors.New("remote: transport failure")
	ErrBadRequest      = errors.New("remote: bad request")
	ErrUnauthorized    = errors.New("remote: unauthorized")
	ErrForbidden       = errors.New("remote: forbidden")
	ErrNotFound        = errors.New("remote: not found")
	ErrPayloadTooLarge = errors.New("remote: payload too large")
	ErrThrottled       = errors.New("remote: throttled")
	ErrServerError     = errors.New("remote: server error")
	ErrUnexpected      = errors.New("remote: unexpected status")
)

// Error is returned by every failed Client call.
type Error struct {
	Op         string // fetch, push, put
	Kind       Kind
	StatusCode int    // zero for transport failures
	Message    string // response body (truncated) or transport error text
	Err        error  // sentinel, for errors.Is()
	cause      error
}

func (e *Error) Error() string {
	if e.Kind == KindTransport {
		return fmt.Sprintf("remote: %s: %s", e.Op, e.Message)
	}

	if e.Message == "" {
		return fmt.Sprintf("remote: %s: HTTP %d", e.Op, e.StatusCode)
	}

	return fmt.Sprintf("remote: %s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
}

// Unwrap exposes both the sentinel and, for transport failures, the
// underlying network error.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}

	return []error{e.Err}
}

// classifyStatus maps a non-2xx HTTP status code to a sentinel error.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusRequestEntityTooLarge:
		return ErrPayloadTooLarge
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return ErrUnexpected
	}
}
