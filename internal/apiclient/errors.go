package apiclient

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// StatusError is returned when the API answered with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string // server-provided "message" field, may be empty
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api status %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// TransportError is returned when a request produced no response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "no response from api: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 when there is none.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// ServerMessage returns the server-provided message carried by err, or "".
func ServerMessage(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}
	return ""
}

// IsTransport reports whether err means the request got no response.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
