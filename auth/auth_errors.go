package auth

import (
	"net/http"

	"github.com/jrsteele09/go-auth-client/internal/apiclient"
	"github.com/pkg/errors"
)

// User-facing messages. These strings are shown to users as-is.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgAccountNotFound    = "Account not found"
	MsgRateLimited        = "Too many attempts. Please try again later"
	MsgServerError        = "Something went wrong. Please try again"
	MsgConnectionError    = "Connection error. Please check your internet"
	MsgGeneric            = "An error occurred"
	MsgNoRefreshToken     = "No refresh token available"
	MsgLoginCancelled     = "Login cancelled"
)

// AuthError is a failed login, redirect login or refresh. Message is the only
// thing the user sees; Err keeps the cause for logs and errors.Is.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TranslateError maps a failure to the AuthError the user should see.
// The mapping depends only on the failure class.
func TranslateError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return &AuthError{Message: messageFor(err), Err: err}
}

func messageFor(err error) string {
	if status := apiclient.StatusCode(err); status != 0 {
		switch {
		case status == http.StatusUnauthorized:
			return MsgInvalidCredentials
		case status == http.StatusNotFound:
			return MsgAccountNotFound
		case status == http.StatusTooManyRequests:
			return MsgRateLimited
		case status >= 500:
			return MsgServerError
		}
		if msg := apiclient.ServerMessage(err); msg != "" {
			return msg
		}
		return MsgGeneric
	}
	if apiclient.IsTransport(err) {
		return MsgConnectionError
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgGeneric
}
