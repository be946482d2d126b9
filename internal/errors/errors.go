package errors

import "errors"

// Common error types for the auth client
var (
	// Credential errors
	ErrNoAccessToken  = errors.New("no authentication token")
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrNoCredential   = errors.New("no credential stored")

	// Response errors
	ErrInvalidResponse = errors.New("invalid response")
	ErrNoAuthURL       = errors.New("no authorization url in response")

	// OAuth redirect errors
	ErrNoNavigator   = errors.New("no navigator configured")
	ErrProviderError = errors.New("identity provider returned an error")

	// Directory errors
	ErrNotFound = errors.New("not found")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

