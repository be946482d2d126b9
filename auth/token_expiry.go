package auth

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// ok is false for opaque tokens and JWTs without exp.
func TokenExpiry(rawToken string) (exp time.Time, ok bool) {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return time.Time{}, false
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}
	return expiry.Time, true
}

// LooksUnexpired reports whether a token is present and not visibly expired at now.
// Opaque tokens carry no expiry and always look unexpired. This is a hint, not validation.
func LooksUnexpired(rawToken string, now time.Time) bool {
	if rawToken == "" {
		return false
	}
	exp, ok := TokenExpiry(rawToken)
	if !ok {
		return true
	}
	return now.Before(exp)
}
