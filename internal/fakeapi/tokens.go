package fakeapi

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultAccessTokenTTL is the lifetime of issued access tokens unless AccessTokenTTL is set.
const DefaultAccessTokenTTL = 15 * time.Minute

const issuer = "fakeapi"

// tokenSigner signs access tokens with a per-server HMAC key.
type tokenSigner struct {
	key []byte
}

func newTokenSigner() *tokenSigner {
	return &tokenSigner{key: []byte(uuid.NewString())}
}

func (s *tokenSigner) createAccessToken(userID string, now time.Time, ttl time.Duration) (string, error) {
	claims := jwtlib.MapClaims{
		"iss": issuer,
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// subject returns the user of a token this server signed.
func (s *tokenSigner) subject(rawToken string) (string, error) {
	token, err := jwtlib.Parse(rawToken, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.key, nil
	}, jwtlib.WithIssuer(issuer), jwtlib.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}
