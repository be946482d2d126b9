package auth

import (
	"encoding/json"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/apiclient"
	ierrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
)

// Identity API paths
const (
	PathLogin          = "/api/v1/auth/login"
	PathGoogleLogin    = "/api/v1/auth/google/login"
	PathGoogleCallback = "/api/v1/auth/google/callback"
	PathLogout         = "/api/v1/auth/logout"
	PathRefresh        = "/api/v1/auth/refresh"
	PathVerify         = "/api/v1/auth/verify"
)

// LoginCredentials is what the user types into the login form.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"-"` // keep the session across restarts
}

// Result is an established session: the token pair and the user it belongs to.
type Result struct {
	Credential credentials.Credential
	User       *users.User
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionPayload struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *users.User `json:"user"`
}

type refreshPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type authURLPayload struct {
	AuthURL string `json:"auth_url"`
}

// decodeSession validates a login or callback body. Nothing is stored until this passes.
func decodeSession(raw json.RawMessage) (*Result, error) {
	var payload sessionPayload
	if err := json.Unmarshal(apiclient.Unwrap(raw), &payload); err != nil {
		return nil, errors.Wrap(ierrors.ErrInvalidResponse, err.Error())
	}
	cred := credentials.Credential{AccessToken: payload.AccessToken, RefreshToken: payload.RefreshToken}
	if !cred.Complete() {
		return nil, errors.Wrap(ierrors.ErrInvalidResponse, "missing tokens")
	}
	if payload.User == nil || payload.User.ID == "" {
		return nil, errors.Wrap(ierrors.ErrInvalidResponse, "missing user")
	}
	return &Result{Credential: cred, User: payload.User}, nil
}
