package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-auth-client/internal/apiclient"
	ierrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// API paths for the users endpoints
const (
	PathList = "/api/v1/users/list"
	PathInfo = "/api/v1/users/info/"
)

// User-facing messages
const (
	MsgNoToken    = "No authentication token"
	MsgAuthFailed = "Authentication failed"
	MsgLoadUsers  = "Failed to load users"
	MsgLoadUser   = "Failed to load user"
)

// TokenProvider gives the service the current access token and a way to refresh it.
type TokenProvider interface {
	AccessToken() string
	RefreshToken(ctx context.Context) (string, error)
}

// RequestError carries a user-facing message and the underlying cause.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Service reads user records from the identity API.
type Service struct {
	api    *apiclient.Client
	tokens TokenProvider
}

// NewService creates a users service. Every request carries the provider's current
// access token as a bearer header.
func NewService(baseURL string, base *http.Client, tokens TokenProvider) (*Service, error) {
	if tokens == nil {
		return nil, errors.New("[users.NewService] token provider is required")
	}
	if base == nil {
		base = http.DefaultClient
	}
	httpClient := &http.Client{
		Timeout:       base.Timeout,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Transport: &oauth2.Transport{
			Source: providerTokenSource{tokens: tokens},
			Base:   base.Transport,
		},
	}
	return &Service{
		api:    apiclient.New(baseURL, httpClient),
		tokens: tokens,
	}, nil
}

// GetAll lists every user. A 401 triggers one refresh of the access token followed by
// a single retry; a failure in either step is fatal for the call.
func (s *Service) GetAll(ctx context.Context) ([]User, error) {
	if s.tokens.AccessToken() == "" {
		log.Debug().Msg("no authentication token available for user list request")
		return nil, &RequestError{Message: MsgNoToken, Err: ierrors.ErrNoAccessToken}
	}

	list, err := s.list(ctx)
	if err == nil {
		return list, nil
	}

	if apiclient.StatusCode(err) == http.StatusUnauthorized {
		log.Debug().Msg("user list unauthorized, refreshing access token")
		if _, refreshErr := s.tokens.RefreshToken(ctx); refreshErr != nil {
			return nil, &RequestError{Message: MsgAuthFailed, Err: refreshErr}
		}
		list, err = s.list(ctx)
		if err != nil {
			return nil, &RequestError{Message: MsgAuthFailed, Err: err}
		}
		return list, nil
	}

	return nil, &RequestError{Message: messageOr(err, MsgLoadUsers), Err: err}
}

// GetByID fetches a single user.
func (s *Service) GetByID(ctx context.Context, userID string) (*User, error) {
	if s.tokens.AccessToken() == "" {
		return nil, &RequestError{Message: MsgNoToken, Err: ierrors.ErrNoAccessToken}
	}

	raw, err := s.api.Do(ctx, http.MethodGet, PathInfo+url.PathEscape(userID), nil, nil)
	if err != nil {
		return nil, &RequestError{Message: messageOr(err, MsgLoadUser), Err: err}
	}

	var user User
	if err := json.Unmarshal(apiclient.Unwrap(raw), &user); err != nil {
		return nil, &RequestError{Message: MsgLoadUser, Err: errors.Wrap(err, "[Service.GetByID] decode")}
	}
	return &user, nil
}

func (s *Service) list(ctx context.Context) ([]User, error) {
	raw, err := s.api.Do(ctx, http.MethodPost, PathList, struct{}{}, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(raw), nil
}

// decodeList accepts a bare array or an object with a "users" array, either of them
// optionally wrapped in "data". Anything else decodes to an empty list.
func decodeList(raw json.RawMessage) []User {
	data := apiclient.Unwrap(raw)

	var list []User
	if err := json.Unmarshal(data, &list); err == nil && list != nil {
		return list
	}

	var nested struct {
		Users []User `json:"users"`
	}
	if err := json.Unmarshal(data, &nested); err == nil && nested.Users != nil {
		return nested.Users
	}

	log.Warn().Msg("users api did not return an array")
	return []User{}
}

func messageOr(err error, fallback string) string {
	if msg := apiclient.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}

type providerTokenSource struct {
	tokens TokenProvider
}

func (ts providerTokenSource) Token() (*oauth2.Token, error) {
	at := ts.tokens.AccessToken()
	if at == "" {
		return nil, ierrors.ErrNoAccessToken
	}
	return &oauth2.Token{AccessToken: at, TokenType: "Bearer"}, nil
}
