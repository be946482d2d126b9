package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/apiclient"
	ierrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LoginWithGoogle starts the redirect login: it asks the API for the provider's
// authorization URL, navigates there, and then polls the navigator's location until the
// provider sends the user back with a code, which is exchanged by HandleGoogleCallback.
//
// There is no timeout. The poll ends only when a code or a provider error shows up,
// or when ctx is done.
func (c *Client) LoginWithGoogle(ctx context.Context) (*Result, error) {
	if c.navigator == nil {
		return nil, &AuthError{Message: MsgGeneric, Err: ierrors.ErrNoNavigator}
	}

	raw, err := c.api.Do(ctx, http.MethodPost, PathGoogleLogin, nil, nil)
	if err != nil {
		c.metrics.Observe(metrics.OpGoogleLogin, false)
		return nil, TranslateError(err)
	}
	var payload authURLPayload
	if err := json.Unmarshal(apiclient.Unwrap(raw), &payload); err != nil || payload.AuthURL == "" {
		c.metrics.Observe(metrics.OpGoogleLogin, false)
		return nil, &AuthError{Message: MsgGeneric, Err: ierrors.ErrNoAuthURL}
	}

	if err := c.navigator.Navigate(ctx, payload.AuthURL); err != nil {
		c.metrics.Observe(metrics.OpGoogleLogin, false)
		return nil, &AuthError{Message: MsgGeneric, Err: errors.Wrap(err, "[LoginWithGoogle] navigate")}
	}
	log.Info().Msg("waiting for the identity provider to redirect back")

	code, err := c.waitForCode(ctx)
	if err != nil {
		c.metrics.Observe(metrics.OpGoogleLogin, false)
		return nil, err
	}
	c.metrics.Observe(metrics.OpGoogleLogin, true)
	return c.HandleGoogleCallback(ctx, code)
}

// HandleGoogleCallback exchanges an authorization code for a session.
// Redirect logins are never remembered: the result always goes to the session tier.
func (c *Client) HandleGoogleCallback(ctx context.Context, code string) (*Result, error) {
	raw, err := c.api.Do(ctx, http.MethodGet, PathGoogleCallback+"?code="+url.QueryEscape(code), nil, nil)
	if err != nil {
		c.metrics.Observe(metrics.OpGoogleCallback, false)
		return nil, TranslateError(err)
	}

	result, err := decodeSession(raw)
	if err != nil {
		c.metrics.Observe(metrics.OpGoogleCallback, false)
		return nil, &AuthError{Message: MsgGeneric, Err: err}
	}
	if err := c.persist(result, credentials.TierSession); err != nil {
		c.metrics.Observe(metrics.OpGoogleCallback, false)
		return nil, TranslateError(err)
	}

	c.metrics.Observe(metrics.OpGoogleCallback, true)
	log.Info().Str("user_id", result.User.ID).Msg("redirect login succeeded")
	return result, nil
}

func (c *Client) waitForCode(ctx context.Context) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		if code, done, err := codeFromLocation(c.navigator.Location()); done {
			return code, err
		}
		select {
		case <-ctx.Done():
			return "", &AuthError{Message: MsgLoginCancelled, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}

// codeFromLocation looks for the provider's answer in the query string.
func codeFromLocation(location *url.URL) (code string, done bool, err error) {
	if location == nil {
		return "", false, nil
	}
	query := location.Query()
	if code := query.Get("code"); code != "" {
		return code, true, nil
	}
	if providerErr := query.Get("error"); providerErr != "" {
		msg := query.Get("error_description")
		if msg == "" {
			msg = MsgGeneric
		}
		return "", true, &AuthError{Message: msg, Err: errors.Wrap(ierrors.ErrProviderError, providerErr)}
	}
	return "", false, nil
}
