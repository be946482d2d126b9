package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/internal/apiclient"
	ierrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/metrics"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// DefaultPollInterval is how often the redirect login looks for an authorization code.
const DefaultPollInterval = time.Second

// Client performs the session operations against the identity API and owns the credential store.
type Client struct {
	store        *credentials.Store
	baseURL      string
	httpClient   *http.Client
	api          *apiclient.Client // unauthenticated calls
	bearerAPI    *apiclient.Client // calls carrying the stored access token
	navigator    Navigator
	pollInterval time.Duration
	nowTime      func() time.Time
	metrics      *metrics.Recorder

	// refreshGroup coalesces concurrent refreshes of the same refresh token
	refreshGroup singleflight.Group
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the http client used for every API call.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithNavigator sets the navigator used by the redirect login.
func WithNavigator(navigator Navigator) ClientOption {
	return func(c *Client) {
		c.navigator = navigator
	}
}

// WithPollInterval sets how often the redirect login polls for a code.
func WithPollInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// WithMetrics records operation outcomes on recorder.
func WithMetrics(recorder *metrics.Recorder) ClientOption {
	return func(c *Client) {
		c.metrics = recorder
	}
}

// NewClient creates a session client for the API at baseURL.
func NewClient(baseURL string, store *credentials.Store, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[NewClient] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[NewClient] credential store is required")
	}

	c := &Client{
		store:        store,
		baseURL:      baseURL,
		httpClient:   http.DefaultClient,
		pollInterval: DefaultPollInterval,
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(c)
	}

	c.api = apiclient.New(baseURL, c.httpClient)
	c.bearerAPI = apiclient.New(baseURL, &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: store.TokenSource(),
			Base:   c.httpClient.Transport,
		},
	})
	return c, nil
}

// BaseURL returns the identity API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the http client the session client sends through.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Login authenticates with email and password. The tokens and profile go to the
// persistent tier when remember is set and to the session tier otherwise.
func (c *Client) Login(ctx context.Context, creds LoginCredentials, remember bool) (*Result, error) {
	raw, err := c.api.Do(ctx, http.MethodPost, PathLogin, loginRequest{Email: creds.Email, Password: creds.Password}, nil)
	if err != nil {
		c.metrics.Observe(metrics.OpLogin, false)
		log.Info().Int("status", apiclient.StatusCode(err)).Msg("login rejected")
		return nil, TranslateError(err)
	}

	result, err := decodeSession(raw)
	if err != nil {
		c.metrics.Observe(metrics.OpLogin, false)
		log.Warn().Err(err).Msg("login response rejected")
		return nil, &AuthError{Message: MsgGeneric, Err: err}
	}

	tier := credentials.TierFor(remember)
	if err := c.persist(result, tier); err != nil {
		c.metrics.Observe(metrics.OpLogin, false)
		return nil, TranslateError(err)
	}

	c.metrics.Observe(metrics.OpLogin, true)
	log.Info().Str("user_id", result.User.ID).Stringer("tier", tier).Msg("login succeeded")
	return result, nil
}

// Logout asks the API to invalidate the session and then clears every stored credential.
// The server call is best effort; local logout always takes effect.
func (c *Client) Logout(ctx context.Context) {
	defer c.ClearCredentials()

	if c.store.AccessToken() == "" {
		return
	}
	if _, err := c.bearerAPI.Do(ctx, http.MethodPost, PathLogout, struct{}{}, nil); err != nil {
		c.metrics.Observe(metrics.OpLogout, false)
		log.Warn().Err(err).Msg("server logout failed, clearing local credentials anyway")
		return
	}
	c.metrics.Observe(metrics.OpLogout, true)
}

// RefreshToken exchanges the stored refresh token for a new access token and returns it.
// The new tokens are written to the tier that held the refresh token. Any failure after
// the request is sent clears every credential. Concurrent callers share one request,
// which outlives the caller that started it: a cancelled ctx only stops this caller
// from waiting.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		return "", &AuthError{Message: MsgNoRefreshToken, Err: ierrors.ErrNoRefreshToken}
	}

	refreshCtx := context.WithoutCancel(ctx)
	ch := c.refreshGroup.DoChan(refreshToken, func() (interface{}, error) {
		return c.refresh(refreshCtx, refreshToken)
	})

	select {
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Msg("stopped waiting for token refresh")
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			log.Debug().Msg("joined an in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	tier, _ := c.store.TierOf(credentials.KeyRefreshToken)

	raw, err := c.api.Do(ctx, http.MethodPost, PathRefresh, refreshRequest{RefreshToken: refreshToken}, nil)
	if err != nil {
		return "", c.failRefresh(err)
	}

	var payload refreshPayload
	if err := json.Unmarshal(apiclient.Unwrap(raw), &payload); err != nil {
		return "", c.failRefresh(errors.Wrap(ierrors.ErrInvalidResponse, err.Error()))
	}
	if payload.AccessToken == "" {
		return "", c.failRefresh(errors.Wrap(ierrors.ErrInvalidResponse, "missing access token"))
	}

	if err := c.store.Write(credentials.KeyAccessToken, payload.AccessToken, tier); err != nil {
		return "", c.failRefresh(err)
	}
	rotated := payload.RefreshToken != "" && payload.RefreshToken != refreshToken
	if rotated {
		if err := c.store.Write(credentials.KeyRefreshToken, payload.RefreshToken, tier); err != nil {
			return "", c.failRefresh(err)
		}
	}

	c.metrics.Observe(metrics.OpRefresh, true)
	log.Debug().Stringer("tier", tier).Bool("rotated", rotated).Msg("access token refreshed")
	return payload.AccessToken, nil
}

func (c *Client) failRefresh(err error) error {
	c.metrics.Observe(metrics.OpRefresh, false)
	log.Info().Err(err).Msg("token refresh failed, clearing session")
	c.ClearCredentials()
	return TranslateError(err)
}

// VerifyToken asks the API whether the stored access token is still valid.
// It never fails: a missing token or any error means false.
func (c *Client) VerifyToken(ctx context.Context) bool {
	if c.store.AccessToken() == "" {
		log.Debug().Msg("no access token found for verification")
		return false
	}
	if _, err := c.bearerAPI.Do(ctx, http.MethodGet, PathVerify, nil, nil); err != nil {
		c.metrics.Observe(metrics.OpVerify, false)
		log.Debug().Err(err).Msg("token verification failed")
		return false
	}
	c.metrics.Observe(metrics.OpVerify, true)
	return true
}

// AccessToken returns the stored access token or "".
func (c *Client) AccessToken() string {
	return c.store.AccessToken()
}

// RefreshTokenValue returns the stored refresh token or "".
func (c *Client) RefreshTokenValue() string {
	return c.store.RefreshToken()
}

// UserFromToken returns the cached profile, or nil.
func (c *Client) UserFromToken() *users.User {
	return c.store.User()
}

// HasUsableAccessToken reports whether an access token is stored and does not look expired.
func (c *Client) HasUsableAccessToken() bool {
	return LooksUnexpired(c.store.AccessToken(), c.nowTime())
}

// Now returns the client's clock.
func (c *Client) Now() time.Time {
	return c.nowTime()
}

// ClearCredentials removes every stored token and the cached profile from both tiers.
func (c *Client) ClearCredentials() {
	if err := c.store.ClearAll(); err != nil {
		log.Error().Err(err).Msg("failed to clear stored credentials")
	}
}

// persist writes the tokens and then the profile. A failure part way clears both tiers
// so no partial credential is left behind.
func (c *Client) persist(result *Result, tier credentials.Tier) error {
	if err := c.store.StoreCredential(result.Credential, tier); err != nil {
		c.ClearCredentials()
		return errors.Wrap(err, "[Client.persist] store credential")
	}
	if err := c.store.StoreUser(result.User, tier); err != nil {
		c.ClearCredentials()
		return errors.Wrap(err, "[Client.persist] store user")
	}
	return nil
}
