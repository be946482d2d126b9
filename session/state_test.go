package session_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/repomemory"
	"github.com/jrsteele09/go-auth-client/internal/fakeapi"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/stretchr/testify/require"
)

const (
	testUserID       = "user-1"
	testUserEmail    = "jane.doe@example.com"
	testUserPassword = "password123"
)

type testFixture struct {
	api        *fakeapi.Server
	session    *repomemory.InMemoryRepo
	persistent *repomemory.InMemoryRepo
	store      *credentials.Store
	client     *auth.Client
	state      *session.State
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	api := fakeapi.New()
	t.Cleanup(api.Close)
	api.AddUser(users.User{ID: testUserID, Email: testUserEmail}, testUserPassword)

	sessionRepo := repomemory.NewInMemoryRepo()
	persistentRepo := repomemory.NewInMemoryRepo()
	store, err := credentials.NewStore(sessionRepo, persistentRepo)
	require.NoError(t, err)

	client, err := auth.NewClient(api.URL, store, auth.WithHTTPClient(api.Client()))
	require.NoError(t, err)

	state, err := session.New(client)
	require.NoError(t, err)

	return &testFixture{
		api:        api,
		session:    sessionRepo,
		persistent: persistentRepo,
		store:      store,
		client:     client,
		state:      state,
	}
}

func validCreds(remember bool) auth.LoginCredentials {
	return auth.LoginCredentials{Email: testUserEmail, Password: testUserPassword, Remember: remember}
}

func TestNewRequiresAuthenticator(t *testing.T) {
	_, err := session.New(nil)
	require.Error(t, err)
}

func TestLoginRemembered(t *testing.T) {
	f := setupTestFixture(t)

	result, err := f.state.Login(context.Background(), validCreds(true))
	require.NoError(t, err)
	require.Equal(t, testUserID, result.User.ID)

	snap := f.state.Snapshot()
	require.Equal(t, testUserID, snap.User.ID)
	require.False(t, snap.IsLoading)
	require.Empty(t, snap.Error)
	require.True(t, f.state.IsAuthenticated())

	for _, key := range credentials.Keys {
		_, ok, err := f.persistent.Get(key)
		require.NoError(t, err)
		require.True(t, ok, "persistent tier should hold %s", key)
	}
	require.Zero(t, f.session.Len())
}

func TestLoginFailureRecordsError(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.state.Login(context.Background(), auth.LoginCredentials{Email: testUserEmail, Password: "wrong"})
	require.Error(t, err)

	snap := f.state.Snapshot()
	require.Nil(t, snap.User)
	require.False(t, snap.IsLoading)
	require.Equal(t, auth.MsgInvalidCredentials, snap.Error)
	require.False(t, f.state.IsAuthenticated())

	f.state.ClearError()
	require.Empty(t, f.state.Snapshot().Error)
}

func TestLoginClearsPreviousError(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Enqueue(fakeapi.RouteLogin, fakeapi.Response{Status: http.StatusTooManyRequests})

	_, err := f.state.Login(context.Background(), validCreds(false))
	require.Error(t, err)
	require.Equal(t, auth.MsgRateLimited, f.state.Snapshot().Error)

	_, err = f.state.Login(context.Background(), validCreds(false))
	require.NoError(t, err)
	require.Empty(t, f.state.Snapshot().Error)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.state.Login(context.Background(), validCreds(true))
	require.NoError(t, err)

	f.state.Logout(context.Background())

	require.Nil(t, f.state.User())
	require.False(t, f.state.IsAuthenticated())
	require.Zero(t, f.session.Len())
	require.Zero(t, f.persistent.Len())
}

func TestCheckAuth(t *testing.T) {
	t.Run("No token", func(t *testing.T) {
		f := setupTestFixture(t)
		require.False(t, f.state.CheckAuth(context.Background()))
		require.Nil(t, f.state.User())
		require.Zero(t, f.api.Calls(fakeapi.RouteVerify))
	})

	t.Run("Valid token restores cached user", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.client.Login(context.Background(), validCreds(true), true)
		require.NoError(t, err)

		// a fresh state, as after a restart
		state, err := session.New(f.client)
		require.NoError(t, err)
		require.Nil(t, state.User())

		require.True(t, state.CheckAuth(context.Background()))
		require.Equal(t, testUserEmail, state.User().Email)
		require.True(t, state.IsAuthenticated())
	})

	t.Run("Valid token without cached user", func(t *testing.T) {
		f := setupTestFixture(t)
		at, rt := f.api.Seed(testUserID)
		require.NoError(t, f.store.StoreCredential(credentials.Credential{AccessToken: at, RefreshToken: rt}, credentials.TierSession))

		require.True(t, f.state.CheckAuth(context.Background()))
		require.Nil(t, f.state.User())
		require.False(t, f.state.IsAuthenticated())
	})

	t.Run("Rejected token logs out", func(t *testing.T) {
		f := setupTestFixture(t)
		result, err := f.state.Login(context.Background(), validCreds(true))
		require.NoError(t, err)
		f.api.Revoke(result.Credential.AccessToken)

		require.False(t, f.state.CheckAuth(context.Background()))
		require.Nil(t, f.state.User())
		require.Zero(t, f.session.Len())
		require.Zero(t, f.persistent.Len())
	})
}

func TestIsAuthenticated(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	user := &users.User{ID: "u"}

	require.False(t, session.IsAuthenticated(nil, "access-1", now))
	require.False(t, session.IsAuthenticated(user, "", now))
	require.True(t, session.IsAuthenticated(user, "access-1", now))
}

func TestIsAuthenticatedWithExpiredAccessToken(t *testing.T) {
	f := setupTestFixture(t)
	f.api.AccessTokenTTL = -time.Minute

	_, err := f.state.Login(context.Background(), validCreds(false))
	require.NoError(t, err)
	require.NotNil(t, f.state.User())
	require.False(t, f.state.IsAuthenticated())
}

func TestSubscribe(t *testing.T) {
	f := setupTestFixture(t)
	updates, cancel := f.state.Subscribe()
	defer cancel()

	_, err := f.state.Login(context.Background(), validCreds(false))
	require.NoError(t, err)

	// only the newest snapshot is kept for a slow reader
	select {
	case snap := <-updates:
		require.False(t, snap.IsLoading)
		require.Equal(t, testUserID, snap.User.ID)
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}

	cancel()
	_, open := <-updates
	require.False(t, open)
	cancel()
}

// stubAuthenticator fails every login with the configured error.
type stubAuthenticator struct {
	loginErr error
}

func (s *stubAuthenticator) Login(context.Context, auth.LoginCredentials, bool) (*auth.Result, error) {
	return nil, s.loginErr
}

func (s *stubAuthenticator) LoginWithGoogle(context.Context) (*auth.Result, error) {
	return nil, s.loginErr
}

func (s *stubAuthenticator) Logout(context.Context)          {}
func (s *stubAuthenticator) VerifyToken(context.Context) bool { return false }
func (s *stubAuthenticator) AccessToken() string              { return "" }
func (s *stubAuthenticator) UserFromToken() *users.User       { return nil }
func (s *stubAuthenticator) ClearCredentials()                {}
func (s *stubAuthenticator) Now() time.Time                   { return time.Now() }

func TestLoginFallbackMessages(t *testing.T) {
	state, err := session.New(&stubAuthenticator{loginErr: &auth.AuthError{Err: errors.New("no message")}})
	require.NoError(t, err)

	_, err = state.Login(context.Background(), validCreds(false))
	require.Error(t, err)
	require.Equal(t, session.MsgLoginFailed, state.Snapshot().Error)

	_, err = state.LoginWithGoogle(context.Background())
	require.Error(t, err)
	require.Equal(t, session.MsgGoogleLoginFailed, state.Snapshot().Error)
}
