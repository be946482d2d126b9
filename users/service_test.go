package users_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/jrsteele09/go-auth-client/credentials/repomemory"
	ierrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/fakeapi"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/stretchr/testify/require"
)

const (
	testUserID       = "1"
	testUserEmail    = "a@b.com"
	testUserPassword = "x"
)

type testFixture struct {
	api     *fakeapi.Server
	store   *credentials.Store
	client  *auth.Client
	service *users.Service
}

func setupTestFixture(t *testing.T, signedIn bool) *testFixture {
	t.Helper()

	api := fakeapi.New()
	t.Cleanup(api.Close)
	api.AddUser(users.User{ID: testUserID, Email: testUserEmail}, testUserPassword)

	store, err := credentials.NewStore(repomemory.NewInMemoryRepo(), repomemory.NewInMemoryRepo())
	require.NoError(t, err)
	client, err := auth.NewClient(api.URL, store, auth.WithHTTPClient(api.Client()))
	require.NoError(t, err)
	service, err := users.NewService(api.URL, api.Client(), client)
	require.NoError(t, err)

	if signedIn {
		_, err := client.Login(context.Background(), auth.LoginCredentials{Email: testUserEmail, Password: testUserPassword}, false)
		require.NoError(t, err)
	}
	return &testFixture{api: api, store: store, client: client, service: service}
}

func requireMessage(t *testing.T, err error, want string) {
	t.Helper()
	var reqErr *users.RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, want, reqErr.Message)
}

func TestNewServiceRequiresTokens(t *testing.T) {
	_, err := users.NewService("http://localhost", nil, nil)
	require.Error(t, err)
}

func TestGetAll(t *testing.T) {
	tests := []struct {
		name     string
		envelope string
	}{
		{name: "Array in data", envelope: "array"},
		{name: "Users object in data", envelope: "object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, true)
			f.api.UsersEnvelope = tt.envelope
			f.api.AddUser(users.User{ID: "2", Email: "c@d.com"}, "y")

			list, err := f.service.GetAll(context.Background())
			require.NoError(t, err)
			require.Len(t, list, 2)
			require.Equal(t, testUserID, list[0].ID)
			require.Equal(t, "2", list[1].ID)
		})
	}
}

func TestGetAllUnwrappedAndUnexpectedShapes(t *testing.T) {
	f := setupTestFixture(t, true)

	f.api.Enqueue(fakeapi.RouteUsersList, fakeapi.Response{Status: http.StatusOK, Body: []map[string]string{{"id": "9", "email": "z@z.com"}}})
	list, err := f.service.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "9", list[0].ID)

	f.api.Enqueue(fakeapi.RouteUsersList, fakeapi.Response{Status: http.StatusOK, Body: map[string]any{"data": "nope"}})
	list, err = f.service.GetAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestGetAllRefreshesOnceOn401(t *testing.T) {
	f := setupTestFixture(t, true)
	before := f.client.AccessToken()
	f.api.Enqueue(fakeapi.RouteUsersList, fakeapi.Response{Status: http.StatusUnauthorized, Body: map[string]string{"message": "expired"}})

	list, err := f.service.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, testUserID, list[0].ID)

	require.Equal(t, 1, f.api.Calls(fakeapi.RouteRefresh))
	require.Equal(t, 2, f.api.Calls(fakeapi.RouteUsersList))
	require.NotEqual(t, before, f.client.AccessToken())
}

func TestGetAllSecond401IsFatal(t *testing.T) {
	f := setupTestFixture(t, true)
	unauthorized := fakeapi.Response{Status: http.StatusUnauthorized}
	f.api.Enqueue(fakeapi.RouteUsersList, unauthorized)
	f.api.Enqueue(fakeapi.RouteUsersList, unauthorized)

	_, err := f.service.GetAll(context.Background())
	requireMessage(t, err, users.MsgAuthFailed)
	require.Equal(t, 1, f.api.Calls(fakeapi.RouteRefresh))
	require.Equal(t, 2, f.api.Calls(fakeapi.RouteUsersList))
}

func TestGetAllRefreshFailure(t *testing.T) {
	f := setupTestFixture(t, true)
	f.api.Enqueue(fakeapi.RouteUsersList, fakeapi.Response{Status: http.StatusUnauthorized})
	f.api.Enqueue(fakeapi.RouteRefresh, fakeapi.Response{Status: http.StatusUnauthorized})

	_, err := f.service.GetAll(context.Background())
	requireMessage(t, err, users.MsgAuthFailed)
	require.Equal(t, 1, f.api.Calls(fakeapi.RouteUsersList))

	// a failed refresh ends the session
	_, ok := f.store.Credential()
	require.False(t, ok)
}

func TestGetAllErrors(t *testing.T) {
	t.Run("No token", func(t *testing.T) {
		f := setupTestFixture(t, false)
		_, err := f.service.GetAll(context.Background())
		requireMessage(t, err, users.MsgNoToken)
		require.ErrorIs(t, err, ierrors.ErrNoAccessToken)
		require.Zero(t, f.api.Calls(fakeapi.RouteUsersList))
	})

	t.Run("Server message", func(t *testing.T) {
		f := setupTestFixture(t, true)
		f.api.Enqueue(fakeapi.RouteUsersList, fakeapi.Response{Status: http.StatusForbidden, Body: map[string]string{"message": "Admins only"}})
		_, err := f.service.GetAll(context.Background())
		requireMessage(t, err, "Admins only")
		require.Zero(t, f.api.Calls(fakeapi.RouteRefresh))
	})

	t.Run("Fallback message", func(t *testing.T) {
		f := setupTestFixture(t, true)
		f.api.Enqueue(fakeapi.RouteUsersList, fakeapi.Response{Status: http.StatusInternalServerError})
		_, err := f.service.GetAll(context.Background())
		requireMessage(t, err, users.MsgLoadUsers)
	})
}

func TestGetByID(t *testing.T) {
	f := setupTestFixture(t, true)

	user, err := f.service.GetByID(context.Background(), testUserID)
	require.NoError(t, err)
	require.Equal(t, testUserEmail, user.Email)

	_, err = f.service.GetByID(context.Background(), "missing")
	requireMessage(t, err, "user not found")

	f.api.Enqueue(fakeapi.RouteUserInfo, fakeapi.Response{Status: http.StatusOK, Body: map[string]any{"data": map[string]string{"id": "7", "email": "w@x.com"}}})
	user, err = f.service.GetByID(context.Background(), "7")
	require.NoError(t, err)
	require.Equal(t, "w@x.com", user.Email)
}

func TestGetByIDWithoutToken(t *testing.T) {
	f := setupTestFixture(t, false)
	_, err := f.service.GetByID(context.Background(), testUserID)
	requireMessage(t, err, users.MsgNoToken)
}

func TestDisplayName(t *testing.T) {
	var nilUser *users.User
	require.Empty(t, nilUser.DisplayName())
	require.Equal(t, "a@b.com", (&users.User{Email: "a@b.com"}).DisplayName())
	require.Equal(t, "Ann", (&users.User{Email: "a@b.com", Name: "Ann"}).DisplayName())
}
