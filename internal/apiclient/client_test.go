package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-client/internal/apiclient"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.Equal(t, "yes", r.Header.Get("X-Test"))
			body, _ := io.ReadAll(r.Body)
			_, _ = w.Write(body)
		case "/teapot":
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte(`{"message":"short and stout"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("not json"))
		}
	}))
	t.Cleanup(server.Close)

	client := apiclient.New(server.URL+"/", server.Client())
	require.Equal(t, server.URL, client.BaseURL())

	raw, err := client.Do(context.Background(), http.MethodPost, "/echo", map[string]string{"a": "b"}, http.Header{"X-Test": {"yes"}})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":"b"}`, string(raw))

	_, err = client.Do(context.Background(), http.MethodGet, "/teapot", nil, nil)
	require.Equal(t, http.StatusTeapot, apiclient.StatusCode(err))
	require.Equal(t, "short and stout", apiclient.ServerMessage(err))
	require.False(t, apiclient.IsTransport(err))

	_, err = client.Do(context.Background(), http.MethodGet, "/boom", nil, nil)
	require.Equal(t, http.StatusInternalServerError, apiclient.StatusCode(err))
	require.Empty(t, apiclient.ServerMessage(err))

	server.Close()
	_, err = client.Do(context.Background(), http.MethodGet, "/echo", nil, nil)
	require.True(t, apiclient.IsTransport(err))
	require.Zero(t, apiclient.StatusCode(err))
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "Wrapped object", raw: `{"data":{"a":1}}`, want: `{"a":1}`},
		{name: "Wrapped array", raw: `{"data":[1,2]}`, want: `[1,2]`},
		{name: "Unwrapped object", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "Null data", raw: `{"data":null,"a":1}`, want: `{"data":null,"a":1}`},
		{name: "Bare array", raw: `[1]`, want: `[1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apiclient.Unwrap(json.RawMessage(tt.raw))
			require.JSONEq(t, tt.want, string(got))
		})
	}
}
