package auth_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/internal/apiclient"
	"github.com/stretchr/testify/require"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "401", err: &apiclient.StatusError{StatusCode: http.StatusUnauthorized, Message: "x"}, want: auth.MsgInvalidCredentials},
		{name: "404", err: &apiclient.StatusError{StatusCode: http.StatusNotFound}, want: auth.MsgAccountNotFound},
		{name: "429", err: &apiclient.StatusError{StatusCode: http.StatusTooManyRequests}, want: auth.MsgRateLimited},
		{name: "500", err: &apiclient.StatusError{StatusCode: http.StatusInternalServerError}, want: auth.MsgServerError},
		{name: "503", err: &apiclient.StatusError{StatusCode: http.StatusServiceUnavailable, Message: "down"}, want: auth.MsgServerError},
		{name: "400 with message", err: &apiclient.StatusError{StatusCode: http.StatusBadRequest, Message: "bad email"}, want: "bad email"},
		{name: "400 without message", err: &apiclient.StatusError{StatusCode: http.StatusBadRequest}, want: auth.MsgGeneric},
		{name: "No response", err: &apiclient.TransportError{Err: errors.New("dial tcp: refused")}, want: auth.MsgConnectionError},
		{name: "Other error uses its message", err: errors.New("boom"), want: "boom"},
		{name: "Other error without message", err: errors.New(""), want: auth.MsgGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := auth.TranslateError(tt.err)
			require.Equal(t, tt.want, got.Message)
			require.Equal(t, tt.want, got.Error())
			require.ErrorIs(t, got, tt.err)
		})
	}
}

func TestTranslateErrorKeepsAuthErrors(t *testing.T) {
	original := &auth.AuthError{Message: "Login cancelled"}
	require.Same(t, original, auth.TranslateError(original))
	require.Nil(t, auth.TranslateError(nil))
}
