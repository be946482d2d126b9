package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long: `Reconcile the stored session with the identity API and show the result.
A token the API rejects ends the session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				valid := a.state.CheckAuth(cmd.Context())
				printStatus(cmd.OutOrStdout(), a, valid)
				return nil
			})
		},
	}
}

func printStatus(out io.Writer, a *app, valid bool) {
	fmt.Fprintf(out, "API:       %s\n", a.client.BaseURL())
	if !valid {
		fmt.Fprintln(out, "Status:    Not authenticated")
		fmt.Fprintln(out, "           Run: authclient login")
		return
	}

	fmt.Fprintln(out, "Status:    Authenticated")
	if user := a.state.User(); user != nil {
		fmt.Fprintf(out, "User:      %s <%s>\n", user.DisplayName(), user.Email)
	}
	if tier, ok := a.store.TierOf(credentials.KeyAccessToken); ok {
		fmt.Fprintf(out, "Tier:      %s\n", tier)
	}
	if exp, ok := auth.TokenExpiry(a.client.AccessToken()); ok {
		fmt.Fprintf(out, "Expires:   %s (in %s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Second))
	}
	if !a.client.HasUsableAccessToken() {
		fmt.Fprintln(out, "Access:    expired, the next users request refreshes it")
	}
	refresh := "none"
	if a.client.RefreshTokenValue() != "" {
		refresh = "stored"
	}
	fmt.Fprintf(out, "Refresh:   %s\n", refresh)
}
