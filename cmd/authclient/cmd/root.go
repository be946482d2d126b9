package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jrsteele09/go-auth-client/auth"
	ierrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/spf13/cobra"
)

// Exit codes for CLI commands
const (
	ExitCodeSuccess      = 0
	ExitCodeError        = 1
	ExitCodeAuthRequired = 2 // no stored session, run login first
	ExitCodeAuthFailed   = 3 // the API rejected a login or refresh
)

// NewRootCommand builds the authclient command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "authclient",
		Short: "Session and credential manager for the identity API",
		Long: `authclient signs in to the identity API, keeps the resulting tokens in a
session tier (this process) or a persistent tier (a bbolt file in the data
folder), and serves a small web front whose pages are guarded by the
stored session.

Configuration comes from the environment (API_BASE_URL, FOLDER, PORT,
LOG_LEVEL, HTTP_TIMEOUT, OAUTH_POLL_INTERVAL, OPEN_BROWSER, ENV).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newLoginCommand(),
		newLogoutCommand(),
		newStatusCommand(),
		newUsersCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExitCodeFor(err)
	}
	return ExitCodeSuccess
}

// ExitCodeFor maps an error to a semantic exit code for scripting.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	if errors.Is(err, ierrors.ErrNoAccessToken) || errors.Is(err, ierrors.ErrNoRefreshToken) {
		return ExitCodeAuthRequired
	}
	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		return ExitCodeAuthFailed
	}
	return ExitCodeError
}
