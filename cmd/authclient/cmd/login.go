package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type loginOptions struct {
	email    string
	password string
	remember bool
	google   bool
}

func newLoginCommand() *cobra.Command {
	opts := &loginOptions{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the identity API",
		Long: `Sign in with email and password, or with the Google redirect login.

Credentials are only kept beyond this command with --remember, which writes
them to the persistent tier. Redirect logins are never remembered.

Examples:
  authclient login --email jane@example.com --remember
  authclient login --google`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				if opts.google {
					return runGoogleLogin(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout())
				}
				return runPasswordLogin(cmd.Context(), a, opts, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "Account email")
	cmd.Flags().StringVar(&opts.password, "password", "", "Account password (read from stdin when omitted)")
	cmd.Flags().BoolVar(&opts.remember, "remember", false, "Keep the session in the persistent tier")
	cmd.Flags().BoolVar(&opts.google, "google", false, "Use the Google redirect login")
	cmd.MarkFlagsMutuallyExclusive("google", "email")
	return cmd
}

func runPasswordLogin(ctx context.Context, a *app, opts *loginOptions, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	email := opts.email
	if email == "" {
		fmt.Fprint(out, "Email: ")
		var err error
		if email, err = readLine(reader); err != nil {
			return err
		}
	}
	password := opts.password
	if password == "" {
		fmt.Fprint(out, "Password: ")
		var err error
		if password, err = readLine(reader); err != nil {
			return err
		}
	}

	result, err := a.state.Login(ctx, auth.LoginCredentials{Email: email, Password: password, Remember: opts.remember})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Logged in as %s\n", result.User.DisplayName())
	if !opts.remember {
		fmt.Fprintln(out, "The session ends with this command. Use --remember to keep it.")
	}
	return nil
}

// runGoogleLogin drives the redirect login from a terminal: the user opens the
// authorization URL, signs in, and pastes back the URL the provider redirected to.
func runGoogleLogin(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		result *auth.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := a.state.LoginWithGoogle(ctx)
		done <- outcome{result: result, err: err}
	}()

	select {
	case target := <-a.tracker.Navigations():
		fmt.Fprintf(out, "Open this URL to sign in:\n\n  %s\n\n", target)
	case o := <-done:
		return o.err
	}

	fmt.Fprint(out, "Paste the URL you were redirected to: ")
	line, err := readLine(bufio.NewReader(in))
	if err != nil {
		return err
	}
	redirected, err := url.Parse(line)
	if err != nil {
		return errors.Wrap(err, "[login] invalid redirect url")
	}
	if query := redirected.Query(); query.Get("code") == "" && query.Get("error") == "" {
		cancel()
		<-done
		return errors.New("[login] the pasted url carries no authorization code")
	}
	a.tracker.SetLocation(redirected)

	o := <-done
	if o.err != nil {
		return o.err
	}
	fmt.Fprintf(out, "Logged in as %s\n", o.result.User.DisplayName())
	tier, _ := a.store.TierOf(credentials.KeyAccessToken)
	fmt.Fprintf(out, "Credentials are held in the %s tier and end with this command.\n", tier)
	return nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", errors.Wrap(err, "[readLine] read input")
	}
	return strings.TrimSpace(line), nil
}
