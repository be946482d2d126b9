package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Messages shown on the login page when the redirect login cannot complete.
const (
	MsgNoLoginInProgress = "No login in progress"
	MsgLoginTimedOut     = "Login timed out. Please try again"
)

// GoogleLoginHandler starts the redirect login (POST /auth/google) and sends the browser
// to the provider. The login keeps running in the background until the provider
// redirects back to the callback route or the server stops.
func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending := s.startGoogleLogin()

		select {
		case target := <-s.tracker.Navigations():
			http.Redirect(w, r, target, http.StatusSeeOther)
		case err := <-pending.done:
			s.finishGoogleLogin(pending)
			redirectWithError(w, r, RouteLogin, errorMessage(err))
		case <-time.After(s.config.GetNavigationTimeout()):
			s.finishGoogleLogin(pending)
			redirectWithError(w, r, RouteLogin, MsgLoginTimedOut)
		}
	}
}

// OAuthCallbackHandler receives the provider redirect (GET /callback), reports the
// location to the pending login and waits for the code exchange.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.googleLock.Lock()
		pending := s.googlePending
		s.googleLock.Unlock()
		if pending == nil {
			redirectWithError(w, r, RouteLogin, MsgNoLoginInProgress)
			return
		}

		s.tracker.SetLocation(r.URL)

		select {
		case err := <-pending.done:
			s.finishGoogleLogin(pending)
			if err != nil {
				zerolog.Ctx(r.Context()).Info().Err(err).Msg("google login failed")
				redirectWithError(w, r, RouteLogin, errorMessage(err))
				return
			}
			redirectSuccess(w, r, s.table.LandingPath)
		case <-time.After(s.config.GetCallbackWait()):
			s.finishGoogleLogin(pending)
			redirectWithError(w, r, RouteLogin, MsgLoginTimedOut)
		case <-r.Context().Done():
			// the login keeps running; a reload of the callback page picks it up
		}
	}
}

// startGoogleLogin replaces any pending login with a new one.
func (s *Server) startGoogleLogin() *pendingLogin {
	s.googleLock.Lock()
	defer s.googleLock.Unlock()

	if s.googlePending != nil {
		log.Debug().Msg("replacing pending google login")
		s.googlePending.cancel()
	}
	s.tracker.DiscardNavigation()

	ctx, cancel := context.WithCancel(s.baseCtx)
	pending := &pendingLogin{done: make(chan error, 1), cancel: cancel}
	s.googlePending = pending

	go func() {
		_, err := s.state.LoginWithGoogle(ctx)
		pending.done <- err
	}()
	return pending
}

// finishGoogleLogin stops pending and forgets it if it is still the current login.
func (s *Server) finishGoogleLogin(pending *pendingLogin) {
	s.googleLock.Lock()
	defer s.googleLock.Unlock()
	pending.cancel()
	if s.googlePending == pending {
		s.googlePending = nil
	}
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "An error occurred"
	}
	return err.Error()
}
