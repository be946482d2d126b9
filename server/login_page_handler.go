package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/rs/zerolog"
)

// LoginPageHandler displays the login page (GET /login).
// The error shown is the one in the query string or else the last recorded one,
// which is cleared once displayed.
func (s *Server) LoginPageHandler() (http.HandlerFunc, error) {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		return nil, err
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData()
		data.User = nil
		data.Email = r.URL.Query().Get("email")
		data.Error = r.URL.Query().Get("error")
		if data.Error == "" {
			data.Error = s.state.Snapshot().Error
		}
		s.state.ClearError()

		renderPage(w, r, loginTmpl, data)
	}, nil
}

// LoginSubmissionHandler processes the login form (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		creds := auth.LoginCredentials{
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
			Remember: r.FormValue("remember") == "true",
		}
		if creds.Email == "" || creds.Password == "" {
			redirectWithError(w, r, RouteLogin, "Email and password are required")
			return
		}

		if _, err := s.state.Login(r.Context(), creds); err != nil {
			zerolog.Ctx(r.Context()).Info().Err(err).Msg("login failed")
			// the login page shows the recorded error
			redirectSuccess(w, r, RouteLogin+"?email="+url.QueryEscape(creds.Email))
			return
		}
		redirectSuccess(w, r, s.table.LandingPath)
	}
}

// LogoutHandler ends the session (POST /auth/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.state.Logout(r.Context())
		redirectSuccess(w, r, RouteLogin)
	}
}
