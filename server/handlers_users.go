package server

import (
	"net/http"

	ierrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/rs/zerolog"
)

// UsersListHandler renders the user directory (GET /users)
func (s *Server) UsersListHandler() (http.HandlerFunc, error) {
	tmpl, err := ParseTemplate("users.html")
	if err != nil {
		return nil, err
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData()
		list, err := s.users.GetAll(r.Context())
		if err != nil {
			if s.sessionEnded(err) {
				s.state.CheckAuth(r.Context())
				redirectSuccess(w, r, RouteLogin)
				return
			}
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to load users")
			data.Error = err.Error()
		}
		data.Users = list
		renderPage(w, r, tmpl, data)
	}, nil
}

// UserDetailHandler renders one user (GET /users/{id})
func (s *Server) UserDetailHandler() (http.HandlerFunc, error) {
	tmpl, err := ParseTemplate("user.html")
	if err != nil {
		return nil, err
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData()
		user, err := s.users.GetByID(r.Context(), r.PathValue("id"))
		if err != nil {
			if s.sessionEnded(err) {
				s.state.CheckAuth(r.Context())
				redirectSuccess(w, r, RouteLogin)
				return
			}
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to load user")
			data.Error = err.Error()
		}
		data.Detail = user
		renderPage(w, r, tmpl, data)
	}, nil
}

// sessionEnded reports whether a failure left the user signed out, in which case
// the page sends them to the login route like the guard would.
func (s *Server) sessionEnded(err error) bool {
	return ierrors.Is(err, ierrors.ErrNoAccessToken) || !s.state.IsAuthenticated()
}
