package server

import (
	"net/http"
)

func (s *Server) initRoutes() error {
	loginPage, err := s.LoginPageHandler()
	if err != nil {
		return err
	}
	usersPage, err := s.UsersListHandler()
	if err != nil {
		return err
	}
	userPage, err := s.UserDetailHandler()
	if err != nil {
		return err
	}

	// PAGES (guarded)
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(loginPage, s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(usersPage, s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteUserDetail, ChainMiddleware(userPage, s.PageMiddleware()...))

	// AUTH ACTIONS
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthGoogle, ChainMiddleware(s.GoogleLoginHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...))

	// OPERATIONS
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
	s.RegisterRouteFunc("GET "+RouteHealth, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return nil
}

// IndexHandler only runs if the guard lets "/" through, which the routing table never does.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectSuccess(w, r, s.table.LandingPath)
	}
}
