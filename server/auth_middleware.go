package server

import (
	"net/http"

	"github.com/rs/zerolog"
)

// NavigationGuard evaluates the routing table before every page is served.
// Paths outside the table are passed through unchanged.
func (s *Server) NavigationGuard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route, ok := s.table.Lookup(r.URL.Path)
		if !ok {
			next(w, r)
			return
		}

		decision := s.table.Decide(route, s.state.IsAuthenticated())
		if !decision.Allow {
			zerolog.Ctx(r.Context()).Debug().
				Str("path", r.URL.Path).
				Str("route", route.Name).
				Str("redirect", decision.Redirect).
				Msg("navigation redirected")
			redirectSuccess(w, r, decision.Redirect)
			return
		}
		next(w, r)
	}
}
