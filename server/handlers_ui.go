package server

import (
	"github.com/jrsteele09/go-auth-client/users"
)

// PageData is the template model shared by every page.
type PageData struct {
	AppName string
	User    *users.User // signed-in user, nil on the login page
	Error   string
	Email   string // preserved on a failed login
	Users   []users.User
	Detail  *users.User
}

func (s *Server) pageData() PageData {
	return PageData{
		AppName: s.appName,
		User:    s.state.User(),
	}
}

func displayName(u any) string {
	switch v := u.(type) {
	case *users.User:
		return v.DisplayName()
	case users.User:
		return v.DisplayName()
	default:
		return ""
	}
}
