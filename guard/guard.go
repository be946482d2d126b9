// Package guard decides, before every page navigation, whether to allow it or redirect.
package guard

import (
	"path"
	"strings"
)

// Default route paths
const (
	LoginPath   = "/login"
	LandingPath = "/users"
)

// Route is one entry of the routing table.
// Path may end in "/*" to match any single segment below it.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
	Redirect     string // static redirect, applied before any auth check
}

// Decision is the outcome of evaluating a navigation.
type Decision struct {
	Allow    bool
	Redirect string
}

// Table is an ordered routing table. The first matching route wins.
type Table struct {
	Routes      []Route
	LoginPath   string
	LandingPath string
}

// DefaultTable returns the application's routing table.
func DefaultTable() *Table {
	return &Table{
		Routes: []Route{
			{Path: "/", Redirect: LandingPath},
			{Path: LoginPath, Name: "Login"},
			{Path: "/users", Name: "UserList", RequiresAuth: true},
			{Path: "/users/*", Name: "UserDetail", RequiresAuth: true},
		},
		LoginPath:   LoginPath,
		LandingPath: LandingPath,
	}
}

// Lookup finds the route for a request path.
func (t *Table) Lookup(requestPath string) (Route, bool) {
	cleaned := path.Clean("/" + requestPath)
	for _, r := range t.Routes {
		if matches(r.Path, cleaned) {
			return r, true
		}
	}
	return Route{}, false
}

func matches(pattern, p string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == p
	}
	ok, err := path.Match(pattern, p)
	return err == nil && ok
}

// Decide evaluates a navigation to route given the current authentication flag.
func (t *Table) Decide(route Route, authenticated bool) Decision {
	if route.Redirect != "" {
		return Decision{Redirect: route.Redirect}
	}
	return Decide(route, authenticated, t.LoginPath, t.LandingPath)
}

// Decide is the guard rule: a protected route without authentication goes to login,
// the login route with authentication goes to the landing route, anything else is allowed.
func Decide(route Route, authenticated bool, loginPath, landingPath string) Decision {
	switch {
	case route.RequiresAuth && !authenticated:
		return Decision{Redirect: loginPath}
	case route.Path == loginPath && authenticated:
		return Decision{Redirect: landingPath}
	default:
		return Decision{Allow: true}
	}
}
