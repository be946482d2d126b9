package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Pages, evaluated by the navigation guard
	RouteRoot       = "/"
	RouteLogin      = "/login"
	RouteUsers      = "/users"
	RouteUserDetail = "/users/{id}"

	// Auth actions
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"
	RouteAuthGoogle = "/auth/google"
	RouteCallback   = "/callback"

	// Operations
	RouteMetrics = "/metrics"
	RouteHealth  = "/healthz"
)
