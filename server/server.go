package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/guard"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/metrics"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Deps are the session components the web front drives.
type Deps struct {
	State   *session.State
	Users   *users.Service
	Tracker *auth.LocationTracker // receives the provider redirect for the google login
	Metrics *metrics.Recorder
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	appName string
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	table   *guard.Table

	state   *session.State
	users   *users.Service
	tracker *auth.LocationTracker
	metrics *metrics.Recorder

	// baseCtx bounds background work such as a pending google login
	baseCtx context.Context

	googleLock    sync.Mutex
	googlePending *pendingLogin
}

// pendingLogin is a google login waiting for the provider to redirect back.
type pendingLogin struct {
	done   chan error
	cancel context.CancelFunc
}

// New creates the web front. Background work started by the server stops when ctx is done.
func New(ctx context.Context, config config.Config, deps Deps) (*Server, error) {
	if deps.State == nil || deps.Users == nil || deps.Tracker == nil {
		return nil, errors.New("[server.New] session state, users service and tracker are required")
	}

	s := &Server{
		env:     config.GetEnv(),
		appName: config.GetAppName(),
		mux:     http.NewServeMux(),
		config:  config,
		table:   guard.DefaultTable(),
		state:   deps.State,
		users:   deps.Users,
		tracker: deps.Tracker,
		metrics: deps.Metrics,
		baseCtx: ctx,
	}

	if err := s.initRoutes(); err != nil {
		return nil, fmt.Errorf("[server.New] failed to register routes: %w", err)
	}
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

// Shutdown cancels a pending google login.
func (s *Server) Shutdown() {
	s.googleLock.Lock()
	defer s.googleLock.Unlock()
	if s.googlePending != nil {
		s.googlePending.cancel()
		s.googlePending = nil
	}
	log.Debug().Msg("web front stopped")
}
