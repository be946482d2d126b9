// Package session holds the process-wide authentication state that the navigation
// guard and the web front read.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Fallback messages recorded when a failure carries no message of its own.
const (
	MsgLoginFailed       = "Login failed"
	MsgGoogleLoginFailed = "Google login failed"
)

// Authenticator is the session client the state delegates to. *auth.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, creds auth.LoginCredentials, remember bool) (*auth.Result, error)
	LoginWithGoogle(ctx context.Context) (*auth.Result, error)
	Logout(ctx context.Context)
	VerifyToken(ctx context.Context) bool
	AccessToken() string
	UserFromToken() *users.User
	ClearCredentials()
	Now() time.Time
}

var _ Authenticator = (*auth.Client)(nil)

// Snapshot is a copy of the state at one point in time. An empty Error means no error.
type Snapshot struct {
	User      *users.User
	IsLoading bool
	Error     string
}

// IsAuthenticated derives the authentication flag from its two sources: a user is known
// and an access token that does not look expired is stored. It is never cached.
func IsAuthenticated(user *users.User, accessToken string, now time.Time) bool {
	return user != nil && auth.LooksUnexpired(accessToken, now)
}

// State is the authentication state for the life of the process.
type State struct {
	client Authenticator

	mu        sync.RWMutex
	user      *users.User
	isLoading bool
	err       string

	subsMu  sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

// New creates the state over client. Call CheckAuth once at startup to reconcile it with storage.
func New(client Authenticator) (*State, error) {
	if client == nil {
		return nil, errors.New("[session.New] authenticator is required")
	}
	return &State{
		client: client,
		subs:   make(map[int]chan Snapshot),
	}, nil
}

// Login authenticates with email and password and records the user or the error.
// The error is returned to the caller after it has been recorded.
func (s *State) Login(ctx context.Context, creds auth.LoginCredentials) (*auth.Result, error) {
	s.begin()
	defer s.finish()

	result, err := s.client.Login(ctx, creds, creds.Remember)
	if err != nil {
		s.fail(err, MsgLoginFailed)
		return nil, err
	}
	s.setUser(result.User)
	log.Info().Str("user_id", result.User.ID).Msg("login successful, user stored")
	return result, nil
}

// LoginWithGoogle runs the redirect login and records the user or the error.
// It blocks until the provider redirects back or ctx is done.
func (s *State) LoginWithGoogle(ctx context.Context) (*auth.Result, error) {
	s.begin()
	defer s.finish()

	result, err := s.client.LoginWithGoogle(ctx)
	if err != nil {
		s.fail(err, MsgGoogleLoginFailed)
		return nil, err
	}
	s.setUser(result.User)
	return result, nil
}

// Logout ends the session. The user and the stored credentials are cleared whatever
// the session client does.
func (s *State) Logout(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
		s.client.ClearCredentials()
		s.notify()
	}()
	s.client.Logout(ctx)
}

// CheckAuth reconciles the state with the stored credential and the API:
// no token means signed out, a token the API rejects means a full logout, and a valid
// token with no user in memory restores the user from the cached profile.
func (s *State) CheckAuth(ctx context.Context) bool {
	if s.client.AccessToken() == "" {
		log.Debug().Msg("no token found, user not authenticated")
		s.setUser(nil)
		return false
	}

	if !s.client.VerifyToken(ctx) {
		log.Info().Msg("token verification failed, logging out")
		s.Logout(ctx)
		return false
	}

	s.mu.Lock()
	hydrated := false
	if s.user == nil {
		if cached := s.client.UserFromToken(); cached != nil {
			s.user = cached
			hydrated = true
		} else {
			log.Debug().Msg("token valid but no cached profile to restore")
		}
	}
	s.mu.Unlock()

	if hydrated {
		log.Debug().Msg("user restored from cached profile")
		s.notify()
	}
	return true
}

// ClearError clears the recorded error and nothing else.
func (s *State) ClearError() {
	s.mu.Lock()
	changed := s.err != ""
	s.err = ""
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

// IsAuthenticated evaluates the derived flag now.
func (s *State) IsAuthenticated() bool {
	return IsAuthenticated(s.User(), s.client.AccessToken(), s.client.Now())
}

// User returns the current user or nil.
func (s *State) User() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{User: s.user, IsLoading: s.isLoading, Error: s.err}
}

// Subscribe returns a channel that receives the latest snapshot after every change,
// and a function that ends the subscription. A slow reader only sees the newest snapshot.
func (s *State) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

func (s *State) begin() {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

func (s *State) finish() {
	s.mu.Lock()
	s.isLoading = false
	s.mu.Unlock()
	s.notify()
}

func (s *State) fail(err error, fallback string) {
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

func (s *State) setUser(user *users.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.notify()
}

func (s *State) notify() {
	snap := s.Snapshot()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		// replace an unread snapshot with the newer one
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
