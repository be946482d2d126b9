// Package fakeapi is an in-process identity API used by tests.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/users"
	fakeuserrepo "github.com/jrsteele09/go-auth-client/users/repofake"
	"golang.org/x/crypto/bcrypt"
)

// Route patterns served by the fake, also used as keys for Enqueue and Calls.
const (
	RouteLogin          = "POST /api/v1/auth/login"
	RouteGoogleLogin    = "POST /api/v1/auth/google/login"
	RouteGoogleCallback = "GET /api/v1/auth/google/callback"
	RouteLogout         = "POST /api/v1/auth/logout"
	RouteRefresh        = "POST /api/v1/auth/refresh"
	RouteVerify         = "GET /api/v1/auth/verify"
	RouteUsersList      = "POST /api/v1/users/list"
	RouteUserInfo       = "GET /api/v1/users/info/{id}"
)

// Response is a canned reply served instead of the normal behaviour.
type Response struct {
	Status int
	Body   any
}

// Server is a running fake identity API.
type Server struct {
	*httptest.Server

	Users *fakeuserrepo.FakeUserRepo

	// UnwrappedRefresh makes the refresh endpoint answer without the "data" envelope.
	UnwrappedRefresh bool
	// RotateRefresh makes the refresh endpoint issue a new refresh token.
	RotateRefresh bool
	// UsersEnvelope selects the users list shape: "array" (default) or "object".
	UsersEnvelope string
	// AccessTokenTTL overrides DefaultAccessTokenTTL. A negative value issues expired tokens.
	AccessTokenTTL time.Duration
	// RefreshDelay holds every refresh response back for this long.
	RefreshDelay time.Duration

	mu            sync.Mutex
	passwords     map[string]string // email -> bcrypt hash
	accessTokens  map[string]string // token -> user id
	refreshTokens map[string]string // token -> user id
	codes         map[string]string // authorization code -> user id
	queued        map[string][]Response
	calls         map[string]int
	seq           int
	signer        *tokenSigner
}

// New starts a fake API. Close it with t.Cleanup(s.Close).
func New() *Server {
	s := &Server{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		passwords:     make(map[string]string),
		accessTokens:  make(map[string]string),
		refreshTokens: make(map[string]string),
		codes:         make(map[string]string),
		queued:        make(map[string][]Response),
		calls:         make(map[string]int),
		signer:        newTokenSigner(),
	}

	mux := http.NewServeMux()
	s.handle(mux, RouteLogin, s.login)
	s.handle(mux, RouteGoogleLogin, s.googleLogin)
	s.handle(mux, RouteGoogleCallback, s.googleCallback)
	s.handle(mux, RouteLogout, s.logout)
	s.handle(mux, RouteRefresh, s.refresh)
	s.handle(mux, RouteVerify, s.verify)
	s.handle(mux, RouteUsersList, s.usersList)
	s.handle(mux, RouteUserInfo, s.userInfo)
	s.Server = httptest.NewServer(mux)
	return s
}

// AddUser registers a user that can log in with password.
func (s *Server) AddUser(user users.User, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		// only passwords longer than 72 bytes are rejected
		panic(err)
	}
	_ = s.Users.Upsert(&user)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwords[user.Email] = string(hash)
}

// IssueCode returns an authorization code that the google callback exchanges for userID.
func (s *Server) IssueCode(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	code := fmt.Sprintf("code-%d", s.seq)
	s.codes[code] = userID
	return code
}

// Seed issues a token pair for userID without a login call.
func (s *Server) Seed(userID string) (accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID)
}

// Revoke invalidates an access token, as if it had expired server side.
func (s *Server) Revoke(accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accessTokens, accessToken)
}

// Enqueue makes the next call to route answer with resp. Responses queue in order.
func (s *Server) Enqueue(route string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queued[route] = append(s.queued[route], resp)
}

// Calls returns how many requests route has received.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// AuthURL is the provider page the google login points the browser at.
func (s *Server) AuthURL() string {
	return s.URL + "/provider/authorize"
}

func (s *Server) handle(mux *http.ServeMux, route string, h http.HandlerFunc) {
	mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		var canned *Response
		if q := s.queued[route]; len(q) > 0 {
			canned = &q[0]
			s.queued[route] = q[1:]
		}
		s.mu.Unlock()

		if canned != nil {
			writeJSON(w, canned.Status, canned.Body)
			return
		}
		h(w, r)
	})
}

func (s *Server) issueLocked(userID string) (string, string) {
	ttl := s.AccessTokenTTL
	if ttl == 0 {
		ttl = DefaultAccessTokenTTL
	}
	at, err := s.signer.createAccessToken(userID, time.Now(), ttl)
	if err != nil {
		// HS256 with a byte key only fails on programming errors.
		panic(err)
	}
	rt := "refresh-" + uuid.NewString()
	s.accessTokens[at] = userID
	s.refreshTokens[rt] = userID
	return at, rt
}

func (s *Server) bearerUser(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return "", false
	}
	s.mu.Lock()
	userID, ok := s.accessTokens[token]
	s.mu.Unlock()
	if !ok {
		return "", false
	}
	subject, err := s.signer.subject(token)
	if err != nil || subject != userID {
		return "", false
	}
	return userID, true
}

func (s *Server) sessionBody(userID string) (map[string]any, error) {
	user, err := s.Users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	at, rt := s.issueLocked(userID)
	s.mu.Unlock()
	return map[string]any{
		"data": map[string]any{
			"access_token":  at,
			"refresh_token": rt,
			"user":          user,
		},
	}, nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed request"})
		return
	}
	user, err := s.Users.GetByEmail(req.Email)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no such account"})
		return
	}
	s.mu.Lock()
	hash := s.passwords[req.Email]
	s.mu.Unlock()
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad password"})
		return
	}
	body, err := s.sessionBody(user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) googleLogin(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"auth_url": s.AuthURL()})
}

func (s *Server) googleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	s.mu.Lock()
	userID, ok := s.codes[code]
	delete(s.codes, code)
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid code"})
		return
	}
	body, err := s.sessionBody(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if _, ok := s.bearerUser(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}
	s.Revoke(token)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed request"})
		return
	}

	s.mu.Lock()
	delay := s.RefreshDelay
	s.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	userID, ok := s.refreshTokens[req.RefreshToken]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid refresh token"})
		return
	}
	at, rt := s.issueLocked(userID)
	if s.RotateRefresh {
		delete(s.refreshTokens, req.RefreshToken)
	} else {
		delete(s.refreshTokens, rt)
		rt = req.RefreshToken
	}
	unwrapped := s.UnwrappedRefresh
	s.mu.Unlock()

	tokens := map[string]string{"access_token": at, "refresh_token": rt}
	if unwrapped {
		writeJSON(w, http.StatusOK, tokens)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": tokens})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.bearerUser(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (s *Server) usersList(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.bearerUser(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		return
	}
	list := s.Users.List()
	if s.UsersEnvelope == "object" {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"users": list}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

func (s *Server) userInfo(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.bearerUser(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		return
	}
	user, err := s.Users.GetByID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
