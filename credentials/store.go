package credentials

import (
	"encoding/json"
	"sync"

	ierrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Store holds the credential and cached profile across two tiers.
// At most one tier holds a value for a given key: every write clears the key from the other tier.
//
// Token values are never logged. Only keys and tiers are.
type Store struct {
	mu    sync.Mutex
	tiers map[Tier]Repo
}

// NewStore creates a store over the session and persistent backends.
func NewStore(session, persistent Repo) (*Store, error) {
	if session == nil {
		return nil, errors.New("[credentials.NewStore] session repo is required")
	}
	if persistent == nil {
		return nil, errors.New("[credentials.NewStore] persistent repo is required")
	}
	return &Store{
		tiers: map[Tier]Repo{
			TierSession:    session,
			TierPersistent: persistent,
		},
	}, nil
}

// Write stores value under key in tier and removes key from the other tier.
func (s *Store) Write(key, value string, tier Tier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(key, value, tier)
}

func (s *Store) writeLocked(key, value string, tier Tier) error {
	repo, ok := s.tiers[tier]
	if !ok {
		return errors.Errorf("[Store.Write] unknown tier %d", tier)
	}
	if err := repo.Put(key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Stringer("tier", tier).Msg("credential write failed")
		return errors.Wrapf(err, "[Store.Write] put %s", key)
	}
	if err := s.tiers[tier.Other()].Delete(key); err != nil {
		log.Warn().Err(err).Str("key", key).Stringer("tier", tier.Other()).Msg("credential clear of other tier failed")
		return errors.Wrapf(err, "[Store.Write] clear %s from %s tier", key, tier.Other())
	}
	return nil
}

// Read returns the value for key, looking in the session tier first and then the persistent tier.
func (s *Store) Read(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, _, ok := s.readLocked(key)
	return value, ok
}

// TierOf reports which tier currently holds key.
func (s *Store) TierOf(key string) (Tier, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, tier, ok := s.readLocked(key)
	return tier, ok
}

func (s *Store) readLocked(key string) (string, Tier, bool) {
	for _, tier := range []Tier{TierSession, TierPersistent} {
		value, ok, err := s.tiers[tier].Get(key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Stringer("tier", tier).Msg("credential read failed")
			continue
		}
		if ok && value != "" {
			return value, tier, true
		}
	}
	return "", TierSession, false
}

// ClearAll removes every known key from both tiers.
// It is safe to call when nothing is stored. All deletes are attempted even if one fails.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, tier := range []Tier{TierSession, TierPersistent} {
		for _, key := range Keys {
			if err := s.tiers[tier].Delete(key); err != nil {
				log.Warn().Err(err).Str("key", key).Stringer("tier", tier).Msg("credential clear failed")
				if firstErr == nil {
					firstErr = errors.Wrapf(err, "[Store.ClearAll] delete %s from %s tier", key, tier)
				}
			}
		}
	}
	return firstErr
}

// StoreCredential writes both tokens to tier.
func (s *Store) StoreCredential(cred Credential, tier Tier) error {
	if !cred.Complete() {
		return errors.Wrap(ierrors.ErrNoCredential, "[Store.StoreCredential] both tokens are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeLocked(KeyAccessToken, cred.AccessToken, tier); err != nil {
		return err
	}
	return s.writeLocked(KeyRefreshToken, cred.RefreshToken, tier)
}

// StoreUser caches the profile in tier as JSON.
func (s *Store) StoreUser(user *users.User, tier Tier) error {
	if user == nil {
		return errors.New("[Store.StoreUser] user is required")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[Store.StoreUser] marshal")
	}
	return s.Write(KeyUser, string(data), tier)
}

// Credential returns the stored token pair, if both halves are present.
func (s *Store) Credential() (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, _, okAT := s.readLocked(KeyAccessToken)
	rt, _, okRT := s.readLocked(KeyRefreshToken)
	if !okAT || !okRT {
		return Credential{}, false
	}
	return Credential{AccessToken: at, RefreshToken: rt}, true
}

// AccessToken returns the stored access token or "".
func (s *Store) AccessToken() string {
	v, _ := s.Read(KeyAccessToken)
	return v
}

// RefreshToken returns the stored refresh token or "".
func (s *Store) RefreshToken() string {
	v, _ := s.Read(KeyRefreshToken)
	return v
}

// User returns the cached profile, or nil when absent or unreadable.
func (s *Store) User() *users.User {
	data, ok := s.Read(KeyUser)
	if !ok {
		return nil
	}
	var user users.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		log.Warn().Err(err).Msg("cached user profile is not valid json")
		return nil
	}
	return &user
}

// TokenSource returns an oauth2.TokenSource that always reads the current access token.
func (s *Store) TokenSource() oauth2.TokenSource {
	return storeTokenSource{store: s}
}

type storeTokenSource struct {
	store *Store
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	at := ts.store.AccessToken()
	if at == "" {
		return nil, ierrors.ErrNoAccessToken
	}
	return Credential{AccessToken: at, RefreshToken: ts.store.RefreshToken()}.OAuth2Token(), nil
}
