// Package tokens keeps the API access and refresh tokens in the state
// namespace so a session survives restarts.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/mycelian/portfolio-client/internal/kv"
	"github.com/mycelian/portfolio-client/internal/store"
	"github.com/mycelian/portfolio-client/internal/types"
)

// StorageKey is the namespace key holding the token pair.
const StorageKey = "auth-tokens"

// ErrNoExpiry is returned by Expiry for tokens without an exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// Store is a persisted access/refresh token pair.
type Store struct {
	c *store.Container[types.Tokens]
}

// NewStore loads the pair from ns.
func NewStore(ns kv.Namespace, logger zerolog.Logger) *Store {
	return &Store{c: store.NewPersisted(StorageKey, ns, types.Tokens{}, logger)}
}

// NewMemoryStore returns a Store that is not persisted.
func NewMemoryStore() *Store {
	return &Store{c: store.New(types.Tokens{})}
}

func (s *Store) Access() string  { return s.c.Get().Access }
func (s *Store) Refresh() string { return s.c.Get().Refresh }

// Set replaces both tokens.
func (s *Store) Set(t types.Tokens) { s.c.Set(t) }

// SetAccess replaces the access token, keeping the refresh token.
func (s *Store) SetAccess(access string) {
	s.c.Update(func(t types.Tokens) types.Tokens {
		t.Access = access
		return t
	})
}

// Clear drops both tokens.
func (s *Store) Clear() { s.c.Set(types.Tokens{}) }

// Expiry reads the exp claim of the access token. The signature is not
// checked; the server remains the authority on validity.
func (s *Store) Expiry() (time.Time, error) {
	return Expiry(s.Access())
}

// Expired reports whether the access token is missing or past its expiry
// at now. Tokens that do not decode as a JWT, or carry no exp, are left
// for the server to judge and count as not expired.
func (s *Store) Expired(now time.Time) bool {
	if s.Access() == "" {
		return true
	}
	exp, err := s.Expiry()
	if err != nil {
		return false
	}
	return !now.Before(exp)
}

// Expiry decodes the exp claim of a JWT without verifying it.
func Expiry(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
