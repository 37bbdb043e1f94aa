package store

import (
	"github.com/rs/zerolog"

	"github.com/mycelian/portfolio-client/internal/kv"
	"github.com/mycelian/portfolio-client/internal/types"
)

// AuthStorageKey is the namespace key of the persisted session.
const AuthStorageKey = "auth-storage"

// AuthState is the authentication session.
// IsAuthenticated is always equal to User != nil.
type AuthState struct {
	User            *types.User `json:"user"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

// AuthStore is the sole source of truth for session identity. It makes no
// network calls; callers report login and logout outcomes to it.
type AuthStore struct {
	c *Container[AuthState]
}

// NewAuthStore restores the session from ns (or starts logged out).
func NewAuthStore(ns kv.Namespace, logger zerolog.Logger) *AuthStore {
	c := NewPersisted(AuthStorageKey, ns, AuthState{}, logger)
	// A stored record may disagree with itself; the user field wins.
	if s := c.Get(); s.IsAuthenticated != (s.User != nil) {
		c.Set(AuthState{User: s.User, IsAuthenticated: s.User != nil})
	}
	return &AuthStore{c: c}
}

// State returns the current session.
func (a *AuthStore) State() AuthState { return a.c.Get() }

// IsAuthenticated reports whether a user is present.
func (a *AuthStore) IsAuthenticated() bool { return a.c.Get().IsAuthenticated }

// SetUser records user (nil logs out) and notifies subscribers.
func (a *AuthStore) SetUser(user *types.User) {
	a.c.Set(AuthState{User: user, IsAuthenticated: user != nil})
}

// Logout is SetUser(nil).
func (a *AuthStore) Logout() { a.SetUser(nil) }

// Subscribe registers fn to observe every session update.
func (a *AuthStore) Subscribe(fn func(AuthState)) func() { return a.c.Subscribe(fn) }

// Dispose drops all subscribers.
func (a *AuthStore) Dispose() { a.c.Dispose() }
