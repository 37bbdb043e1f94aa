package store

import (
	"github.com/rs/zerolog"

	"github.com/mycelian/portfolio-client/internal/kv"
)

// PortalStorageKey is the namespace key of the persisted onboarding state.
const PortalStorageKey = "portal-storage"

// PortalState is the first-visit onboarding state.
type PortalState struct {
	UserName      *string `json:"userName"`
	HasConsent    bool    `json:"hasConsent"`
	HasSeenPortal bool    `json:"hasSeenPortal"`
}

// PortalStore persists every write immediately. Name content is not
// validated here.
type PortalStore struct {
	c *Container[PortalState]
}

// NewPortalStore restores the onboarding state from ns.
func NewPortalStore(ns kv.Namespace, logger zerolog.Logger) *PortalStore {
	return &PortalStore{c: NewPersisted(PortalStorageKey, ns, PortalState{}, logger)}
}

func (p *PortalStore) State() PortalState { return p.c.Get() }

func (p *PortalStore) SetUserName(name string) {
	p.c.Update(func(s PortalState) PortalState {
		s.UserName = &name
		return s
	})
}

func (p *PortalStore) SetConsent(consent bool) {
	p.c.Update(func(s PortalState) PortalState {
		s.HasConsent = consent
		return s
	})
}

func (p *PortalStore) SetHasSeenPortal(seen bool) {
	p.c.Update(func(s PortalState) PortalState {
		s.HasSeenPortal = seen
		return s
	})
}

// ClearPortalData resets all three fields to their defaults.
func (p *PortalStore) ClearPortalData() { p.c.Set(PortalState{}) }

func (p *PortalStore) Subscribe(fn func(PortalState)) func() { return p.c.Subscribe(fn) }

func (p *PortalStore) Dispose() { p.c.Dispose() }
