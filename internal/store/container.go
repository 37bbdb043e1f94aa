// Package store holds the application state containers: authentication
// session, first-visit portal state, chat session and notification feed.
//
// Every container exposes synchronous reads, synchronous updates and
// subscribable change notification. Persisted containers additionally
// serialise their whole record into a kv.Namespace on every update.
package store

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mycelian/portfolio-client/internal/kv"
)

// recordVersion is written alongside persisted state so a future layout
// change can be detected on load.
const recordVersion = 0

type persistedRecord[S any] struct {
	State   S   `json:"state"`
	Version int `json:"version"`
}

type subscriber[S any] struct {
	id int
	fn func(S)
}

// Container is a reactive state holder for a record of type S.
//
// Updates are applied under a lock; subscribers are then called
// synchronously, in registration order, with the state that update
// produced, after the lock is released. A subscriber may therefore update
// this or any other container. Order between subscribers is not part of
// the contract.
type Container[S any] struct {
	mu     sync.Mutex
	state  S
	subs   []subscriber[S]
	nextID int

	name string
	ns   kv.Namespace
	log  zerolog.Logger
}

// New returns an in-memory container starting at initial.
func New[S any](initial S) *Container[S] {
	return &Container[S]{state: initial, log: log.Logger}
}

// NewPersisted returns a container bound to key name in ns. Prior state is
// loaded from ns; a missing, unreadable or malformed record silently
// yields defaults.
func NewPersisted[S any](name string, ns kv.Namespace, defaults S, logger zerolog.Logger) *Container[S] {
	c := &Container[S]{
		state: defaults,
		name:  name,
		ns:    ns,
		log:   logger.With().Str("container", name).Logger(),
	}
	c.state = c.load(defaults)
	return c
}

func (c *Container[S]) load(defaults S) S {
	raw, ok, err := c.ns.Get(c.name)
	if err != nil {
		c.log.Warn().Err(err).Msg("read persisted state; using defaults")
		return defaults
	}
	if !ok {
		return defaults
	}
	rec := persistedRecord[S]{State: defaults}
	if err := json.Unmarshal(raw, &rec); err != nil {
		c.log.Warn().Err(err).Msg("decode persisted state; using defaults")
		return defaults
	}
	c.log.Debug().Int("version", rec.Version).Msg("restored persisted state")
	return rec.State
}

// Get returns the current state. Slices and maps inside the returned value
// are shared with the container and must be treated as read-only.
func (c *Container[S]) Get() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Update replaces the state with fn(current) and notifies subscribers.
func (c *Container[S]) Update(fn func(S) S) {
	c.mu.Lock()
	next := fn(c.state)
	c.state = next
	c.persistLocked(next)
	subs := make([]subscriber[S], len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}
}

// Set replaces the state with s.
func (c *Container[S]) Set(s S) {
	c.Update(func(S) S { return s })
}

func (c *Container[S]) persistLocked(s S) {
	if c.ns == nil {
		return
	}
	raw, err := json.Marshal(persistedRecord[S]{State: s, Version: recordVersion})
	if err != nil {
		c.log.Error().Err(err).Msg("encode state")
		return
	}
	if err := c.ns.Put(c.name, raw); err != nil {
		c.log.Error().Err(err).Msg("persist state")
	}
}

// Subscribe registers fn to run after every update and returns a function
// that removes it. The returned function is idempotent.
func (c *Container[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscriber[S]{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Container[S]) subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Dispose drops every subscriber. The container stays usable; later
// updates simply notify nobody.
func (c *Container[S]) Dispose() {
	c.mu.Lock()
	c.subs = nil
	c.mu.Unlock()
}
