// Package session wires the reaction between the authentication store and
// the stores whose contents belong to a signed-in session.
package session

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mycelian/portfolio-client/internal/store"
)

// Coordinator clears chat and notification state whenever the auth store
// reports an unauthenticated session.
//
// The reaction runs synchronously inside the auth store's notification.
// It fires on every unauthenticated update, including repeated logouts;
// the clear operations are idempotent.
type Coordinator struct {
	auth          *store.AuthStore
	chat          *store.ChatStore
	notifications *store.NotificationStore
	log           zerolog.Logger

	mu     sync.Mutex
	unsub  func()
	clears atomic.Int64
}

// NewCoordinator returns a stopped coordinator; call Start to wire it.
func NewCoordinator(auth *store.AuthStore, chat *store.ChatStore, notifications *store.NotificationStore, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		auth:          auth,
		chat:          chat,
		notifications: notifications,
		log:           logger,
	}
}

// Start registers the auth subscription. Calling Start twice is a no-op.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsub != nil {
		return
	}
	c.unsub = c.auth.Subscribe(c.onAuth)
}

// Stop removes the auth subscription.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
}

// Clears reports how many times the session state has been cleared.
func (c *Coordinator) Clears() int64 { return c.clears.Load() }

func (c *Coordinator) onAuth(s store.AuthState) {
	if s.IsAuthenticated {
		return
	}
	c.chat.ClearChat()
	c.notifications.SetNotifications(nil)
	c.notifications.SetUnreadCount(0)
	n := c.clears.Add(1)
	c.log.Debug().Int64("clears", n).Msg("session ended; cleared chat and notifications")
}
