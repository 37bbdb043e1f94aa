package client

import (
	"github.com/mycelian/portfolio-client/internal/config"
	"github.com/mycelian/portfolio-client/internal/store"
	"github.com/mycelian/portfolio-client/internal/types"
)

// Public type aliases so consumers can import only the client package.
type (
	Config = config.Config

	// Domain entities
	User         = types.User
	Notification = types.Notification
	Message      = types.Message
	Source       = types.Source

	// Store snapshots
	AuthState         = store.AuthState
	PortalState       = store.PortalState
	ChatState         = store.ChatState
	NotificationState = store.NotificationState

	Audience = types.Audience
	Depth    = types.Depth
	Tone     = types.Tone
)

// LoadConfig reads the PORTFOLIO_* environment.
func LoadConfig() (*Config, error) { return config.New() }

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config { return config.Default() }
