package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/mycelian/portfolio-client/internal/kv"
)

// Prefix is the environment variable prefix, e.g. PORTFOLIO_API_URL.
const Prefix = "PORTFOLIO"

// Config holds the client configuration.
// Environment variables are parsed from the PORTFOLIO_ prefix.
type Config struct {
	APIURL      string        `envconfig:"API_URL" default:"http://localhost:8000"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	UserAgent   string        `envconfig:"USER_AGENT" default:"portfolio-client"`

	// State persistence: memory, file or sqlite
	StateBackend string `envconfig:"STATE_BACKEND" default:"file"`
	StateDir     string `envconfig:"STATE_DIR" default:""`

	// Notification polling
	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"60s"`
	PollMaxBackoff time.Duration `envconfig:"POLL_MAX_BACKOFF" default:"5m"`

	// Optional broker sink for analytics; HTTP is used when NATSURL is empty
	NATSURL     string `envconfig:"NATS_URL" default:""`
	NATSSubject string `envconfig:"NATS_SUBJECT" default:"portfolio.analytics"`

	Debug bool `envconfig:"DEBUG" default:"false"`
}

// Validate rejects settings the client cannot start with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API_URL: %q", c.APIURL)
	}
	switch c.StateBackend {
	case kv.BackendMemory, kv.BackendFile, kv.BackendSQLite:
	default:
		return fmt.Errorf("unsupported STATE_BACKEND: %s", c.StateBackend)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.PollMaxBackoff < c.PollInterval {
		return fmt.Errorf("POLL_MAX_BACKOFF (%s) must not be below POLL_INTERVAL (%s)", c.PollMaxBackoff, c.PollInterval)
	}
	if c.NATSURL != "" && c.NATSSubject == "" {
		return fmt.Errorf("NATS_SUBJECT is required when NATS_URL is set")
	}
	return nil
}

// StateLocation is the location argument for kv.Open. Empty means the
// backend default under kv.DefaultDir.
func (c *Config) StateLocation() string {
	if c.StateDir == "" {
		return ""
	}
	if c.StateBackend == kv.BackendSQLite {
		return filepath.Join(c.StateDir, "state.db")
	}
	return c.StateDir
}

// Default returns the configuration with every default applied and no
// environment lookups.
func Default() Config {
	return Config{
		APIURL:         "http://localhost:8000",
		HTTPTimeout:    30 * time.Second,
		UserAgent:      "portfolio-client",
		StateBackend:   kv.BackendFile,
		PollInterval:   60 * time.Second,
		PollMaxBackoff: 5 * time.Minute,
		NATSSubject:    "portfolio.analytics",
	}
}

// New creates a Config by parsing environment variables.
// Example: PORTFOLIO_API_URL, PORTFOLIO_STATE_BACKEND
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("api_url", cfg.APIURL).
		Dur("http_timeout", cfg.HTTPTimeout).
		Str("state_backend", cfg.StateBackend).
		Str("state_dir", cfg.StateDir).
		Dur("poll_interval", cfg.PollInterval).
		Bool("nats_sink", cfg.NATSURL != "").
		Msg("Configuration loaded")

	return &cfg, nil
}
