package client

// Functional options that configure the Client during construction.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mycelian/portfolio-client/internal/analytics"
	"github.com/mycelian/portfolio-client/internal/kv"
)

// Option configures a Client during construction in New.
//
// Options run before any collaborator is built, so HTTP options apply to
// every API call including analytics delivery.
type Option func(*Client) error

// WithHTTPClient replaces the underlying http.Client. The Client keeps a
// copy, so later options never modify hc itself.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		cp := *hc
		c.http = &cp
		return nil
	}
}

// WithHTTPTimeout sets the http.Client Timeout. Prefer per-call context
// deadlines; this is a coarse bound on a single request. Must be > 0.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithDebugLogging wraps the transport so each request/response is logged
// when enabled is true. Dumps include bearer tokens; do not enable in
// production.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			if _, already := c.http.Transport.(*debugTransport); !already {
				c.http.Transport = &debugTransport{base: c.http.Transport}
			}
		}
		return nil
	}
}

// WithNamespace persists state into ns instead of opening the configured
// backend. The caller keeps ownership; Close does not close ns.
func WithNamespace(ns kv.Namespace) Option {
	return func(c *Client) error {
		if ns == nil {
			return fmt.Errorf("namespace must not be nil")
		}
		c.ns = ns
		return nil
	}
}

// WithSink delivers analytics events to sink instead of the API.
func WithSink(sink analytics.Sink) Option {
	return func(c *Client) error {
		if sink == nil {
			return fmt.Errorf("sink must not be nil")
		}
		c.sink = sink
		return nil
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// WithClock overrides time.Now for event and message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		if now == nil {
			return fmt.Errorf("clock must not be nil")
		}
		c.now = now
		return nil
	}
}
