// Package api is the REST client for the portfolio backend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	clierr "github.com/mycelian/portfolio-client/internal/errors"
	"github.com/mycelian/portfolio-client/internal/tokens"
	"github.com/mycelian/portfolio-client/internal/types"
)

const refreshPath = "/api/v1/auth/refresh"

// Config holds the API client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client // optional; its Transport is reused
	Logger     *zerolog.Logger

	// OnSessionExpired runs after a failed token refresh has cleared the
	// stored tokens.
	OnSessionExpired func()
}

// Client talks to the backend on behalf of one session.
type Client struct {
	rc     *resty.Client
	tokens *tokens.Store
	log    zerolog.Logger

	mu        sync.Mutex
	onExpired func()
}

// New builds a client. ts supplies and receives bearer tokens.
func New(cfg Config, ts *tokens.Store) *Client {
	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Client{
		rc:        rc,
		tokens:    ts,
		log:       logger.With().Str("component", "api").Logger(),
		onExpired: cfg.OnSessionExpired,
	}
}

// OnSessionExpired replaces the hook run when a refresh fails.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	c.onExpired = fn
	c.mu.Unlock()
}

// Tokens returns the token store the client authenticates with.
func (c *Client) Tokens() *tokens.Store { return c.tokens }

// call is one logical request.
type call struct {
	op     string
	method string
	path   string
	query  map[string]string
	body   any
	out    any
	anon   bool // send without a bearer token and never refresh
}

func (c *Client) request(ctx context.Context, cl call) (*resty.Response, error) {
	r := c.rc.R().SetContext(ctx)
	if cl.body != nil {
		r.SetBody(cl.body)
	}
	if len(cl.query) > 0 {
		r.SetQueryParams(cl.query)
	}
	if !cl.anon {
		if tok := c.tokens.Access(); tok != "" {
			r.SetAuthToken(tok)
		}
	}
	return r.Execute(cl.method, cl.path)
}

// do executes cl. A 401 triggers at most one refresh followed by one
// replay of the same request.
func (c *Client) do(ctx context.Context, cl call) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	resp, err := c.request(ctx, cl)
	if err == nil && resp.StatusCode() == http.StatusUnauthorized && !cl.anon && c.tokens.Refresh() != "" {
		if rerr := c.refresh(ctx); rerr != nil {
			c.log.Warn().Err(rerr).Str("op", cl.op).Msg("token refresh failed; session expired")
			c.tokens.Clear()
			c.sessionExpired()
		} else {
			resp, err = c.request(ctx, cl)
		}
	}
	requestDuration.WithLabelValues(cl.op).Observe(time.Since(start).Seconds())

	if err != nil {
		requestsTotal.WithLabelValues(cl.op, "error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return clierr.NewNetworkError(cl.op, err)
	}
	requestsTotal.WithLabelValues(cl.op, fmt.Sprint(resp.StatusCode())).Inc()
	c.log.Debug().Str("op", cl.op).Int("status", resp.StatusCode()).Dur("elapsed", time.Since(start)).Msg("api call")

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return clierr.NewHTTPError(resp.StatusCode(), resp.String(), cl.op)
	}
	if cl.out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), cl.out); err != nil {
			return fmt.Errorf("%s: decode response: %w", cl.op, err)
		}
	}
	return nil
}

// RefreshSession exchanges the refresh token for a new access token
// without waiting for a 401. A rejected refresh clears both tokens and
// runs the session-expired hook, as a failed refresh on 401 does.
func (c *Client) RefreshSession(ctx context.Context) error {
	if c.tokens.Refresh() == "" {
		return clierr.NewHTTPError(http.StatusUnauthorized, "", "refresh token")
	}
	err := c.refresh(ctx)
	if err != nil && clierr.IsIrrecoverable(err) {
		c.log.Warn().Err(err).Msg("token refresh rejected; session expired")
		c.tokens.Clear()
		c.sessionExpired()
	}
	return err
}

func (c *Client) refresh(ctx context.Context) error {
	var out types.RefreshResponse
	err := c.do(ctx, call{
		op:     "refresh token",
		method: http.MethodPost,
		path:   refreshPath,
		body:   types.RefreshRequest{Refresh: c.tokens.Refresh()},
		out:    &out,
		anon:   true,
	})
	if err != nil {
		return err
	}
	if out.Access == "" {
		return fmt.Errorf("refresh token: empty access token")
	}
	c.tokens.SetAccess(out.Access)
	return nil
}

func (c *Client) sessionExpired() {
	c.mu.Lock()
	fn := c.onExpired
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
