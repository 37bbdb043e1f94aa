// Package client is the visitor-session SDK for the portfolio backend.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mycelian/portfolio-client/internal/analytics"
	"github.com/mycelian/portfolio-client/internal/api"
	clierr "github.com/mycelian/portfolio-client/internal/errors"
	"github.com/mycelian/portfolio-client/internal/kv"
	"github.com/mycelian/portfolio-client/internal/notify"
	"github.com/mycelian/portfolio-client/internal/session"
	"github.com/mycelian/portfolio-client/internal/store"
	"github.com/mycelian/portfolio-client/internal/tokens"
	"github.com/mycelian/portfolio-client/internal/types"
)

// chatFallbackReply is appended to the conversation when a query fails.
const chatFallbackReply = "I'm having trouble processing your request right now. Please try again in a moment."

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client owns one visitor session: the state stores, the logout reaction
// between them, the REST client, the analytics queue and the notification
// feed.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
	now  func() time.Time

	ns       kv.Namespace
	ownsNS   bool
	sink     analytics.Sink
	ownsSink bool

	auth          *store.AuthStore
	portal        *store.PortalStore
	chat          *store.ChatStore
	notifications *store.NotificationStore
	coordinator   *session.Coordinator

	tokens   *tokens.Store
	api      *api.Client
	location *analytics.Location
	queue    *analytics.Queue
	feed     *notify.Feed

	closedOnce uint32 // ensures Close is idempotent
}

// New wires a Client from cfg. The state namespace is opened from
// cfg.StateBackend unless WithNamespace supplies one.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.HTTPTimeout},
		log:  log.Logger,
		now:  time.Now,
	}

	// Auto-enable debug via config or env variable without changing code.
	if cfg.Debug || debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.ns == nil {
		ns, err := kv.Open(cfg.StateBackend, cfg.StateLocation())
		if err != nil {
			return nil, fmt.Errorf("open state namespace: %w", err)
		}
		c.ns, c.ownsNS = ns, true
	}

	c.auth = store.NewAuthStore(c.ns, c.log)
	c.portal = store.NewPortalStore(c.ns, c.log)
	c.chat = store.NewChatStore()
	c.notifications = store.NewNotificationStore()
	c.coordinator = session.NewCoordinator(c.auth, c.chat, c.notifications, c.log)
	c.coordinator.Start()

	c.tokens = tokens.NewStore(c.ns, c.log)
	c.api = api.New(api.Config{
		BaseURL:          cfg.APIURL,
		UserAgent:        cfg.UserAgent,
		HTTPClient:       c.http,
		Logger:           &c.log,
		OnSessionExpired: c.sessionExpired,
	}, c.tokens)

	if c.sink == nil {
		sink, err := c.defaultSink()
		if err != nil {
			c.closeNamespace()
			return nil, err
		}
		c.sink, c.ownsSink = sink, true
	}

	c.location = analytics.NewLocation("", cfg.UserAgent)
	c.queue = analytics.NewQueue(c.sink,
		analytics.WithAmbient(c.location),
		analytics.WithClock(c.now),
		analytics.WithLogger(c.log),
	)
	c.feed = notify.NewFeed(c.api, c.auth, c.notifications, c.queue,
		notify.WithMaxBackoff(cfg.PollMaxBackoff),
		notify.WithLogger(c.log),
	)
	return c, nil
}

func (c *Client) defaultSink() (analytics.Sink, error) {
	if c.cfg.NATSURL == "" {
		return analytics.NewHTTPSink(c.api), nil
	}
	sink, err := analytics.NewNATSSink(c.cfg.NATSURL, c.cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("analytics sink: %w", err)
	}
	return sink, nil
}

// sessionExpired runs when the API client could not refresh the access
// token; the session is over locally too.
func (c *Client) sessionExpired() {
	sessionsExpiredTotal.Inc()
	c.log.Warn().Msg("session expired; signing out")
	c.auth.Logout()
}

// Close drains in-flight analytics delivery and releases the state
// namespace. Safe to call multiple times.
func (c *Client) Close(ctx context.Context) error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.coordinator.Stop()
	err := c.queue.Close(ctx)
	if closer, ok := c.sink.(interface{ Close() }); ok && c.ownsSink {
		closer.Close()
	}
	if cerr := c.closeNamespace(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (c *Client) closeNamespace() error {
	if c.ownsNS && c.ns != nil {
		return c.ns.Close()
	}
	return nil
}

// --------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------

func (c *Client) Auth() *store.AuthStore                  { return c.auth }
func (c *Client) Portal() *store.PortalStore              { return c.portal }
func (c *Client) Chat() *store.ChatStore                  { return c.chat }
func (c *Client) Notifications() *store.NotificationStore { return c.notifications }
func (c *Client) Analytics() *analytics.Queue             { return c.queue }
func (c *Client) Feed() *notify.Feed                      { return c.feed }
func (c *Client) API() *api.Client                        { return c.api }

// --------------------------------------------------------------------
// Session operations
// --------------------------------------------------------------------

// Login signs in and records the user in the auth store.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	resp, err := c.api.Login(ctx, types.LoginRequest{Email: email, Password: password})
	if err != nil {
		loginsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	loginsTotal.WithLabelValues("success").Inc()
	u := resp.User
	c.auth.SetUser(&u)
	return &u, nil
}

// Logout ends the session on the server and locally. The local session is
// cleared even when the server call fails; that error is still returned.
func (c *Client) Logout(ctx context.Context) error {
	err := c.api.Logout(ctx)
	c.auth.Logout()
	return err
}

// RestoreSession refreshes the stored user from the profile endpoint. An
// access token already past its exp claim is refreshed first. A rejected
// token signs the session out.
func (c *Client) RestoreSession(ctx context.Context) (*User, error) {
	if c.tokens.Access() == "" && c.tokens.Refresh() == "" {
		if c.auth.IsAuthenticated() {
			c.auth.Logout()
		}
		return nil, ErrNotAuthenticated
	}
	if c.tokens.Expired(c.now()) {
		if c.tokens.Refresh() == "" {
			c.tokens.Clear()
			c.auth.Logout()
			return nil, ErrNotAuthenticated
		}
		if err := c.api.RefreshSession(ctx); err != nil {
			if clierr.IsIrrecoverable(err) {
				c.auth.Logout()
				return nil, errors.Join(ErrNotAuthenticated, err)
			}
			return nil, err
		}
	}
	u, err := c.api.GetProfile(ctx)
	if err != nil {
		if clierr.StatusCode(err) == http.StatusUnauthorized {
			c.auth.Logout()
			return nil, errors.Join(ErrNotAuthenticated, err)
		}
		return nil, err
	}
	c.auth.SetUser(u)
	return u, nil
}

// ShouldShowPortal reports whether a first-time visitor should see the
// entrance portal.
func (c *Client) ShouldShowPortal() bool {
	p := c.portal.State()
	return !p.HasSeenPortal && p.UserName == nil && !c.auth.IsAuthenticated()
}

// --------------------------------------------------------------------
// Chat and navigation
// --------------------------------------------------------------------

// SendChat appends the visitor's query to the conversation, asks the
// assistant and appends its reply. On failure a fallback reply is
// appended and the error returned.
func (c *Client) SendChat(ctx context.Context, query string) (*Message, error) {
	if query == "" {
		return nil, fmt.Errorf("chat: empty query")
	}
	st := c.chat.State()
	c.chat.AddMessage(types.Message{Content: query, IsFromUser: true, CreatedAt: c.now()})

	resp, err := c.api.SendChatQuery(ctx, types.ChatQueryRequest{
		Query:     query,
		SessionID: st.CurrentSessionID,
		Context:   st.Context,
		Audience:  string(st.Audience),
		Depth:     string(st.Depth),
		Tone:      string(st.Tone),
	})
	if err != nil {
		c.chat.AddMessage(types.Message{Content: chatFallbackReply, CreatedAt: c.now()})
		return nil, err
	}

	reply := types.Message{
		ID:        resp.MessageID,
		Content:   resp.Response,
		Sources:   resp.Sources,
		CreatedAt: c.now(),
	}
	c.chat.AddMessage(reply)
	if resp.SessionID != "" && st.CurrentSessionID == nil {
		sid := resp.SessionID
		c.chat.SetSessionID(&sid)
	}
	c.queue.ChatQuery(query, string(st.Audience), string(st.Depth), string(st.Tone), st.Context)
	return &reply, nil
}

// Navigate moves the ambient location to url and records a page view for
// its path.
func (c *Client) Navigate(rawURL, title string) {
	c.location.Navigate(rawURL)
	c.queue.PageView(pathOf(rawURL), title)
}

// pathOf returns the path of rawURL; "/" for a bare host and rawURL
// itself when it does not parse.
func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Path == "" && u.Host != "" {
		return "/"
	}
	if u.Path == "" {
		return rawURL
	}
	return u.Path
}
