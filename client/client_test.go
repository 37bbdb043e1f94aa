package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycelian/portfolio-client/internal/analytics"
	"github.com/mycelian/portfolio-client/internal/kv"
	"github.com/mycelian/portfolio-client/internal/tokens"
	"github.com/mycelian/portfolio-client/internal/types"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// backend is a minimal fake of the portfolio API.
type backend struct {
	mu       sync.Mutex
	events   []types.AnalyticsEventRequest
	chats    []types.ChatQueryRequest
	failChat bool
	// profile401 counts profile requests rejected for a bad bearer.
	profile401 int
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, types.LoginResponse{
			User:   types.User{ID: "u1", Email: req.Email},
			Tokens: types.Tokens{Access: "acc", Refresh: "ref"},
		})
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/v1/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc" {
			b.mu.Lock()
			b.profile401++
			b.mu.Unlock()
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, types.User{ID: "u1", Email: "ada@example.dev"})
	})
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req types.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Refresh != "ref" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		writeJSON(w, http.StatusOK, types.RefreshResponse{Access: "acc"})
	})
	mux.HandleFunc("POST /api/v1/chat/query", func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatQueryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.chats = append(b.chats, req)
		fail := b.failChat
		b.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, types.ChatQueryResponse{SessionID: "s1", MessageID: "m1", Response: "I build Go services."})
	})
	mux.HandleFunc("POST /api/v1/analytics/event", func(w http.ResponseWriter, r *http.Request) {
		var req types.AnalyticsEventRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.events = append(b.events, req)
		b.mu.Unlock()
		writeJSON(w, http.StatusCreated, types.TrackEventResponse{Status: "tracked"})
	})
	mux.HandleFunc("GET /api/v1/notifications/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ListNotificationsResponse{Results: []types.Notification{{ID: 1, Type: "welcome"}}})
	})
	mux.HandleFunc("GET /api/v1/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.UnreadCountResponse{UnreadCount: 1})
	})
	return mux
}

func (b *backend) chatRequests() []types.ChatQueryRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.ChatQueryRequest(nil), b.chats...)
}

func (b *backend) rejectedProfiles() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profile401
}

func (b *backend) setFailChat(fail bool) {
	b.mu.Lock()
	b.failChat = fail
	b.mu.Unlock()
}

func (b *backend) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		out = append(out, e.EventType)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, ns kv.Namespace, opts ...Option) (*Client, *backend) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.APIURL = srv.URL
	cfg.StateBackend = kv.BackendMemory
	if ns == nil {
		ns = kv.NewMemory()
	}
	c, err := New(cfg, append([]Option{WithNamespace(ns), WithLogger(zerolog.Nop())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c, b
}

func waitQueue(t *testing.T, c *Client) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Analytics().Wait(ctx))
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StateBackend = "redis"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.StateBackend = kv.BackendMemory
	_, err = New(cfg, WithHTTPTimeout(0))
	assert.Error(t, err)
}

func TestLoginLogout_ClearsSessionState(t *testing.T) {
	c, _ := newTestClient(t, nil)
	ctx := context.Background()

	u, err := c.Login(ctx, "ada@example.dev", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.True(t, c.Auth().IsAuthenticated())

	_, err = c.SendChat(ctx, "hello")
	require.NoError(t, err)
	c.Notifications().AddNotification(types.Notification{ID: 3})
	require.NotEmpty(t, c.Chat().State().Messages)

	require.NoError(t, c.Logout(ctx))
	assert.False(t, c.Auth().IsAuthenticated())
	assert.Empty(t, c.Chat().State().Messages)
	assert.Nil(t, c.Chat().State().CurrentSessionID)
	assert.Empty(t, c.Notifications().State().Notifications)
	assert.Zero(t, c.Notifications().State().UnreadCount)
	assert.Empty(t, c.API().Tokens().Refresh())
}

func TestLogin_WrongPassword(t *testing.T) {
	c, _ := newTestClient(t, nil)
	_, err := c.Login(context.Background(), "ada@example.dev", "nope")
	require.Error(t, err)
	assert.True(t, IsIrrecoverable(err))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.False(t, c.Auth().IsAuthenticated())
}

func TestSessionSurvivesRestart(t *testing.T) {
	ns := kv.NewMemory()
	c, _ := newTestClient(t, ns)
	_, err := c.Login(context.Background(), "ada@example.dev", "secret")
	require.NoError(t, err)
	require.NoError(t, c.Close(context.Background()))

	again, _ := newTestClient(t, ns)
	assert.True(t, again.Auth().IsAuthenticated())
	u, err := again.RestoreSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.dev", u.Email)
}

func TestRestoreSession_WithoutTokens(t *testing.T) {
	c, _ := newTestClient(t, nil)
	c.Auth().SetUser(&types.User{ID: "ghost"})

	_, err := c.RestoreSession(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, c.Auth().IsAuthenticated())
}

func expiredJWT(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestRestoreSession_ExpiredAccessRefreshesFirst(t *testing.T) {
	ns := kv.NewMemory()
	tokens.NewStore(ns, zerolog.Nop()).Set(types.Tokens{Access: expiredJWT(t), Refresh: "ref"})
	c, b := newTestClient(t, ns)

	u, err := c.RestoreSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.dev", u.Email)
	assert.Equal(t, "acc", c.API().Tokens().Access())
	assert.Zero(t, b.rejectedProfiles(), "profile must not be fetched with the expired token")
	assert.True(t, c.Auth().IsAuthenticated())
}

func TestRestoreSession_ExpiredAccessRejectedRefresh(t *testing.T) {
	ns := kv.NewMemory()
	tokens.NewStore(ns, zerolog.Nop()).Set(types.Tokens{Access: expiredJWT(t), Refresh: "stale"})
	c, b := newTestClient(t, ns)
	c.Auth().SetUser(&types.User{ID: "u1"})

	_, err := c.RestoreSession(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.False(t, c.Auth().IsAuthenticated())
	assert.Empty(t, c.API().Tokens().Refresh())
	assert.Zero(t, b.rejectedProfiles())
}

func TestSendChat(t *testing.T) {
	c, b := newTestClient(t, nil)
	ctx := context.Background()

	reply, err := c.SendChat(ctx, "what do you build?")
	require.NoError(t, err)
	assert.Equal(t, "I build Go services.", reply.Content)

	st := c.Chat().State()
	require.Len(t, st.Messages, 2)
	assert.True(t, st.Messages[0].IsFromUser)
	assert.NotEmpty(t, st.Messages[0].ID)
	assert.Equal(t, "m1", st.Messages[1].ID)
	require.NotNil(t, st.CurrentSessionID)
	assert.Equal(t, "s1", *st.CurrentSessionID)

	_, err = c.SendChat(ctx, "and more?")
	require.NoError(t, err)
	chats := b.chatRequests()
	require.Len(t, chats, 2)
	assert.Nil(t, chats[0].SessionID)
	require.NotNil(t, chats[1].SessionID)
	assert.Equal(t, "s1", *chats[1].SessionID)
	assert.Equal(t, "general", chats[0].Audience)

	waitQueue(t, c)
	require.Eventually(t, func() bool { return len(b.eventTypes()) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"chat_query", "chat_query"}, b.eventTypes())
}

func TestSendChat_FailureAppendsFallback(t *testing.T) {
	c, b := newTestClient(t, nil)
	b.setFailChat(true)

	_, err := c.SendChat(context.Background(), "hello?")
	require.Error(t, err)
	msgs := c.Chat().State().Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, chatFallbackReply, msgs[1].Content)
	assert.Nil(t, c.Chat().State().CurrentSessionID)
}

func TestNavigate_TracksPageViewWithReferrer(t *testing.T) {
	var mu sync.Mutex
	var got []analytics.Event
	sink := analytics.SinkFunc(func(_ context.Context, ev analytics.Event) error {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		return nil
	})
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c, _ := newTestClient(t, nil, WithSink(sink), WithClock(func() time.Time { return fixed }))

	c.Navigate("https://example.dev/", "Home")
	waitQueue(t, c)
	c.Navigate("https://example.dev/projects", "")
	waitQueue(t, c)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, "/", got[0].Metadata["path"])
	assert.Equal(t, "Home", got[0].Metadata["title"])
	assert.Equal(t, "/projects", got[1].Metadata["path"])
	assert.Equal(t, "https://example.dev/projects", got[1].Metadata["url"])
	assert.Equal(t, "https://example.dev/", got[1].Metadata["referrer"])
	assert.Equal(t, "portfolio-client", got[1].Metadata["user_agent"])
	assert.Equal(t, "2025-03-01T10:00:00.000Z", got[1].Metadata["timestamp"])
}

func TestShouldShowPortal(t *testing.T) {
	c, _ := newTestClient(t, nil)
	assert.True(t, c.ShouldShowPortal())

	c.Portal().SetHasSeenPortal(true)
	assert.False(t, c.ShouldShowPortal())

	c.Portal().ClearPortalData()
	c.Portal().SetUserName("Ada")
	assert.False(t, c.ShouldShowPortal())

	c.Portal().ClearPortalData()
	c.Auth().SetUser(&types.User{ID: "u1"})
	assert.False(t, c.ShouldShowPortal())
}

func TestFeedRefreshThroughFacade(t *testing.T) {
	c, _ := newTestClient(t, nil)
	ctx := context.Background()

	require.NoError(t, c.Feed().Refresh(ctx))
	assert.Empty(t, c.Notifications().State().Notifications, "signed out: no fetch")

	_, err := c.Login(ctx, "ada@example.dev", "secret")
	require.NoError(t, err)
	require.NoError(t, c.Feed().Refresh(ctx))
	assert.Len(t, c.Notifications().State().Notifications, 1)
	assert.Equal(t, 1, c.Notifications().State().UnreadCount)
}

func TestClose_Idempotent(t *testing.T) {
	c, _ := newTestClient(t, nil)
	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
}

func TestPathOf(t *testing.T) {
	assert.Equal(t, "/projects", pathOf("https://example.dev/projects"))
	assert.Equal(t, "/", pathOf("https://example.dev"))
	assert.Equal(t, "/about", pathOf("/about"))
}
