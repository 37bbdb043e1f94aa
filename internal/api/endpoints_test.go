package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycelian/portfolio-client/internal/tokens"
	"github.com/mycelian/portfolio-client/internal/types"
)

func TestLogin_StoresTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var req types.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ada@example.dev", req.Email)
		writeJSON(w, http.StatusOK, types.LoginResponse{
			User:   types.User{ID: "u1", Email: req.Email},
			Tokens: types.Tokens{Access: "acc", Refresh: "ref"},
		})
	}))
	defer srv.Close()

	ts := tokens.NewMemoryStore()
	ts.Set(types.Tokens{Access: "old", Refresh: "old-ref"})
	out, err := newTestClient(t, srv, ts).Login(context.Background(), types.LoginRequest{Email: "ada@example.dev", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u1", out.User.ID)
	assert.Equal(t, "acc", ts.Access())
	assert.Equal(t, "ref", ts.Refresh())
}

func TestLogin_RejectedPasswordDoesNotRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEqual(t, refreshPath, r.URL.Path)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	}))
	defer srv.Close()

	ts := tokens.NewMemoryStore()
	ts.Set(types.Tokens{Refresh: "ref"})
	_, err := newTestClient(t, srv, ts).Login(context.Background(), types.LoginRequest{Email: "a", Password: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
	assert.Equal(t, "ref", ts.Refresh())
}

func TestLogin_Validation(t *testing.T) {
	c := New(Config{BaseURL: "http://unused"}, tokens.NewMemoryStore())
	_, err := c.Login(context.Background(), types.LoginRequest{Email: "a"})
	assert.Error(t, err)
}

func TestLogout(t *testing.T) {
	var got types.LogoutRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ts := tokens.NewMemoryStore()
	ts.Set(types.Tokens{Access: "acc", Refresh: "ref"})
	require.NoError(t, newTestClient(t, srv, ts).Logout(context.Background()))
	assert.Equal(t, "ref", got.RefreshToken)
	assert.Empty(t, ts.Access())
	assert.Empty(t, ts.Refresh())
}

func TestLogout_ClearsTokensOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ts := tokens.NewMemoryStore()
	ts.Set(types.Tokens{Access: "acc", Refresh: "ref"})
	assert.Error(t, newTestClient(t, srv, ts).Logout(context.Background()))
	assert.Empty(t, ts.Refresh())
}

func TestListNotifications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/notifications/", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("is_read"))
		writeJSON(w, http.StatusOK, types.ListNotificationsResponse{
			Count:   1,
			Results: []types.Notification{{ID: 7, Type: "system", Title: "Hi"}},
		})
	}))
	defer srv.Close()

	out, err := newTestClient(t, srv, nil).ListNotifications(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, 7, out.Results[0].ID)
}

func TestUnreadCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/notifications/unread-count", r.URL.Path)
		writeJSON(w, http.StatusOK, types.UnreadCountResponse{UnreadCount: 3})
	}))
	defer srv.Close()

	n, err := newTestClient(t, srv, nil).UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMarkRead(t *testing.T) {
	var bodies []map[string]any
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var b map[string]any
		_ = json.NewDecoder(r.Body).Decode(&b)
		bodies = append(bodies, b)
		writeJSON(w, http.StatusOK, types.StatusResponse{Status: "ok"})
	}))
	defer srv.Close()
	c := newTestClient(t, srv, nil)
	ctx := context.Background()

	require.NoError(t, c.MarkNotificationsRead(ctx, []int{1, 2}))
	require.NoError(t, c.MarkAllNotificationsRead(ctx))
	require.NoError(t, c.MarkNotificationRead(ctx, 9))
	assert.Error(t, c.MarkNotificationsRead(ctx, nil))

	assert.Equal(t, []string{
		"/api/v1/notifications/mark-read",
		"/api/v1/notifications/mark-read",
		"/api/v1/notifications/9/read",
	}, paths)
	assert.Equal(t, []any{1.0, 2.0}, bodies[0]["notification_ids"])
	assert.Equal(t, true, bodies[1]["mark_all_read"])
	assert.NotContains(t, bodies[1], "notification_ids")
}

func TestSendChatQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/query", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what do you build?", req["query"])
		assert.Nil(t, req["session_id"])
		assert.Equal(t, map[string]any{}, req["context"])
		writeJSON(w, http.StatusOK, types.ChatQueryResponse{SessionID: "s1", MessageID: "m1", Response: "Go services"})
	}))
	defer srv.Close()
	c := newTestClient(t, srv, nil)

	out, err := c.SendChatQuery(context.Background(), types.ChatQueryRequest{
		Query: "what do you build?", Audience: "general", Depth: "medium", Tone: "professional",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", out.SessionID)

	_, err = c.SendChatQuery(context.Background(), types.ChatQueryRequest{})
	assert.Error(t, err)
}

func TestTrackEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analytics/event", r.URL.Path)
		var req types.AnalyticsEventRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "page_view", req.EventType)
		assert.Equal(t, "/", req.Metadata["path"])
		writeJSON(w, http.StatusCreated, types.TrackEventResponse{Status: "tracked", EventID: 11})
	}))
	defer srv.Close()

	out, err := newTestClient(t, srv, nil).TrackEvent(context.Background(), types.AnalyticsEventRequest{
		EventType: "page_view", Metadata: map[string]any{"path": "/"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), out.EventID)
}
