package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mycelian/portfolio-client/internal/types"
)

// ListNotifications returns the first page of the user's notifications,
// optionally only the unread ones.
func (c *Client) ListNotifications(ctx context.Context, unreadOnly bool) (*types.ListNotificationsResponse, error) {
	var q map[string]string
	if unreadOnly {
		q = map[string]string{"is_read": "false"}
	}
	var out types.ListNotificationsResponse
	if err := c.do(ctx, call{
		op:     "list notifications",
		method: http.MethodGet,
		path:   "/api/v1/notifications/",
		query:  q,
		out:    &out,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnreadCount returns the server's unread count.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out types.UnreadCountResponse
	if err := c.do(ctx, call{
		op:     "unread count",
		method: http.MethodGet,
		path:   "/api/v1/notifications/unread-count",
		out:    &out,
	}); err != nil {
		return 0, err
	}
	return out.UnreadCount, nil
}

// MarkNotificationsRead marks ids as read.
func (c *Client) MarkNotificationsRead(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return fmt.Errorf("mark read: no notification ids")
	}
	return c.markRead(ctx, types.MarkReadRequest{NotificationIDs: ids})
}

// MarkAllNotificationsRead marks every notification of the user as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.markRead(ctx, types.MarkReadRequest{MarkAllRead: true})
}

func (c *Client) markRead(ctx context.Context, req types.MarkReadRequest) error {
	return c.do(ctx, call{
		op:     "mark notifications read",
		method: http.MethodPost,
		path:   "/api/v1/notifications/mark-read",
		body:   req,
	})
}

// MarkNotificationRead marks a single notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int) error {
	return c.do(ctx, call{
		op:     "mark notification read",
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/v1/notifications/%d/read", id),
	})
}
