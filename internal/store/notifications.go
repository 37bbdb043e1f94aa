package store

import (
	"slices"

	"github.com/mycelian/portfolio-client/internal/types"
)

// NotificationState is the notification feed.
//
// UnreadCount is tracked independently of the list: the server-reported
// count and the locally adjusted count are never re-derived from
// Notifications here, so the two can drift. Callers keep them consistent.
type NotificationState struct {
	Notifications []types.Notification
	UnreadCount   int
}

// NotificationStore preserves server order of the list.
type NotificationStore struct {
	c *Container[NotificationState]
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{c: New(NotificationState{Notifications: []types.Notification{}})}
}

func (ns *NotificationStore) State() NotificationState { return ns.c.Get() }

// SetNotifications replaces the list (used after a server fetch).
func (ns *NotificationStore) SetNotifications(list []types.Notification) {
	cp := slices.Clone(list)
	if cp == nil {
		cp = []types.Notification{}
	}
	ns.c.Update(func(s NotificationState) NotificationState {
		s.Notifications = cp
		return s
	})
}

// SetUnreadCount sets the count directly; negative values are stored as 0.
func (ns *NotificationStore) SetUnreadCount(n int) {
	n = max(n, 0)
	ns.c.Update(func(s NotificationState) NotificationState {
		s.UnreadCount = n
		return s
	})
}

// AddNotification prepends n and increments the unread count.
func (ns *NotificationStore) AddNotification(n types.Notification) {
	ns.c.Update(func(s NotificationState) NotificationState {
		list := make([]types.Notification, 0, len(s.Notifications)+1)
		list = append(list, n)
		s.Notifications = append(list, s.Notifications...)
		s.UnreadCount++
		return s
	})
}

// MarkAsRead flips the read flag of the entry with id and decrements the
// unread count, floored at 0. The count is decremented even when the id
// is unknown or already read.
func (ns *NotificationStore) MarkAsRead(id int) {
	ns.c.Update(func(s NotificationState) NotificationState {
		list := slices.Clone(s.Notifications)
		for i := range list {
			if list[i].ID == id {
				list[i].IsRead = true
			}
		}
		s.Notifications = list
		s.UnreadCount = max(0, s.UnreadCount-1)
		return s
	})
}

// MarkAllAsRead flips every read flag and zeroes the count.
func (ns *NotificationStore) MarkAllAsRead() {
	ns.c.Update(func(s NotificationState) NotificationState {
		list := slices.Clone(s.Notifications)
		for i := range list {
			list[i].IsRead = true
		}
		if list == nil {
			list = []types.Notification{}
		}
		s.Notifications = list
		s.UnreadCount = 0
		return s
	})
}

// Find returns the notification with id, if present.
func (ns *NotificationStore) Find(id int) (types.Notification, bool) {
	for _, n := range ns.c.Get().Notifications {
		if n.ID == id {
			return n, true
		}
	}
	return types.Notification{}, false
}

func (ns *NotificationStore) Subscribe(fn func(NotificationState)) func() { return ns.c.Subscribe(fn) }

func (ns *NotificationStore) Dispose() { ns.c.Dispose() }
