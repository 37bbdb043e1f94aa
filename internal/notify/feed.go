// Package notify keeps the notification store in step with the server:
// periodic refresh of the unread feed and server-first read marking.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mycelian/portfolio-client/internal/store"
	"github.com/mycelian/portfolio-client/internal/types"
)

// API is the slice of the REST client the feed uses.
type API interface {
	ListNotifications(ctx context.Context, unreadOnly bool) (*types.ListNotificationsResponse, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id int) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// Session reports whether a user is signed in.
type Session interface {
	IsAuthenticated() bool
}

// Tracker records that a notification was opened.
type Tracker interface {
	NotificationOpen(notificationID, notificationType string)
}

const defaultMaxBackoff = 5 * time.Minute

// Option configures a Feed.
type Option func(*Feed)

// WithMaxBackoff caps the delay between failed polls.
func WithMaxBackoff(d time.Duration) Option { return func(f *Feed) { f.maxBackoff = d } }

// WithLogger sets the feed logger.
func WithLogger(l zerolog.Logger) Option { return func(f *Feed) { f.log = l } }

// Feed reconciles a NotificationStore with the server.
type Feed struct {
	api        API
	session    Session
	store      *store.NotificationStore
	tracker    Tracker
	maxBackoff time.Duration
	log        zerolog.Logger
}

// NewFeed returns a feed. tracker may be nil.
func NewFeed(api API, session Session, ns *store.NotificationStore, tracker Tracker, opts ...Option) *Feed {
	f := &Feed{
		api:        api,
		session:    session,
		store:      ns,
		tracker:    tracker,
		maxBackoff: defaultMaxBackoff,
		log:        log.Logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Refresh fetches the unread list and the unread count together and
// replaces the store contents with them. It does nothing while signed out.
// The store is left untouched when either request fails.
func (f *Feed) Refresh(ctx context.Context) error {
	if !f.session.IsAuthenticated() {
		return nil
	}
	var (
		list  *types.ListNotificationsResponse
		count int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = f.api.ListNotifications(gctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = f.api.UnreadCount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh notifications: %w", err)
	}
	// A logout while the fetches ran has already cleared the store.
	if !f.session.IsAuthenticated() {
		f.log.Debug().Msg("signed out during notification refresh; dropping results")
		return nil
	}
	f.store.SetNotifications(list.Results)
	f.store.SetUnreadCount(count)
	return nil
}

// MarkRead marks id read on the server, then locally, then records a
// notification_open event. Local state is unchanged if the server call
// fails.
func (f *Feed) MarkRead(ctx context.Context, id int) error {
	if err := f.api.MarkNotificationRead(ctx, id); err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	n, known := f.store.Find(id)
	f.store.MarkAsRead(id)
	if known && f.tracker != nil {
		f.tracker.NotificationOpen(strconv.Itoa(id), n.Type)
	}
	return nil
}

// MarkAllRead marks everything read on the server, then locally.
func (f *Feed) MarkAllRead(ctx context.Context) error {
	if err := f.api.MarkAllNotificationsRead(ctx); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	f.store.MarkAllAsRead()
	return nil
}

// Poll refreshes immediately and then every interval until ctx is done.
// Consecutive failures stretch the wait exponentially, up to the
// configured maximum; a success resets it. Poll returns ctx.Err().
func (f *Feed) Poll(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = interval
	exp.Multiplier = 2
	exp.RandomizationFactor = 0.2
	exp.MaxInterval = max(f.maxBackoff, interval)
	exp.MaxElapsedTime = 0
	exp.Reset()

	failures := 0
	for {
		wait := interval
		if err := f.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			wait = exp.NextBackOff()
			pollFailuresTotal.Inc()
			f.log.Warn().Err(err).Int("failures", failures).Dur("retry_in", wait).Msg("notification poll failed")
		} else {
			if failures > 0 {
				f.log.Info().Int("failures", failures).Msg("notification poll recovered")
			}
			failures = 0
			exp.Reset()
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
