package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mycelian/portfolio-client/client"
)

func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Inspect and acknowledge notifications",
	}
	cmd.AddCommand(newNotificationsListCmd())
	cmd.AddCommand(newNotificationsReadCmd())
	cmd.AddCommand(newNotificationsReadAllCmd())
	cmd.AddCommand(newNotificationsPollCmd())
	return cmd
}

func requireSession(c *client.Client) error {
	if !c.Auth().IsAuthenticated() {
		return fmt.Errorf("%w: run portfolioctl login first", client.ErrNotAuthenticated)
	}
	return nil
}

func newNotificationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Fetch unread notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				if err := requireSession(c); err != nil {
					return err
				}
				if err := c.Feed().Refresh(ctx); err != nil {
					return err
				}
				st := c.Notifications().State()
				out(cmd, "Unread: %d\n", st.UnreadCount)
				for _, n := range st.Notifications {
					out(cmd, "%d\t%s\t%s\t%s\n", n.ID, n.Priority, n.Type, n.Title)
				}
				return nil
			})
		},
	}
}

func newNotificationsReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark one notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid notification id %q", args[0])
			}
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				if err := requireSession(c); err != nil {
					return err
				}
				// load the list so the open event carries the notification type
				if err := c.Feed().Refresh(ctx); err != nil {
					log.Warn().Err(err).Msg("refresh before mark read failed")
				}
				if err := c.Feed().MarkRead(ctx, id); err != nil {
					return err
				}
				out(cmd, "Marked %d read\n", id)
				return nil
			})
		},
	}
}

func newNotificationsReadAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				if err := requireSession(c); err != nil {
					return err
				}
				if err := c.Feed().MarkAllRead(ctx); err != nil {
					return err
				}
				out(cmd, "All notifications marked read\n")
				return nil
			})
		},
	}
}

func newNotificationsPollCmd() *cobra.Command {
	var interval, duration time.Duration

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Refresh notifications periodically until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = cfg.PollInterval
			}
			c, err := client.New(cfg, client.WithLogger(log.Logger))
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
				defer cancel()
				_ = c.Close(ctx)
			}()
			if err := requireSession(c); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			last := -1
			unsub := c.Notifications().Subscribe(func(st client.NotificationState) {
				if st.UnreadCount != last {
					last = st.UnreadCount
					out(cmd, "%s unread=%d\n", time.Now().Format(time.RFC3339), st.UnreadCount)
				}
			})
			defer unsub()

			log.Info().Dur("interval", interval).Msg("polling notifications")
			err = c.Feed().Poll(ctx, interval)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (default $PORTFOLIO_POLL_INTERVAL)")
	cmd.Flags().DurationVar(&duration, "for", 0, "Stop after this long (0 runs until interrupted)")
	return cmd
}
