package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mycelian/portfolio-client/client"
	"github.com/mycelian/portfolio-client/internal/analytics"
)

func newTrackCmd() *cobra.Command {
	var meta map[string]string
	var pageURL string

	cmd := &cobra.Command{
		Use:   "track <event-type>",
		Short: "Record an analytics event and wait for delivery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				if pageURL != "" {
					c.Navigate(pageURL, "")
				}
				md := make(map[string]any, len(meta))
				for k, v := range meta {
					md[k] = v
				}

				start := time.Now()
				q := c.Analytics()
				q.Track(args[0], md)
				if err := q.Wait(ctx); err != nil {
					return err
				}

				if q.State() == analytics.Blocked {
					log.Warn().Str("event_type", args[0]).Int("pending", q.Len()).Dur("elapsed", time.Since(start)).Msg("delivery failed; events not sent")
					pending := q.Pending()
					out(cmd, "pending: %d event(s) not delivered\n", len(pending))
					for _, ev := range pending {
						out(cmd, "  %s\n", ev.EventType)
					}
					return nil
				}
				log.Debug().Str("event_type", args[0]).Dur("elapsed", time.Since(start)).Msg("event delivered")
				out(cmd, "tracked %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringToStringVarP(&meta, "meta", "m", nil, "Metadata key=value pairs")
	cmd.Flags().StringVar(&pageURL, "url", "", "Page URL the event happened on")
	return cmd
}
