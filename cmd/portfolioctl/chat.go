package main

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mycelian/portfolio-client/client"
	"github.com/mycelian/portfolio-client/internal/types"
)

func newChatCmd() *cobra.Command {
	var audience, depth, tone, sessionID string

	cmd := &cobra.Command{
		Use:   "chat <query...>",
		Short: "Ask the portfolio assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := types.ParseAudience(audience)
			if err != nil {
				return err
			}
			d, err := types.ParseDepth(depth)
			if err != nil {
				return err
			}
			tn, err := types.ParseTone(tone)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")

			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				chat := c.Chat()
				chat.SetAudience(a)
				chat.SetDepth(d)
				chat.SetTone(tn)
				if sessionID != "" {
					chat.SetSessionID(&sessionID)
				}

				start := time.Now()
				reply, err := c.SendChat(ctx, query)
				if err != nil {
					log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("chat query failed")
					return err
				}
				out(cmd, "%s\n", reply.Content)
				for _, s := range reply.Sources {
					out(cmd, "  - %s: %s %s\n", s.Type, s.Title, s.URL)
				}
				if sid := chat.State().CurrentSessionID; sid != nil {
					log.Debug().Str("session_id", *sid).Msg("chat session")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&audience, "audience", string(types.AudienceGeneral), "general, recruiter, developer, founder or client")
	cmd.Flags().StringVar(&depth, "depth", string(types.DepthMedium), "short, medium or long")
	cmd.Flags().StringVar(&tone, "tone", string(types.ToneProfessional), "professional, technical, casual or owner_voice")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Continue an existing chat session")
	return cmd
}
