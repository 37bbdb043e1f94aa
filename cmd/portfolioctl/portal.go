package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mycelian/portfolio-client/client"
)

func newPortalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Manage first-visit portal state",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print portal state",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withClient(cmd, func(ctx context.Context, c *client.Client) error {
					p := c.Portal().State()
					name := "-"
					if p.UserName != nil {
						name = *p.UserName
					}
					out(cmd, "name=%s consent=%t seen=%t show=%t\n", name, p.HasConsent, p.HasSeenPortal, c.ShouldShowPortal())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set-name <name>",
			Short: "Remember the visitor's name",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withClient(cmd, func(ctx context.Context, c *client.Client) error {
					c.Portal().SetUserName(args[0])
					out(cmd, "Hello, %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "consent <true|false>",
			Short: "Record whether the visitor consented to being remembered",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseBool(args[0])
				if err != nil {
					return err
				}
				return withClient(cmd, func(ctx context.Context, c *client.Client) error {
					c.Portal().SetConsent(v)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "seen",
			Short: "Mark the portal as seen",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withClient(cmd, func(ctx context.Context, c *client.Client) error {
					c.Portal().SetHasSeenPortal(true)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the visitor",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withClient(cmd, func(ctx context.Context, c *client.Client) error {
					c.Portal().ClearPortalData()
					out(cmd, "Portal data cleared\n")
					return nil
				})
			},
		},
	)
	return cmd
}
