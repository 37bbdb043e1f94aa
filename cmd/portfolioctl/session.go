package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mycelian/portfolio-client/client"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("PORTFOLIO_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("password is required (--password or PORTFOLIO_PASSWORD)")
			}
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				start := time.Now()
				u, err := c.Login(ctx, email, password)
				if err != nil {
					log.Error().Err(err).Str("email", email).Dur("elapsed", time.Since(start)).Msg("login failed")
					return err
				}
				out(cmd, "Signed in as %s (%s)\n", displayName(u), u.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.Logout(ctx); err != nil {
					log.Warn().Err(err).Msg("server logout failed; local session cleared")
				}
				out(cmd, "Signed out\n")
				return nil
			})
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *client.Client) error {
				u, err := c.RestoreSession(ctx)
				if errors.Is(err, client.ErrNotAuthenticated) {
					out(cmd, "Not signed in\n")
					return nil
				}
				if err != nil {
					return err
				}
				out(cmd, "%s <%s> role=%s\n", displayName(u), u.Email, u.Role)
				if exp, err := c.API().Tokens().Expiry(); err == nil {
					out(cmd, "access token expires %s\n", exp.Local().Format(time.RFC3339))
				}
				return nil
			})
		},
	}
}

func displayName(u *client.User) string {
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.FullName != "":
		return u.FullName
	case u.Username != "":
		return u.Username
	default:
		return u.ID
	}
}
