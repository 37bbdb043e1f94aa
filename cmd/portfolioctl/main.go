package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mycelian/portfolio-client/client"
)

var (
	apiURL       string
	stateBackend string
	stateDir     string
	debug        bool
)

const commandTimeout = 15 * time.Second

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "portfolioctl",
		Short:         "portfolioctl drives a portfolio visitor session from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})

			// Set log level based on debug flag
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				_ = os.Setenv("PORTFOLIO_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of the portfolio API (default $PORTFOLIO_API_URL)")
	rootCmd.PersistentFlags().StringVar(&stateBackend, "state-backend", "", "State backend: memory, file or sqlite (default $PORTFOLIO_STATE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory for persisted state (default $PORTFOLIO_STATE_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	// Sub-commands
	rootCmd.AddCommand(newTrackCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newNotificationsCmd())
	rootCmd.AddCommand(newPortalCmd())
	rootCmd.AddCommand(newChatCmd())

	return rootCmd
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (client.Config, error) {
	cfg, err := client.LoadConfig()
	if err != nil {
		return client.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if flags.Changed("state-backend") {
		cfg.StateBackend = stateBackend
	}
	if flags.Changed("state-dir") {
		cfg.StateDir = stateDir
	}
	return *cfg, nil
}

// withClient opens a client for the duration of fn and closes it after,
// which also waits for queued analytics to drain.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log.Debug().Str("api_url", cfg.APIURL).Str("state_backend", cfg.StateBackend).Msg("opening client")

	c, err := client.New(cfg, client.WithLogger(log.Logger))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	runErr := fn(ctx, c)
	if err := c.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("close client")
	}
	return runErr
}

func out(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
