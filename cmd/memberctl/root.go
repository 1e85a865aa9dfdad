package main

import (
	"context"
	"fmt"
	"io"

	"github.com/MrEthical07/memberauth/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

// app carries what every subcommand needs after PersistentPreRunE.
type app struct {
	cfg    cliConfig
	logger zerolog.Logger

	apiURL  string
	backend string
	verbose bool

	// open is replaced in tests.
	open func(ctx context.Context, cfg cliConfig, logger zerolog.Logger) (*session, error)
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	a := &app{open: openSession}

	root := &cobra.Command{
		Use:   "memberctl",
		Short: "Sign a member in and out of the member API",
		Long: `memberctl manages the persisted member session used by client tools.

Configuration comes from MEMBERCTL_* environment variables; flags override them.

Example usage:
  memberctl login ada@example.com      # prompt for the password and sign in
  memberctl status                     # show the restored session
  memberctl logout                     # sign out and clear the cache
  memberctl watch --metrics-addr :9090 # keep a session open and print changes`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if a.apiURL != "" {
				cfg.APIURL = a.apiURL
			}
			if a.backend != "" {
				cfg.CacheBackend = a.backend
			}
			if a.verbose {
				cfg.LogLevel = "debug"
			}
			a.cfg = cfg
			a.logger = logging.NewWithWriter(stderr, cfg.LogLevel, cfg.LogPretty)
			a.logger.Debug().Str("api_url", cfg.APIURL).Str("cache", cfg.CacheBackend).Msg("configuration loaded")
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "member API base URL (env MEMBERCTL_API_URL)")
	root.PersistentFlags().StringVar(&a.backend, "cache", "", "cache backend: file or redis (env MEMBERCTL_CACHE_BACKEND)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) session(ctx context.Context) (*session, error) {
	s, err := a.open(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return s, nil
}
