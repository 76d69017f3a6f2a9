package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"absensi/internal/app"
	"absensi/internal/attendance"
	"absensi/internal/config"
	"absensi/internal/logging"
	"absensi/internal/store"
)

// openFunc opens the application state the commands operate on.
type openFunc func(ctx context.Context, cfg config.App, log *zap.Logger) (*attendance.Store, store.KV, error)

type cli struct {
	verbose    bool
	loadConfig func() config.App
	open       openFunc

	logger *zap.Logger
	state  *attendance.Store
	kv     store.KV
}

// newRootCmd builds the command tree against the backend named by the
// environment, the same way the api server picks it.
func newRootCmd() *cobra.Command {
	c := &cli{loadConfig: config.Load, open: app.OpenState}
	return c.rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "attendctl",
		Short: "Administer the attendance state store",
		Long: `attendctl reads and writes the same backend as the api server.

Writes re-read the stored collection first, so users registered here are
kept when the server registers its next user, and "session clear" ends the
server's session on its next request.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.loadConfig()
			level := cfg.LogLevel
			if c.verbose {
				level = "debug"
			}
			logger, err := logging.New(cfg.Env, level)
			if err != nil {
				return err
			}
			c.logger = logger

			c.state, c.kv, err = c.open(cmd.Context(), cfg, logger)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.kv != nil {
				_ = c.kv.Close()
			}
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.registerCmd(),
		c.usersCmd(),
		c.reportCmd(),
		c.sessionCmd(),
		c.qrCmd(),
		c.exportCmd(),
	)
	return root
}
