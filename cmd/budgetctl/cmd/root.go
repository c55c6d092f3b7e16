// Package cmd provides the budgetctl commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"budget/internal/auth"
	"budget/internal/backend"
	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/core"
	applog "budget/internal/log"
)

type options struct {
	cfgFile string
	debug   bool
	logger  *applog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "budgetctl",
		Short: "Inspect and maintain the budget ledger",
		Long: `budgetctl works directly on the configured store.

Example:
  budgetctl migrate
  budgetctl periods --user ada@example.com
  budgetctl summary --user ada@example.com --year 2025 --month 6
  budgetctl export --user ada@example.com --year 2025 --month 6 --out june.xlsx`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			level := os.Getenv("LOG_LEVEL")
			if opts.debug {
				level = "debug"
			}
			opts.logger = cli.SetupLogger(level, cmd.ErrOrStderr()).WithComponent(applog.ComponentCLI)
			if opts.cfgFile != "" {
				return os.Setenv("CONFIG_FILE", opts.cfgFile)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "YAML config file (default: environment only)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newPeriodsCmd(opts))
	root.AddCommand(newSummaryCmd(opts))
	root.AddCommand(newExportCmd(opts))
	return root
}

// Execute runs the command tree with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// openBackend loads the config without the server-only checks and opens
// the store.
func (o *options) openBackend(ctx context.Context) (*config.Config, *backend.BackendResult, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	store, err := cli.InitBackend(ctx, o.logger, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// resolveUser accepts an email address or a user id.
func resolveUser(ctx context.Context, users core.UserStore, ref string) (core.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return core.User{}, fmt.Errorf("--user is required")
	}
	var (
		user core.User
		err  error
	)
	if strings.Contains(ref, "@") {
		user, err = users.FindUserByEmail(ctx, auth.NormalizeEmail(ref))
	} else {
		user, err = users.FindUserByID(ctx, ref)
	}
	if core.IsNotFound(err) {
		return core.User{}, fmt.Errorf("user %q not found", ref)
	}
	return user, err
}
