// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/warden/internal/config"
	"github.com/holomush/warden/internal/logging"
)

const serviceName = "warden"

// NewRootCmd creates the root command for the warden CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

// newRootCmd builds the command tree with injectable dependencies.
// If deps is nil, default implementations are used.
func newRootCmd(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "warden",
		Short: "warden - authentication, session login and access control",
		Long: `warden validates credentials, binds logged-in users to sessions and
resolves their permissions through roles and user groups.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (default: XDG_CONFIG_HOME/warden/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCmd(deps))
	cmd.AddCommand(newMigrateCmd(deps))
	cmd.AddCommand(newHashCmd())
	cmd.AddCommand(newPolicyCmd())
	cmd.AddCommand(newRolesCmd(deps))
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newImportCmd(deps))
	cmd.AddCommand(newLoginCmd(deps))

	return cmd
}

// loadConfig loads the configuration using the command's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, oops.With("operation", "load configuration").Wrap(err)
	}
	return cfg, nil
}

// newLogger builds the logger for a command. Diagnostics go to stderr so
// command output stays parseable.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.Setup(serviceName, version, cfg.Log.Format, cfg.LogLevel(), cmd.ErrOrStderr())
}
