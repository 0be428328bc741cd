// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/warden/internal/store"
)

func newMigrateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the identity database schema",
		Long: `Apply or roll back the embedded migrations of the identity database
configured by directory.database_url.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Up(); err != nil {
					return oops.Code("MIGRATION_FAILED").With("direction", "up").Wrap(err)
				}
				cmd.Println("Migrations applied")
				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Down(); err != nil {
					return oops.Code("MIGRATION_FAILED").With("direction", "down").Wrap(err)
				}
				cmd.Println("Migrations rolled back")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "steps N",
		Short: "Apply N migrations, or roll back if N is negative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseVersionArg(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Steps(n); err != nil {
					return oops.Code("MIGRATION_FAILED").With("steps", n).Wrap(err)
				}
				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied without running it (clears the dirty flag)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVersionArg(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Force(v); err != nil {
					return oops.With("version", v).Wrap(err)
				}
				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema version and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := printVersion(cmd, m); err != nil {
					return err
				}
				pending, err := m.PendingMigrations()
				if err != nil {
					return oops.Code("MIGRATION_STATUS_FAILED").Wrap(err)
				}
				if len(pending) == 0 {
					cmd.Println("No pending migrations")
					return nil
				}
				cmd.Println("Pending migrations:")
				for _, v := range pending {
					name, err := store.MigrationName(v)
					if err != nil {
						name = "?"
					}
					cmd.Printf("  %06d %s\n", v, name)
				}
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, deps *Deps, fn func(m Migrator) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Directory.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			With("key", "directory.database_url").
			Errorf("migrations need directory.database_url")
	}
	m, err := deps.MigratorFactory(cfg.Directory.DatabaseURL)
	if err != nil {
		return oops.Code("MIGRATION_INIT_FAILED").Wrap(err)
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			cmd.PrintErrln("closing migrator:", closeErr)
		}
	}()
	return fn(m)
}

func printVersion(cmd *cobra.Command, m Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return oops.Code("MIGRATION_STATUS_FAILED").Wrap(err)
	}
	state := ""
	if dirty {
		state = " (dirty)"
	}
	cmd.Printf("Schema version: %d%s\n", v, state)
	return nil
}

// parseVersionArg parses a signed migration number.
func parseVersionArg(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Wrapf(err, "not a number")
	}
	return n, nil
}
