// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/warden/internal/identity"
)

func newSchemaCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of directory documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := identity.GenerateSchema()
			if err != nil {
				return oops.With("operation", "generate schema").Wrap(err)
			}
			if out == "" {
				cmd.Println(string(schema))
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
				return oops.Code("SCHEMA_WRITE_FAILED").With("path", out).Wrap(err)
			}
			if err := os.WriteFile(out, schema, 0o600); err != nil {
				return oops.Code("SCHEMA_WRITE_FAILED").With("path", out).Wrap(err)
			}
			cmd.Printf("Generated %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the schema to a file instead of stdout")
	return cmd
}

func newImportCmd(deps *Deps) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load a directory document into the identity database",
		Long: `Validate a YAML directory document and write its roles, users and user
groups to the PostgreSQL database configured by directory.database_url in
one transaction. IDs or logins that already exist fail the whole import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := identity.LoadDirectoryFile(args[0])
			if err != nil {
				return oops.With("operation", "load directory").Wrap(err)
			}
			summary := func(verb string) {
				cmd.Printf("%s %d roles, %d users, %d user groups\n",
					verb, len(d.Roles), len(d.Users), len(d.UserGroups))
			}
			if dryRun {
				summary("Validated")
				return nil
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Directory.DatabaseURL == "" {
				return oops.Code("CONFIG_INVALID").
					With("key", "directory.database_url").
					Errorf("import needs directory.database_url")
			}

			importer, closeImporter, err := deps.ImporterFactory(cmd.Context(), cfg.Directory.DatabaseURL)
			if err != nil {
				return oops.With("operation", "connect to database").Wrap(err)
			}
			defer closeImporter()

			if err := importer.Import(cmd.Context(), d); err != nil {
				return oops.With("operation", "import directory").Wrap(err)
			}
			summary("Imported")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the document without writing it")
	return cmd
}
