// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"errors"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/warden/internal/identity"
)

func newRolesCmd(deps *Deps) *cobra.Command {
	var showPermissions bool

	cmd := &cobra.Command{
		Use:   "roles LOGIN",
		Short: "Print the effective roles of a user",
		Long: `Resolve the roles a user holds through its user groups. With
--permissions, also print the permission patterns those roles grant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)
			ctx := cmd.Context()

			users, closeUsers, err := deps.DirectoryOpener(ctx, cfg)
			if err != nil {
				return oops.With("operation", "open directory").Wrap(err)
			}
			defer closeUsers()

			stack, err := buildAuthStack(cfg, users, logger, nil)
			if err != nil {
				return err
			}

			user, err := users.FindUserByLogin(ctx, args[0])
			if err != nil {
				if errors.Is(err, identity.ErrNotFound) {
					return oops.Code("USER_NOT_FOUND").With("login", args[0]).Errorf("no user with login %q", args[0])
				}
				return oops.With("login", args[0]).Wrap(err)
			}

			for _, roleID := range stack.resolver.EffectiveRoles(ctx, user.ID).Sorted() {
				name := roleID
				if role, err := users.FindRoleByID(ctx, roleID); err == nil {
					name = role.Name
				}
				cmd.Printf("%s\t%s\n", roleID, name)
			}
			if showPermissions {
				for _, p := range stack.authorizer.Permissions(ctx, user.ID) {
					cmd.Printf("permission\t%s\n", p)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPermissions, "permissions", false, "also print granted permission patterns")
	return cmd
}
