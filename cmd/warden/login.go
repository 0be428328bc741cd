// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/warden/internal/auth"
)

type loginOptions struct {
	password  string
	sessionID string
	checks    []string
}

func newLoginCmd(deps *Deps) *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login LOGIN",
		Short: "Run one login attempt against the configured directory",
		Long: `Validate a user name and password through the credential validator
chain, bind the user to a session in a fresh session registry and print
the outcome. Each --check ACTION:RESOURCE is then authorized for the
logged-in user. The password is read from standard input unless
--password is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, deps, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.password, "password", "", "password (read from stdin when empty)")
	cmd.Flags().StringVar(&opts.sessionID, "session", "", "session ID (default: a new ULID)")
	cmd.Flags().StringArrayVar(&opts.checks, "check", nil, "permission to check as ACTION:RESOURCE (repeatable)")
	return cmd
}

func runLogin(cmd *cobra.Command, deps *Deps, login string, opts *loginOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)
	ctx := cmd.Context()

	pw := opts.password
	if pw == "" {
		if pw, err = readLine(cmd.InOrStdin()); err != nil {
			return err
		}
	}
	sessionID := opts.sessionID
	if sessionID == "" {
		sessionID = ulid.Make().String()
	}
	locale := cfg.LocaleTag()

	users, closeUsers, err := deps.DirectoryOpener(ctx, cfg)
	if err != nil {
		return oops.With("operation", "open directory").Wrap(err)
	}
	defer closeUsers()

	stack, err := buildAuthStack(cfg, users, logger, nil)
	if err != nil {
		return err
	}

	result := stack.chain.Validate(ctx, locale, auth.NewUserNamePassword(login, pw))
	if result.IsSuccess() {
		cmd.Println("credentials: valid")
	} else {
		for _, line := range strings.Split(result.Message(), "\n") {
			cmd.Printf("credentials: %s\n", line)
		}
	}

	outcome, err := stack.registry.Login(ctx, sessionID, login, pw)
	if err != nil {
		return oops.With("operation", "login").Wrap(err)
	}
	cmd.Printf("login: %s (%s)\n", outcome, outcome.Description(locale))
	if !outcome.IsSuccess() {
		return oops.Code("LOGIN_FAILED").
			With("outcome", outcome.String()).
			Errorf("login failed: %s", outcome)
	}
	defer stack.registry.Logout(sessionID)

	userID, _ := stack.registry.CurrentUserID(sessionID)
	cmd.Printf("session: %s\n", sessionID)
	cmd.Printf("user: %s\n", userID)
	cmd.Printf("roles: %s\n", strings.Join(stack.resolver.EffectiveRoles(ctx, userID).Sorted(), ","))

	for _, check := range opts.checks {
		action, resource, ok := strings.Cut(check, ":")
		if !ok || action == "" {
			return oops.Code("INVALID_CHECK").With("check", check).Errorf("check must be ACTION:RESOURCE")
		}
		verdict := "deny"
		if stack.authorizer.Check(ctx, userID, action, resource) {
			verdict = "allow"
		}
		cmd.Printf("check %s: %s\n", check, verdict)
	}
	return nil
}
