// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newHashCmd() *cobra.Command {
	var skipPolicy bool

	cmd := &cobra.Command{
		Use:   "hash [PASSWORD]",
		Short: "Hash a password with the configured algorithm",
		Long: `Hash a password for a directory document. The password is read from
standard input when not given as an argument. Passwords that violate the
configured policy are rejected unless --skip-policy is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pw, err := passwordArg(cmd, args)
			if err != nil {
				return err
			}

			if !skipPolicy {
				constraints, err := cfg.Constraints()
				if err != nil {
					return oops.Wrap(err)
				}
				if failing := constraints.Failing(pw); len(failing) > 0 {
					for _, c := range failing {
						cmd.PrintErrln(c.Description(cfg.LocaleTag()))
					}
					return oops.Code("PASSWORD_POLICY_VIOLATION").
						With("failing", len(failing)).
						Errorf("password does not satisfy the password policy")
				}
			}

			hashers, err := cfg.Hashers()
			if err != nil {
				return oops.Wrap(err)
			}
			hash, err := hashers.Hash(pw)
			if err != nil {
				return oops.With("algorithm", hashers.Default().Algorithm()).Wrap(err)
			}
			cmd.Println(hash)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipPolicy, "skip-policy", false, "hash even if the password violates the policy")
	return cmd
}

func newPolicyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policy [PASSWORD]",
		Short: "Describe the password policy or check a password against it",
		Long: `Without arguments, print the localized description of every configured
password constraint. With a password, print the constraints it violates
and fail if there are any.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			constraints, err := cfg.Constraints()
			if err != nil {
				return oops.Wrap(err)
			}
			locale := cfg.LocaleTag()

			if len(args) == 0 {
				for _, d := range constraints.Descriptions(locale) {
					cmd.Println(d)
				}
				return nil
			}

			failing := constraints.Failing(args[0])
			if len(failing) == 0 {
				cmd.Println("ok")
				return nil
			}
			for _, c := range failing {
				cmd.Println(c.Description(locale))
			}
			return oops.Code("PASSWORD_POLICY_VIOLATION").
				With("failing", len(failing)).
				Errorf("password does not satisfy the password policy")
		},
	}
}

// passwordArg returns the password argument or the first line of stdin.
func passwordArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return readLine(cmd.InOrStdin())
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", oops.Code("INPUT_READ_FAILED").Wrap(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
