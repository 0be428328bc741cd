// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/warden/internal/access"
	"github.com/holomush/warden/internal/auth"
	"github.com/holomush/warden/internal/config"
	"github.com/holomush/warden/internal/identity"
	"github.com/holomush/warden/internal/observability"
	"github.com/holomush/warden/internal/password"
)

// authStack is the wired authentication and authorization core.
type authStack struct {
	users       identity.Store
	hashers     *password.Hashers
	constraints password.ConstraintList
	chain       *auth.ValidatorChain
	registry    *auth.SessionRegistry
	resolver    *access.Resolver
	authorizer  *access.Authorizer
}

// buildAuthStack wires the core over users. metrics may be nil.
func buildAuthStack(cfg *config.Config, users identity.Store, logger *slog.Logger, metrics *observability.Metrics) (*authStack, error) {
	hashers, err := cfg.Hashers()
	if err != nil {
		return nil, oops.With("operation", "create hashers").Wrap(err)
	}
	constraints, err := cfg.Constraints()
	if err != nil {
		return nil, oops.With("operation", "parse password policy").Wrap(err)
	}
	lockout, err := cfg.NewLockout()
	if err != nil {
		return nil, oops.With("operation", "create lockout").Wrap(err)
	}

	userPassword, err := auth.NewUserPasswordValidator(users, hashers,
		auth.WithValidatorLogger(logger),
		auth.WithValidatorLockout(lockout),
	)
	if err != nil {
		return nil, oops.With("operation", "create validator").Wrap(err)
	}
	var validator auth.CredentialValidator = userPassword
	registryOpts := []auth.SessionRegistryOption{
		auth.WithLogger(logger),
		auth.WithLockout(lockout),
	}
	if metrics != nil {
		validator = metrics.InstrumentValidator(userPassword)
		registryOpts = append(registryOpts, auth.WithLoginListener(metrics))
	}

	chain, err := auth.NewValidatorChain(validator)
	if err != nil {
		return nil, oops.With("operation", "create validator chain").Wrap(err)
	}
	registry, err := auth.NewSessionRegistry(users, hashers, registryOpts...)
	if err != nil {
		return nil, oops.With("operation", "create session registry").Wrap(err)
	}
	resolver, err := access.NewResolver(users, access.WithResolverLogger(logger))
	if err != nil {
		return nil, oops.With("operation", "create resolver").Wrap(err)
	}
	authorizer, err := access.NewAuthorizer(resolver, cfg.RolePermissions(), access.WithAuthorizerLogger(logger))
	if err != nil {
		return nil, oops.With("operation", "create authorizer").Wrap(err)
	}

	return &authStack{
		users:       users,
		hashers:     hashers,
		constraints: constraints,
		chain:       chain,
		registry:    registry,
		resolver:    resolver,
		authorizer:  authorizer,
	}, nil
}
