// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/holomush/warden/internal/config"
	"github.com/holomush/warden/internal/identity"
	"github.com/holomush/warden/internal/identity/postgres"
	"github.com/holomush/warden/internal/observability"
	"github.com/holomush/warden/internal/store"
)

// Deps contains injectable dependencies for the warden commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// DirectoryOpener opens the identity store the configuration points at.
	// The returned function releases it.
	// Default: openDirectory
	DirectoryOpener func(ctx context.Context, cfg *config.Config) (identity.Store, func(), error)

	// ImporterFactory connects to the identity database for imports.
	// Default: store.Connect + postgres.NewStore
	ImporterFactory func(ctx context.Context, databaseURL string) (DirectoryImporter, func(), error)

	// MigratorFactory creates a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker, opts ...observability.ServerOption) ObservabilityServer
}

func (d *Deps) withDefaults() *Deps {
	out := &Deps{}
	if d != nil {
		*out = *d
	}
	if out.DirectoryOpener == nil {
		out.DirectoryOpener = openDirectory
	}
	if out.ImporterFactory == nil {
		out.ImporterFactory = connectImporter
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker, opts ...observability.ServerOption) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker, opts...)
		}
	}
	return out
}

// DirectoryImporter loads a directory document into persistent storage.
type DirectoryImporter interface {
	Import(ctx context.Context, d *identity.Directory) error
}

// Migrator interface wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	PendingMigrations() ([]uint, error)
	AppliedMigrations() ([]uint, error)
	Close() error
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// openDirectory opens the PostgreSQL store when a database URL is
// configured, otherwise loads the directory file into memory.
func openDirectory(ctx context.Context, cfg *config.Config) (identity.Store, func(), error) {
	if cfg.Directory.DatabaseURL != "" {
		pool, err := store.Connect(ctx, cfg.Directory.DatabaseURL, store.DefaultConnectOptions())
		if err != nil {
			return nil, nil, err //nolint:wrapcheck // oops error with code
		}
		return postgres.NewStore(pool), pool.Close, nil
	}

	d, err := identity.LoadDirectoryFile(cfg.Directory.File)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // oops error with code
	}
	s, err := identity.NewMemoryStoreFromDirectory(d)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // oops error with code
	}
	return s, func() {}, nil
}

func connectImporter(ctx context.Context, databaseURL string) (DirectoryImporter, func(), error) {
	pool, err := store.Connect(ctx, databaseURL, store.DefaultConnectOptions())
	if err != nil {
		return nil, nil, err //nolint:wrapcheck // oops error with code
	}
	return postgres.NewStore(pool), pool.Close, nil
}

var (
	_ Migrator            = (*store.Migrator)(nil)
	_ ObservabilityServer = (*observability.Server)(nil)
	_ DirectoryImporter   = (*postgres.Store)(nil)
)
