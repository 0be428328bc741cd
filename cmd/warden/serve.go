// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/warden/internal/identity"
	"github.com/holomush/warden/internal/observability"
	"github.com/holomush/warden/pkg/errutil"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the authentication core",
		Long: `Open the configured directory, wire the credential validator chain,
session registry and access resolver, expose metrics and wait for a
shutdown signal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, deps)
		},
	}
}

func runServe(cmd *cobra.Command, deps *Deps) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	users, closeUsers, err := deps.DirectoryOpener(ctx, cfg)
	if err != nil {
		return oops.With("operation", "open directory").Wrap(err)
	}
	defer closeUsers()

	var ready atomic.Bool
	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, ready.Load, serverOptions(users, logger)...)
		metrics = obsServer.Metrics()
	} else {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	stack, err := buildAuthStack(cfg, users, logger, metrics)
	if err != nil {
		return err
	}

	if obsServer != nil {
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability", logger)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := obsServer.Stop(shutdownCtx); err != nil {
				errutil.LogWarn(shutdownCtx, logger, "error stopping observability server", err)
			}
		}()
	}

	ready.Store(true)
	cmd.Println("warden ready")
	logger.Info("warden ready",
		"directory", directorySource(cfg.Directory.File, cfg.Directory.DatabaseURL),
		"hash_algorithm", stack.hashers.Default().Algorithm(),
		"password_constraints", stack.constraints.Len(),
		"validators", stack.chain.Len(),
	)

	<-ctx.Done()
	ready.Store(false)

	ended := 0
	for _, userID := range stack.registry.LoggedInUserIDs() {
		ended += stack.registry.LogoutUser(userID)
	}
	logger.Info("shutting down", "sessions_ended", ended)
	return nil
}

// serverOptions returns the observability options for users. Remote
// directories get a readiness check.
func serverOptions(users identity.Store, logger *slog.Logger) []observability.ServerOption {
	opts := []observability.ServerOption{observability.WithServerLogger(logger)}
	if p, ok := users.(identity.Pinger); ok {
		opts = append(opts, observability.WithHealthCheck("directory", p.Ping))
	}
	return opts
}

// directorySource describes the directory without leaking credentials.
func directorySource(file, databaseURL string) string {
	if databaseURL != "" {
		return "postgres"
	}
	return file
}

// monitorServerErrors cancels ctx when the server reports an error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
