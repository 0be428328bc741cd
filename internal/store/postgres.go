// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store manages the PostgreSQL connection and schema migrations
// backing the identity store.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ConnectOptions tunes how Connect waits for the database.
type ConnectOptions struct {
	// MaxRetries bounds the number of ping retries after the first attempt.
	MaxRetries uint64
	// BaseDelay is the first backoff interval; it doubles on every retry.
	BaseDelay time.Duration
	// MaxDelay caps a single backoff interval.
	MaxDelay time.Duration
}

// DefaultConnectOptions returns the options used by the warden binary.
func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{
		MaxRetries: 5,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
}

func (o ConnectOptions) backoff() retry.Backoff {
	b := retry.NewExponential(o.BaseDelay)
	if o.MaxDelay > 0 {
		b = retry.WithCappedDuration(o.MaxDelay, b)
	}
	return retry.WithMaxRetries(o.MaxRetries, b)
}

// Connect opens a pgx pool and pings it until the database answers or the
// retry budget is spent.
func Connect(ctx context.Context, databaseURL string, opts ConnectOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").Wrap(err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}

	attempts := 0
	err = retry.Do(ctx, opts.backoff(), func(ctx context.Context) error {
		attempts++
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("host", cfg.ConnConfig.Host).
			With("attempts", attempts).
			Wrap(err)
	}
	return pool, nil
}
