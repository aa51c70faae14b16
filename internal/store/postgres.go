// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store bootstraps the storage backends: the Postgres pool, the
// MongoDB client and the embedded schema migrations.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Pool is the subset of *pgxpool.Pool the repositories use. It is satisfied
// by pgxmock.PgxPoolIface in unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Compile-time interface check.
var _ Pool = (*pgxpool.Pool)(nil)

// Connect backoff bounds.
const (
	connectBaseDelay = 250 * time.Millisecond
	connectMaxDelay  = 5 * time.Second
)

// NewPool opens a pgx pool and waits until the server answers a ping,
// retrying up to retries extra times with exponential backoff.
func NewPool(ctx context.Context, dsn string, retries uint64, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.Code("STORE_INVALID_DSN").With("operation", "parse postgres dsn").Wrap(err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").With("operation", "create postgres pool").Wrap(err)
	}

	err = withRetry(ctx, retries, logger, "postgres", pool.Ping)
	if err != nil {
		pool.Close()
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("operation", "ping postgres").
			With("host", cfg.ConnConfig.Host).
			Wrap(err)
	}
	return pool, nil
}

// withRetry runs fn until it succeeds, ctx ends or retries are exhausted.
func withRetry(ctx context.Context, retries uint64, logger *slog.Logger, backend string, fn func(context.Context) error) error {
	backoff := retry.NewExponential(connectBaseDelay)
	backoff = retry.WithCappedDuration(connectMaxDelay, backoff)
	backoff = retry.WithMaxRetries(retries, backoff)

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := fn(ctx); err != nil {
			if logger != nil {
				logger.WarnContext(ctx, "storage not reachable yet",
					"backend", backend,
					"attempt", attempt,
					"error", err)
			}
			return retry.RetryableError(err)
		}
		return nil
	})
}
