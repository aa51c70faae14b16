// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/holomush/msgboard/internal/api"
	"github.com/holomush/msgboard/internal/backend"
	"github.com/holomush/msgboard/internal/config"
	"github.com/holomush/msgboard/internal/observability"
	"github.com/holomush/msgboard/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// BackendOpener connects to the configured storage.
	// Default: backend.Open
	BackendOpener func(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*backend.Backend, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// APIServerFactory creates the HTTP API server.
	// Default: api.NewServer
	APIServerFactory func(authSvc api.AuthService, boardSvc api.BoardService, opts api.Options) APIServer
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.BackendOpener == nil {
		out.BackendOpener = backend.Open
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if out.APIServerFactory == nil {
		out.APIServerFactory = func(authSvc api.AuthService, boardSvc api.BoardService, opts api.Options) APIServer {
			return api.NewServer(authSvc, boardSvc, opts)
		}
	}
	return &out
}

// MigrateDeps contains injectable dependencies for the migrate command.
type MigrateDeps struct {
	// MigratorFactory creates a schema migrator for a Postgres URL.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// BackendOpener connects to the configured storage; used to create
	// MongoDB indexes.
	// Default: backend.Open
	BackendOpener func(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*backend.Backend, error)
}

func (d *MigrateDeps) withDefaults() *MigrateDeps {
	out := MigrateDeps{}
	if d != nil {
		out = *d
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if out.BackendOpener == nil {
		out.BackendOpener = backend.Open
	}
	return &out
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// APIServer interface wraps the methods used from api.Server.
type APIServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
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
