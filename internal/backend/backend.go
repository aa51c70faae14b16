// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package backend opens the repositories for the configured storage driver.
package backend

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/holomush/msgboard/internal/auth"
	authmemory "github.com/holomush/msgboard/internal/auth/memory"
	authmongo "github.com/holomush/msgboard/internal/auth/mongodb"
	authpg "github.com/holomush/msgboard/internal/auth/postgres"
	"github.com/holomush/msgboard/internal/board"
	boardmemory "github.com/holomush/msgboard/internal/board/memory"
	boardmongo "github.com/holomush/msgboard/internal/board/mongodb"
	boardpg "github.com/holomush/msgboard/internal/board/postgres"
	"github.com/holomush/msgboard/internal/config"
	"github.com/holomush/msgboard/internal/store"
)

// CodeOpenFailed marks errors from Open.
const CodeOpenFailed = "BACKEND_OPEN_FAILED"

// Backend bundles the repositories of one storage driver.
type Backend struct {
	Driver   string
	Users    auth.UserRepository
	Sessions auth.SessionRepository
	Board    board.Store

	ping  func(context.Context) error
	close func(context.Context) error
}

// Ping reports whether the underlying storage answers.
func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases connections held by the backend.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects to the storage named by cfg.Driver. With AutoMigrate set it
// also applies the Postgres schema or creates the MongoDB indexes.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverMongo:
		return openMongo(ctx, cfg, logger)
	case config.DriverMemory:
		logger.WarnContext(ctx, "using in-memory storage; data is lost on exit")
		return NewMemory(), nil
	default:
		return nil, oops.Code(CodeOpenFailed).
			With("driver", cfg.Driver).
			Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewMemory returns a backend whose repositories live in process memory.
func NewMemory() *Backend {
	return &Backend{
		Driver:   config.DriverMemory,
		Users:    authmemory.NewUserRepository(),
		Sessions: authmemory.NewSessionRepository(),
		Board:    boardmemory.NewStore(),
	}
}

func openPostgres(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Backend, error) {
	if cfg.AutoMigrate {
		if err := migrateUp(cfg.PostgresDSN, logger); err != nil {
			return nil, err
		}
	}

	pool, err := store.NewPool(ctx, cfg.PostgresDSN, cfg.ConnectRetries, logger)
	if err != nil {
		return nil, oops.Code(CodeOpenFailed).With("driver", cfg.Driver).Wrap(err)
	}

	logger.InfoContext(ctx, "connected to postgres")
	return &Backend{
		Driver:   config.DriverPostgres,
		Users:    authpg.NewUserRepository(pool),
		Sessions: authpg.NewSessionRepository(pool),
		Board:    boardpg.NewStore(pool),
		ping:     pool.Ping,
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func migrateUp(dsn string, logger *slog.Logger) error {
	migrator, err := store.NewMigrator(dsn)
	if err != nil {
		return oops.Code(CodeOpenFailed).With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code(CodeOpenFailed).With("operation", "apply migrations").Wrap(err)
	}
	version, _, err := migrator.Version()
	if err == nil {
		logger.Info("schema up to date", "version", version)
	}
	return nil
}

func openMongo(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Backend, error) {
	db, err := store.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.ConnectRetries, logger)
	if err != nil {
		return nil, oops.Code(CodeOpenFailed).With("driver", cfg.Driver).Wrap(err)
	}
	client := db.Client()

	if cfg.AutoMigrate {
		if err := ensureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx)) //nolint:errcheck // index error takes precedence
			return nil, err
		}
	}

	logger.InfoContext(ctx, "connected to mongodb", "database", cfg.MongoDatabase)
	return &Backend{
		Driver:   config.DriverMongo,
		Users:    authmongo.NewUserRepository(db),
		Sessions: authmongo.NewSessionRepository(db),
		Board:    boardmongo.NewStore(db),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}, nil
}

func ensureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if err := authmongo.EnsureIndexes(ctx, db); err != nil {
		return oops.Code(CodeOpenFailed).With("operation", "ensure auth indexes").Wrap(err)
	}
	return nil
}
