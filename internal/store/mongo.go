// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// NewMongoDatabase connects to uri and returns the named database once the
// primary answers a ping. Connection attempts follow the same backoff as
// NewPool.
func NewMongoDatabase(ctx context.Context, uri, database string, retries uint64, logger *slog.Logger) (*mongo.Database, error) {
	if database == "" {
		return nil, oops.Code("STORE_INVALID_DSN").Errorf("mongo database name is required")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").With("operation", "create mongo client").Wrap(err)
	}

	err = withRetry(ctx, retries, logger, "mongo", func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx)) //nolint:errcheck // connect error takes precedence
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("operation", "ping mongo").
			With("database", database).
			Wrap(err)
	}
	return client.Database(database), nil
}
