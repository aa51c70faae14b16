// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/holomush/msgboard/internal/auth"
)

// SessionRepository implements auth.SessionRepository using MongoDB.
type SessionRepository struct {
	coll *mongo.Collection
}

// NewSessionRepository creates a new SessionRepository on db's sessions
// collection.
func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(SessionsCollection)}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	if _, err := r.coll.InsertOne(ctx, toSessionDoc(session)); err != nil {
		return oops.With("operation", "insert session").
			With("user_id", session.User.ID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	var doc sessionDoc
	err := r.coll.FindOne(ctx, bson.M{"token_hash": tokenHash}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, oops.With("operation", "get session by token hash").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get session by token hash").Wrap(err)
	}
	return doc.toSession()
}

// UpdateLastSeen updates the LastSeenAt timestamp for a session.
func (r *SessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"last_seen_at": lastSeen}})
	if err != nil {
		return oops.With("operation", "update last_seen_at").
			With("session_id", id.String()).
			Wrap(err)
	}
	if result.MatchedCount == 0 {
		return oops.With("session_id", id.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteByTokenHash removes a session.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"token_hash": tokenHash})
	if err != nil {
		return oops.With("operation", "delete session").Wrap(err)
	}
	if result.DeletedCount == 0 {
		return oops.With("operation", "delete session").Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteExpired removes all sessions expired at now and returns the count.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, oops.With("operation", "delete expired sessions").Wrap(err)
	}
	return result.DeletedCount, nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
