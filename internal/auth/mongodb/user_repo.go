// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mongodb

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/holomush/msgboard/internal/auth"
	"github.com/holomush/msgboard/internal/store"
)

// UserRepository implements auth.UserRepository using MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new UserRepository on db's users collection.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.coll.InsertOne(ctx, toUserDoc(user))
	if store.IsMongoDuplicateKey(err) {
		return oops.With("operation", "insert user").Wrap(auth.ErrDuplicate)
	}
	if err != nil {
		return oops.With("operation", "insert user").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	user, err := r.findOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return nil, oops.With("operation", "get user by id").
			With("user_id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	user, err := r.findOne(ctx, bson.M{"email": auth.NormalizeEmail(email)})
	if err != nil {
		return nil, oops.With("operation", "get user by email").Wrap(err)
	}
	return user, nil
}

// Update writes the mutable fields of an existing user.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	doc := toUserDoc(user)
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"email":         doc.Email,
		"password_hash": doc.PasswordHash,
		"is_admin":      doc.IsAdmin,
		"updated_at":    doc.UpdatedAt,
	}})
	if store.IsMongoDuplicateKey(err) {
		return oops.With("operation", "update user").Wrap(auth.ErrDuplicate)
	}
	if err != nil {
		return oops.With("operation", "update user").
			With("user_id", doc.ID).
			Wrap(err)
	}
	if result.MatchedCount == 0 {
		return oops.With("user_id", doc.ID).Wrap(auth.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*auth.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, oops.With("operation", "decode user").Wrap(err)
	}
	return doc.toUser()
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
