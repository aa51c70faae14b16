// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package memory implements the auth repositories in process memory. It backs
// the "memory" storage driver used for development and the API scenario
// tests. Nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/msgboard/internal/auth"
)

// UserRepository implements auth.UserRepository in memory.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[ulid.ULID]auth.User
	byEmail map[string]ulid.ULID
}

// NewUserRepository creates an empty UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[ulid.ULID]auth.User),
		byEmail: make(map[string]ulid.ULID),
	}
}

// Create stores a copy of user.
func (r *UserRepository) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := auth.NormalizeEmail(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return oops.With("operation", "insert user").Wrap(auth.ErrDuplicate)
	}
	if _, taken := r.byID[user.ID]; taken {
		return oops.With("operation", "insert user").Wrap(auth.ErrDuplicate)
	}
	r.byID[user.ID] = *user
	r.byEmail[email] = user.ID
	return nil
}

// GetByID retrieves a copy of the user with id.
func (r *UserRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, oops.With("user_id", id.String()).Wrap(auth.ErrNotFound)
	}
	return &user, nil
}

// GetByEmail retrieves a copy of the user with email (case-insensitive).
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[auth.NormalizeEmail(email)]
	if !ok {
		return nil, oops.With("operation", "get user by email").Wrap(auth.ErrNotFound)
	}
	user := r.byID[id]
	return &user, nil
}

// Update replaces the stored user.
func (r *UserRepository) Update(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[user.ID]
	if !ok {
		return oops.With("user_id", user.ID.String()).Wrap(auth.ErrNotFound)
	}
	oldEmail := auth.NormalizeEmail(old.Email)
	newEmail := auth.NormalizeEmail(user.Email)
	if newEmail != oldEmail {
		if _, taken := r.byEmail[newEmail]; taken {
			return oops.With("operation", "update user").Wrap(auth.ErrDuplicate)
		}
		delete(r.byEmail, oldEmail)
		r.byEmail[newEmail] = user.ID
	}
	r.byID[user.ID] = *user
	return nil
}

// SessionRepository implements auth.SessionRepository in memory, keyed by
// token hash.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]auth.Session
}

// NewSessionRepository creates an empty SessionRepository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]auth.Session)}
}

// Create stores a copy of session.
func (r *SessionRepository) Create(_ context.Context, session *auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.sessions[session.TokenHash]; taken {
		return oops.With("operation", "insert session").Wrap(auth.ErrDuplicate)
	}
	stored := *session
	stored.User = session.User.Project()
	r.sessions[session.TokenHash] = stored
	return nil
}

// GetByTokenHash retrieves a copy of the session with tokenHash.
func (r *SessionRepository) GetByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[tokenHash]
	if !ok {
		return nil, oops.With("operation", "get session by token hash").Wrap(auth.ErrNotFound)
	}
	return &session, nil
}

// UpdateLastSeen updates the LastSeenAt timestamp for a session.
func (r *SessionRepository) UpdateLastSeen(_ context.Context, id ulid.ULID, lastSeen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hash, session := range r.sessions {
		if session.ID == id {
			session.LastSeenAt = lastSeen
			r.sessions[hash] = session
			return nil
		}
	}
	return oops.With("session_id", id.String()).Wrap(auth.ErrNotFound)
}

// DeleteByTokenHash removes a session.
func (r *SessionRepository) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[tokenHash]; !ok {
		return oops.With("operation", "delete session").Wrap(auth.ErrNotFound)
	}
	delete(r.sessions, tokenHash)
	return nil
}

// DeleteExpired removes all sessions expired at now and returns the count.
func (r *SessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for hash, session := range r.sessions {
		if session.IsExpiredAt(now) {
			delete(r.sessions, hash)
			n++
		}
	}
	return n, nil
}

// Compile-time interface checks.
var (
	_ auth.UserRepository    = (*UserRepository)(nil)
	_ auth.SessionRepository = (*SessionRepository)(nil)
)
