// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/msgboard/internal/auth"
	"github.com/holomush/msgboard/internal/store"
)

const sessionColumns = `id, token_hash, user_view, user_agent, ip_address, expires_at, created_at, last_seen_at`

// SessionRepository implements auth.SessionRepository using PostgreSQL.
// The session's PublicView is stored as JSONB next to the owning user id.
type SessionRepository struct {
	pool store.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool store.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	view, err := json.Marshal(session.User.Project())
	if err != nil {
		return oops.With("operation", "marshal session user").Wrap(err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO sessions (id, token_hash, user_id, user_view, user_agent, ip_address, expires_at, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		session.ID.String(),
		session.TokenHash,
		session.User.ID.String(),
		view,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
		session.CreatedAt,
		session.LastSeenAt,
	)
	if err != nil {
		return oops.With("operation", "insert session").
			With("user_id", session.User.ID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token_hash = $1`, tokenHash)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.With("operation", "get session by token hash").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get session by token hash").Wrap(err)
	}
	return session, nil
}

// UpdateLastSeen updates the LastSeenAt timestamp for a session.
func (r *SessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	result, err := r.pool.Exec(ctx, `UPDATE sessions SET last_seen_at = $2 WHERE id = $1`, id.String(), lastSeen)
	if err != nil {
		return oops.With("operation", "update last_seen_at").
			With("session_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.With("session_id", id.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteByTokenHash removes a session.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return oops.With("operation", "delete session").Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.With("operation", "delete session").Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteExpired removes all sessions expired at now and returns the count.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.With("operation", "delete expired sessions").Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanSession scans a single row into a Session.
// pgx.ErrNoRows is returned unwrapped for callers to classify.
func scanSession(row pgx.Row) (*auth.Session, error) {
	var (
		idStr   string
		view    []byte
		session auth.Session
	)
	err := row.Scan(
		&idStr,
		&session.TokenHash,
		&view,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.With("operation", "scan session").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse session id").
			With("session_id", idStr).
			Wrap(err)
	}
	session.ID = id

	if err := json.Unmarshal(view, &session.User); err != nil {
		return nil, oops.With("operation", "unmarshal session user").
			With("session_id", idStr).
			Wrap(err)
	}
	return &session, nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
