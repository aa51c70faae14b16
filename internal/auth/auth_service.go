// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// dummyPasswordHash is verified against when an email is unknown so the
// response time matches a real mismatch. It never matches any password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZyS8lq1Gz.R5b1r5RTmJXy"

// Service provides registration, login and session operations.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	hasher   PasswordHasher
	logger   *slog.Logger
	ttl      time.Duration
	now      func() time.Time
	dummy    string
}

// ServiceOption configures optional Service behaviour.
type ServiceOption func(*Service)

// WithSessionTTL sets how long a session stays valid after login.
// Non-positive values keep DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAuthService creates a new Service using slog.Default for logging.
func NewAuthService(users UserRepository, sessions SessionRepository, hasher PasswordHasher, opts ...ServiceOption) (*Service, error) {
	return NewAuthServiceWithLogger(users, sessions, hasher, slog.Default(), opts...)
}

// NewAuthServiceWithLogger creates a new Service with an explicit logger.
func NewAuthServiceWithLogger(
	users UserRepository,
	sessions SessionRepository,
	hasher PasswordHasher,
	logger *slog.Logger,
	opts ...ServiceOption,
) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}

	s := &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
		ttl:      DefaultSessionTTL,
		now:      func() time.Time { return time.Now().UTC() },
		dummy:    dummyPasswordHash,
	}
	if dh, ok := hasher.(dummyHasher); ok {
		s.dummy = dh.DummyHash()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SessionTTL returns the lifetime given to new sessions.
func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// Register creates a non-admin account. It does not log the user in.
func (s *Service) Register(ctx context.Context, email, password string) (PublicView, error) {
	if err := ValidateEmail(email); err != nil {
		return PublicView{}, err
	}
	if err := ValidatePassword(password); err != nil {
		return PublicView{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return PublicView{}, oops.Code(CodeStoreFailed).
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, hash)
	if err != nil {
		return PublicView{}, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return PublicView{}, oops.Code(CodeDuplicateAccount).Errorf("%s", MsgDuplicateAccount)
		}
		return PublicView{}, oops.Code(CodeStoreFailed).
			With("operation", "create user").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID.String())
	return Project(user), nil
}

// Login authenticates by email and password and opens a new session.
// Unknown email and wrong password are indistinguishable to the caller,
// both in the error returned and in the work done. The plaintext token is
// returned only after the session has been persisted.
func (s *Service) Login(ctx context.Context, handle SessionHandle, email, password string) (PublicView, string, error) {
	if email == "" {
		return PublicView{}, "", NewValidationError(`"email" is not allowed to be empty`)
	}
	if password == "" {
		return PublicView{}, "", NewValidationError(`"password" is not allowed to be empty`)
	}

	user, lookupErr := s.users.GetByEmail(ctx, NormalizeEmail(email))

	targetHash := s.dummy
	userExists := false
	switch {
	case lookupErr == nil:
		targetHash = user.PasswordHash
		userExists = true
	case errors.Is(lookupErr, ErrNotFound):
	default:
		return PublicView{}, "", oops.Code(CodeStoreFailed).
			With("operation", "get user by email").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if userExists {
			s.logger.WarnContext(ctx, "stored password hash could not be verified",
				"operation", "verify_password",
				"user_id", user.ID.String(),
				"error", verifyErr)
		}
		valid = false
	}
	if !userExists || !valid {
		return PublicView{}, "", invalidCredentials()
	}

	s.upgradeHash(ctx, user, password)

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return PublicView{}, "", oops.Code(CodeSessionFailed).
			With("operation", "generate session token").
			Wrap(err)
	}

	now := s.now()
	view := Project(user)
	session, err := NewSession(view, tokenHash, handle.UserAgent, handle.IPAddress, now, now.Add(s.ttl))
	if err != nil {
		return PublicView{}, "", oops.Code(CodeSessionFailed).
			With("operation", "build session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return PublicView{}, "", oops.Code(CodeSessionFailed).
			With("operation", "persist session").
			Wrap(err)
	}

	if handle.HasToken() {
		s.revoke(ctx, HashSessionToken(handle.Token))
	}

	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID.String(),
		"session_id", session.ID.String())
	return view, token, nil
}

// CurrentSession returns the view stored in the handle's session without
// re-reading the user.
func (s *Service) CurrentSession(ctx context.Context, handle SessionHandle) (PublicView, error) {
	if !handle.HasToken() {
		return PublicView{}, unauthenticated()
	}

	tokenHash := HashSessionToken(handle.Token)
	session, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PublicView{}, unauthenticated()
		}
		return PublicView{}, oops.Code(CodeSessionFailed).
			With("operation", "get session by token hash").
			Wrap(err)
	}

	now := s.now()
	if session.IsExpiredAt(now) {
		s.revoke(ctx, tokenHash)
		return PublicView{}, unauthenticated()
	}

	if err := s.sessions.UpdateLastSeen(ctx, session.ID, now); err != nil {
		s.logger.WarnContext(ctx, "best-effort session update failed",
			"operation", "update_last_seen",
			"session_id", session.ID.String(),
			"error", err)
	}

	return session.User, nil
}

// Logout destroys the handle's session. A missing session is not an error.
func (s *Service) Logout(ctx context.Context, handle SessionHandle) error {
	if !handle.HasToken() {
		return nil
	}

	err := s.sessions.DeleteByTokenHash(ctx, HashSessionToken(handle.Token))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return oops.Code(CodeSessionFailed).
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// PruneSessions deletes every expired session and returns how many went.
func (s *Service) PruneSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, oops.Code(CodeSessionFailed).
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "pruned expired sessions", "count", n)
	}
	return n, nil
}

// upgradeHash rehashes with the current algorithm and cost. Login succeeds
// regardless of the outcome.
func (s *Service) upgradeHash(ctx context.Context, user *User, password string) {
	if !s.hasher.NeedsUpgrade(user.PasswordHash) {
		return
	}
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WarnContext(ctx, "best-effort password upgrade failed",
			"operation", "rehash_password",
			"user_id", user.ID.String(),
			"error", err)
		return
	}
	user.PasswordHash = newHash
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "best-effort password upgrade failed",
			"operation", "store_upgraded_hash",
			"user_id", user.ID.String(),
			"error", err)
	}
}

func (s *Service) revoke(ctx context.Context, tokenHash string) {
	err := s.sessions.DeleteByTokenHash(ctx, tokenHash)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.WarnContext(ctx, "best-effort session revoke failed",
			"operation", "revoke_session",
			"error", err)
	}
}
