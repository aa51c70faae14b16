// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package mongodb implements the auth repositories on MongoDB.
//
// Identifiers are stored as ULID strings in _id. Emails are stored in their
// normalized (lowercase) form so a unique index gives case-insensitive
// uniqueness.
package mongodb

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/msgboard/internal/auth"
)

// Collection names.
const (
	UsersCollection    = "users"
	SessionsCollection = "sessions"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	IsAdmin      bool      `bson:"is_admin"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type viewDoc struct {
	ID      string `bson:"id"`
	Email   string `bson:"email"`
	IsAdmin bool   `bson:"is_admin"`
}

type sessionDoc struct {
	ID         string    `bson:"_id"`
	TokenHash  string    `bson:"token_hash"`
	User       viewDoc   `bson:"user"`
	UserAgent  string    `bson:"user_agent"`
	IPAddress  string    `bson:"ip_address"`
	ExpiresAt  time.Time `bson:"expires_at"`
	CreatedAt  time.Time `bson:"created_at"`
	LastSeenAt time.Time `bson:"last_seen_at"`
}

func toUserDoc(u *auth.User) userDoc {
	return userDoc{
		ID:           u.ID.String(),
		Email:        auth.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toUser() (*auth.User, error) {
	id, err := ulid.Parse(d.ID)
	if err != nil {
		return nil, oops.With("operation", "parse user id").With("user_id", d.ID).Wrap(err)
	}
	return &auth.User{
		ID:           id,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		IsAdmin:      d.IsAdmin,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}

func toSessionDoc(s *auth.Session) sessionDoc {
	view := s.User.Project()
	return sessionDoc{
		ID:        s.ID.String(),
		TokenHash: s.TokenHash,
		User: viewDoc{
			ID:      view.ID.String(),
			Email:   view.Email,
			IsAdmin: view.IsAdmin,
		},
		UserAgent:  s.UserAgent,
		IPAddress:  s.IPAddress,
		ExpiresAt:  s.ExpiresAt,
		CreatedAt:  s.CreatedAt,
		LastSeenAt: s.LastSeenAt,
	}
}

func (d sessionDoc) toSession() (*auth.Session, error) {
	id, err := ulid.Parse(d.ID)
	if err != nil {
		return nil, oops.With("operation", "parse session id").With("session_id", d.ID).Wrap(err)
	}
	userID, err := ulid.Parse(d.User.ID)
	if err != nil {
		return nil, oops.With("operation", "parse session user id").With("session_id", d.ID).Wrap(err)
	}
	return &auth.Session{
		ID:        id,
		TokenHash: d.TokenHash,
		User: auth.PublicView{
			ID:      userID,
			Email:   d.User.Email,
			IsAdmin: d.User.IsAdmin,
		},
		UserAgent:  d.UserAgent,
		IPAddress:  d.IPAddress,
		ExpiresAt:  d.ExpiresAt.UTC(),
		CreatedAt:  d.CreatedAt.UTC(),
		LastSeenAt: d.LastSeenAt.UTC(),
	}, nil
}
