// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/holomush/msgboard/internal/auth"
)

// MockUserRepository is a mock of auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a MockUserRepository whose expectations are
// asserted when the test ends.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create provides a mock function.
func (_m *MockUserRepository) Create(ctx context.Context, user *auth.User) error {
	ret := _m.Called(ctx, user)
	return ret.Error(0)
}

// GetByID provides a mock function.
func (_m *MockUserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	ret := _m.Called(ctx, id)
	var r0 *auth.User
	if v := ret.Get(0); v != nil {
		r0 = v.(*auth.User)
	}
	return r0, ret.Error(1)
}

// GetByEmail provides a mock function.
func (_m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	ret := _m.Called(ctx, email)
	var r0 *auth.User
	if v := ret.Get(0); v != nil {
		r0 = v.(*auth.User)
	}
	return r0, ret.Error(1)
}

// Update provides a mock function.
func (_m *MockUserRepository) Update(ctx context.Context, user *auth.User) error {
	ret := _m.Called(ctx, user)
	return ret.Error(0)
}

// MockSessionRepository is a mock of auth.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// NewMockSessionRepository creates a MockSessionRepository whose expectations
// are asserted when the test ends.
func NewMockSessionRepository(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create provides a mock function.
func (_m *MockSessionRepository) Create(ctx context.Context, session *auth.Session) error {
	ret := _m.Called(ctx, session)
	return ret.Error(0)
}

// GetByTokenHash provides a mock function.
func (_m *MockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	ret := _m.Called(ctx, tokenHash)
	var r0 *auth.Session
	if v := ret.Get(0); v != nil {
		r0 = v.(*auth.Session)
	}
	return r0, ret.Error(1)
}

// UpdateLastSeen provides a mock function.
func (_m *MockSessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	ret := _m.Called(ctx, id, lastSeen)
	return ret.Error(0)
}

// DeleteByTokenHash provides a mock function.
func (_m *MockSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	ret := _m.Called(ctx, tokenHash)
	return ret.Error(0)
}

// DeleteExpired provides a mock function.
func (_m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ret := _m.Called(ctx, now)
	var r0 int64
	if v := ret.Get(0); v != nil {
		r0 = v.(int64)
	}
	return r0, ret.Error(1)
}

// MockPasswordHasher is a mock of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher whose expectations are
// asserted when the test ends.
func NewMockPasswordHasher(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Hash provides a mock function.
func (_m *MockPasswordHasher) Hash(password string) (string, error) {
	ret := _m.Called(password)
	return ret.String(0), ret.Error(1)
}

// Verify provides a mock function.
func (_m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	ret := _m.Called(password, hash)
	return ret.Bool(0), ret.Error(1)
}

// NeedsUpgrade provides a mock function.
func (_m *MockPasswordHasher) NeedsUpgrade(hash string) bool {
	ret := _m.Called(hash)
	return ret.Bool(0)
}
