// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package mocks provides testify mocks for the board package interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/holomush/msgboard/internal/board"
)

// MockStore is a mock of board.Store.
type MockStore struct {
	mock.Mock
}

// NewMockStore creates a MockStore whose expectations are asserted when the
// test ends.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// CreateAuthor provides a mock function.
func (_m *MockStore) CreateAuthor(ctx context.Context, author *board.Author) error {
	ret := _m.Called(ctx, author)
	return ret.Error(0)
}

// ListAuthors provides a mock function.
func (_m *MockStore) ListAuthors(ctx context.Context) ([]board.Author, error) {
	ret := _m.Called(ctx)
	var r0 []board.Author
	if v := ret.Get(0); v != nil {
		r0 = v.([]board.Author)
	}
	return r0, ret.Error(1)
}

// GetAuthor provides a mock function.
func (_m *MockStore) GetAuthor(ctx context.Context, id ulid.ULID) (*board.Author, error) {
	ret := _m.Called(ctx, id)
	var r0 *board.Author
	if v := ret.Get(0); v != nil {
		r0 = v.(*board.Author)
	}
	return r0, ret.Error(1)
}

// UpdateAuthor provides a mock function.
func (_m *MockStore) UpdateAuthor(ctx context.Context, author *board.Author) error {
	ret := _m.Called(ctx, author)
	return ret.Error(0)
}

// DeleteAuthor provides a mock function.
func (_m *MockStore) DeleteAuthor(ctx context.Context, id ulid.ULID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// CreateArticle provides a mock function.
func (_m *MockStore) CreateArticle(ctx context.Context, article *board.Article) error {
	ret := _m.Called(ctx, article)
	return ret.Error(0)
}

// ListArticles provides a mock function.
func (_m *MockStore) ListArticles(ctx context.Context, authorID ulid.ULID) ([]board.Article, error) {
	ret := _m.Called(ctx, authorID)
	var r0 []board.Article
	if v := ret.Get(0); v != nil {
		r0 = v.([]board.Article)
	}
	return r0, ret.Error(1)
}

// GetArticle provides a mock function.
func (_m *MockStore) GetArticle(ctx context.Context, authorID, articleID ulid.ULID) (*board.Article, error) {
	ret := _m.Called(ctx, authorID, articleID)
	var r0 *board.Article
	if v := ret.Get(0); v != nil {
		r0 = v.(*board.Article)
	}
	return r0, ret.Error(1)
}

// UpdateArticle provides a mock function.
func (_m *MockStore) UpdateArticle(ctx context.Context, article *board.Article) error {
	ret := _m.Called(ctx, article)
	return ret.Error(0)
}

// DeleteArticle provides a mock function.
func (_m *MockStore) DeleteArticle(ctx context.Context, authorID, articleID ulid.ULID) error {
	ret := _m.Called(ctx, authorID, articleID)
	return ret.Error(0)
}

// CreateComment provides a mock function.
func (_m *MockStore) CreateComment(ctx context.Context, authorID ulid.ULID, comment *board.Comment) error {
	ret := _m.Called(ctx, authorID, comment)
	return ret.Error(0)
}

// ListComments provides a mock function.
func (_m *MockStore) ListComments(ctx context.Context, authorID, articleID ulid.ULID) ([]board.Comment, error) {
	ret := _m.Called(ctx, authorID, articleID)
	var r0 []board.Comment
	if v := ret.Get(0); v != nil {
		r0 = v.([]board.Comment)
	}
	return r0, ret.Error(1)
}

// GetComment provides a mock function.
func (_m *MockStore) GetComment(ctx context.Context, authorID, articleID, commentID ulid.ULID) (*board.Comment, error) {
	ret := _m.Called(ctx, authorID, articleID, commentID)
	var r0 *board.Comment
	if v := ret.Get(0); v != nil {
		r0 = v.(*board.Comment)
	}
	return r0, ret.Error(1)
}

// DeleteComment provides a mock function.
func (_m *MockStore) DeleteComment(ctx context.Context, authorID, articleID, commentID ulid.ULID) error {
	ret := _m.Called(ctx, authorID, articleID, commentID)
	return ret.Error(0)
}

var _ board.Store = (*MockStore)(nil)
