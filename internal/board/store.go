// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package board

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Store persists the board. Article and comment operations are addressed
// through their parents; an id that exists under a different parent is
// reported as ErrNotFound. Implementations wrap ErrNotFound without an oops
// code.
type Store interface {
	CreateAuthor(ctx context.Context, author *Author) error
	ListAuthors(ctx context.Context) ([]Author, error)
	GetAuthor(ctx context.Context, id ulid.ULID) (*Author, error)
	UpdateAuthor(ctx context.Context, author *Author) error
	// DeleteAuthor removes the author with its articles and their comments.
	DeleteAuthor(ctx context.Context, id ulid.ULID) error

	// CreateArticle stores article under article.AuthorID.
	CreateArticle(ctx context.Context, article *Article) error
	// ListArticles returns the author's articles without comments.
	ListArticles(ctx context.Context, authorID ulid.ULID) ([]Article, error)
	// GetArticle returns the article with its comments.
	GetArticle(ctx context.Context, authorID, articleID ulid.ULID) (*Article, error)
	UpdateArticle(ctx context.Context, article *Article) error
	// DeleteArticle removes the article with its comments.
	DeleteArticle(ctx context.Context, authorID, articleID ulid.ULID) error

	// CreateComment stores comment under comment.ArticleID, which must
	// belong to authorID.
	CreateComment(ctx context.Context, authorID ulid.ULID, comment *Comment) error
	ListComments(ctx context.Context, authorID, articleID ulid.ULID) ([]Comment, error)
	GetComment(ctx context.Context, authorID, articleID, commentID ulid.ULID) (*Comment, error)
	DeleteComment(ctx context.Context, authorID, articleID, commentID ulid.ULID) error
}
