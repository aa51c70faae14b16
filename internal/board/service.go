// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package board

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/msgboard/internal/auth"
)

// Service applies validation and ownership rules on top of a Store.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// ServiceOption configures optional Service behaviour.
type ServiceOption func(*Service)

// WithClock replaces the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a board Service.
func NewService(store Store, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, oops.Errorf("board store is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	s := &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateAuthor creates an author owned by actor.
func (s *Service) CreateAuthor(ctx context.Context, actor auth.PublicView, nickName string) (*Author, error) {
	if actor.IsZero() {
		return nil, auth.NewUnauthenticatedError()
	}
	if err := ValidateNickName(nickName); err != nil {
		return nil, err
	}

	now := s.now()
	author := &Author{
		ID:        ulid.Make(),
		NickName:  nickName,
		OwnerID:   actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateAuthor(ctx, author); err != nil {
		return nil, storeFailed(err, "create author", MsgAuthorNotFound)
	}

	s.logger.InfoContext(ctx, "author created",
		"author_id", author.ID.String(),
		"user_id", actor.ID.String())
	return author, nil
}

// ListAuthors returns every author.
func (s *Service) ListAuthors(ctx context.Context) ([]Author, error) {
	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, storeFailed(err, "list authors", MsgAuthorNotFound)
	}
	return authors, nil
}

// GetAuthor returns one author.
func (s *Service) GetAuthor(ctx context.Context, id ulid.ULID) (*Author, error) {
	author, err := s.store.GetAuthor(ctx, id)
	if err != nil {
		return nil, storeFailed(err, "get author", MsgAuthorNotFound)
	}
	return author, nil
}

// UpdateAuthor renames an author. Only its owner or an admin may do so.
func (s *Service) UpdateAuthor(ctx context.Context, actor auth.PublicView, id ulid.ULID, nickName string) (*Author, error) {
	if actor.IsZero() {
		return nil, auth.NewUnauthenticatedError()
	}
	if err := ValidateNickName(nickName); err != nil {
		return nil, err
	}

	author, err := s.authorizeAuthor(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	author.NickName = nickName
	author.UpdatedAt = s.now()
	if err := s.store.UpdateAuthor(ctx, author); err != nil {
		return nil, storeFailed(err, "update author", MsgAuthorNotFound)
	}
	return author, nil
}

// DeleteAuthor removes an author with all of its articles and comments.
func (s *Service) DeleteAuthor(ctx context.Context, actor auth.PublicView, id ulid.ULID) error {
	if actor.IsZero() {
		return auth.NewUnauthenticatedError()
	}
	if _, err := s.authorizeAuthor(ctx, actor, id); err != nil {
		return err
	}
	if err := s.store.DeleteAuthor(ctx, id); err != nil {
		return storeFailed(err, "delete author", MsgAuthorNotFound)
	}

	s.logger.InfoContext(ctx, "author deleted",
		"author_id", id.String(),
		"user_id", actor.ID.String())
	return nil
}

// CreateArticle publishes an article under an author the actor controls.
func (s *Service) CreateArticle(ctx context.Context, actor auth.PublicView, authorID ulid.ULID, title, text string) (*Article, error) {
	if actor.IsZero() {
		return nil, auth.NewUnauthenticatedError()
	}
	if err := validateArticle(title, text); err != nil {
		return nil, err
	}
	if _, err := s.authorizeAuthor(ctx, actor, authorID); err != nil {
		return nil, err
	}

	now := s.now()
	article := &Article{
		ID:        ulid.Make(),
		AuthorID:  authorID,
		Title:     title,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateArticle(ctx, article); err != nil {
		return nil, storeFailed(err, "create article", MsgAuthorNotFound)
	}
	return article, nil
}

// ListArticles returns the author's articles without their comments.
func (s *Service) ListArticles(ctx context.Context, authorID ulid.ULID) ([]Article, error) {
	articles, err := s.store.ListArticles(ctx, authorID)
	if err != nil {
		return nil, storeFailed(err, "list articles", MsgAuthorNotFound)
	}
	return articles, nil
}

// GetArticle returns one article with its comments.
func (s *Service) GetArticle(ctx context.Context, authorID, articleID ulid.ULID) (*Article, error) {
	article, err := s.store.GetArticle(ctx, authorID, articleID)
	if err != nil {
		return nil, storeFailed(err, "get article", MsgArticleNotFound)
	}
	return article, nil
}

// UpdateArticle replaces an article's title and text.
func (s *Service) UpdateArticle(ctx context.Context, actor auth.PublicView, authorID, articleID ulid.ULID, title, text string) (*Article, error) {
	if actor.IsZero() {
		return nil, auth.NewUnauthenticatedError()
	}
	if err := validateArticle(title, text); err != nil {
		return nil, err
	}
	if _, err := s.authorizeAuthor(ctx, actor, authorID); err != nil {
		return nil, err
	}

	article, err := s.store.GetArticle(ctx, authorID, articleID)
	if err != nil {
		return nil, storeFailed(err, "get article", MsgArticleNotFound)
	}
	article.Title = title
	article.Text = text
	article.UpdatedAt = s.now()
	if err := s.store.UpdateArticle(ctx, article); err != nil {
		return nil, storeFailed(err, "update article", MsgArticleNotFound)
	}
	return article, nil
}

// DeleteArticle removes an article and its comments.
func (s *Service) DeleteArticle(ctx context.Context, actor auth.PublicView, authorID, articleID ulid.ULID) error {
	if actor.IsZero() {
		return auth.NewUnauthenticatedError()
	}
	if _, err := s.authorizeAuthor(ctx, actor, authorID); err != nil {
		return err
	}
	if err := s.store.DeleteArticle(ctx, authorID, articleID); err != nil {
		return storeFailed(err, "delete article", MsgArticleNotFound)
	}
	return nil
}

// AddComment lets any signed-in user reply to an article.
func (s *Service) AddComment(ctx context.Context, actor auth.PublicView, authorID, articleID ulid.ULID, title, text string) (*Comment, error) {
	if actor.IsZero() {
		return nil, auth.NewUnauthenticatedError()
	}
	if err := validateArticle(title, text); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:        ulid.Make(),
		ArticleID: articleID,
		UserID:    actor.ID,
		Title:     title,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateComment(ctx, authorID, comment); err != nil {
		return nil, storeFailed(err, "create comment", MsgArticleNotFound)
	}
	return comment, nil
}

// ListComments returns an article's comments, oldest first.
func (s *Service) ListComments(ctx context.Context, authorID, articleID ulid.ULID) ([]Comment, error) {
	comments, err := s.store.ListComments(ctx, authorID, articleID)
	if err != nil {
		return nil, storeFailed(err, "list comments", MsgArticleNotFound)
	}
	return comments, nil
}

// DeleteComment removes a comment. Only its writer or an admin may do so.
func (s *Service) DeleteComment(ctx context.Context, actor auth.PublicView, authorID, articleID, commentID ulid.ULID) error {
	if actor.IsZero() {
		return auth.NewUnauthenticatedError()
	}

	comment, err := s.store.GetComment(ctx, authorID, articleID, commentID)
	if err != nil {
		return storeFailed(err, "get comment", MsgCommentNotFound)
	}
	if comment.UserID != actor.ID && !actor.IsAdmin {
		return forbidden()
	}

	if err := s.store.DeleteComment(ctx, authorID, articleID, commentID); err != nil {
		return storeFailed(err, "delete comment", MsgCommentNotFound)
	}
	return nil
}

// authorizeAuthor loads the author and checks the actor may change it.
func (s *Service) authorizeAuthor(ctx context.Context, actor auth.PublicView, id ulid.ULID) (*Author, error) {
	author, err := s.store.GetAuthor(ctx, id)
	if err != nil {
		return nil, storeFailed(err, "get author", MsgAuthorNotFound)
	}
	if author.OwnerID != actor.ID && !actor.IsAdmin {
		s.logger.DebugContext(ctx, "board change denied",
			"author_id", id.String(),
			"user_id", actor.ID.String())
		return nil, forbidden()
	}
	return author, nil
}

func validateArticle(title, text string) error {
	if err := ValidateTitle(title); err != nil {
		return err
	}
	return ValidateText(text)
}
