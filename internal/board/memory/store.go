// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package memory implements board.Store in process memory.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/msgboard/internal/board"
)

// Store implements board.Store in memory. Lists are ordered by id, which
// for ULIDs is creation order.
type Store struct {
	mu       sync.RWMutex
	authors  map[ulid.ULID]board.Author
	articles map[ulid.ULID]board.Article
	comments map[ulid.ULID]board.Comment
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		authors:  make(map[ulid.ULID]board.Author),
		articles: make(map[ulid.ULID]board.Article),
		comments: make(map[ulid.ULID]board.Comment),
	}
}

func byID[T any](id func(T) ulid.ULID) func(a, b T) int {
	return func(a, b T) int { return id(a).Compare(id(b)) }
}

// CreateAuthor stores a copy of author.
func (s *Store) CreateAuthor(_ context.Context, author *board.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authors[author.ID] = *author
	return nil
}

// ListAuthors returns all authors.
func (s *Store) ListAuthors(_ context.Context) ([]board.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]board.Author, 0, len(s.authors))
	for _, a := range s.authors {
		out = append(out, a)
	}
	slices.SortFunc(out, byID(func(a board.Author) ulid.ULID { return a.ID }))
	return out, nil
}

// GetAuthor returns a copy of one author.
func (s *Store) GetAuthor(_ context.Context, id ulid.ULID) (*board.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	author, ok := s.authors[id]
	if !ok {
		return nil, oops.With("author_id", id.String()).Wrap(board.ErrNotFound)
	}
	return &author, nil
}

// UpdateAuthor replaces a stored author.
func (s *Store) UpdateAuthor(_ context.Context, author *board.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.authors[author.ID]; !ok {
		return oops.With("author_id", author.ID.String()).Wrap(board.ErrNotFound)
	}
	s.authors[author.ID] = *author
	return nil
}

// DeleteAuthor removes an author with its articles and comments.
func (s *Store) DeleteAuthor(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.authors[id]; !ok {
		return oops.With("author_id", id.String()).Wrap(board.ErrNotFound)
	}
	delete(s.authors, id)
	for articleID, article := range s.articles {
		if article.AuthorID == id {
			s.deleteArticleLocked(articleID)
		}
	}
	return nil
}

// CreateArticle stores a copy of article.
func (s *Store) CreateArticle(_ context.Context, article *board.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.authors[article.AuthorID]; !ok {
		return oops.With("author_id", article.AuthorID.String()).Wrap(board.ErrNotFound)
	}
	stored := *article
	stored.Comments = nil
	s.articles[article.ID] = stored
	return nil
}

// ListArticles returns the author's articles without comments.
func (s *Store) ListArticles(_ context.Context, authorID ulid.ULID) ([]board.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.authors[authorID]; !ok {
		return nil, oops.With("author_id", authorID.String()).Wrap(board.ErrNotFound)
	}
	out := []board.Article{}
	for _, a := range s.articles {
		if a.AuthorID == authorID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, byID(func(a board.Article) ulid.ULID { return a.ID }))
	return out, nil
}

// GetArticle returns the article with its comments.
func (s *Store) GetArticle(_ context.Context, authorID, articleID ulid.ULID) (*board.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, err := s.articleLocked(authorID, articleID)
	if err != nil {
		return nil, err
	}
	article.Comments = s.commentsLocked(articleID)
	return &article, nil
}

// UpdateArticle replaces the article's title, text and update time.
func (s *Store) UpdateArticle(_ context.Context, article *board.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.articleLocked(article.AuthorID, article.ID)
	if err != nil {
		return err
	}
	stored.Title = article.Title
	stored.Text = article.Text
	stored.UpdatedAt = article.UpdatedAt
	s.articles[article.ID] = stored
	return nil
}

// DeleteArticle removes the article with its comments.
func (s *Store) DeleteArticle(_ context.Context, authorID, articleID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.articleLocked(authorID, articleID); err != nil {
		return err
	}
	s.deleteArticleLocked(articleID)
	return nil
}

// CreateComment stores a copy of comment.
func (s *Store) CreateComment(_ context.Context, authorID ulid.ULID, comment *board.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.articleLocked(authorID, comment.ArticleID); err != nil {
		return err
	}
	s.comments[comment.ID] = *comment
	return nil
}

// ListComments returns the article's comments.
func (s *Store) ListComments(_ context.Context, authorID, articleID ulid.ULID) ([]board.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.articleLocked(authorID, articleID); err != nil {
		return nil, err
	}
	return s.commentsLocked(articleID), nil
}

// GetComment returns a copy of one comment.
func (s *Store) GetComment(_ context.Context, authorID, articleID, commentID ulid.ULID) (*board.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, err := s.commentLocked(authorID, articleID, commentID)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes one comment.
func (s *Store) DeleteComment(_ context.Context, authorID, articleID, commentID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.commentLocked(authorID, articleID, commentID); err != nil {
		return err
	}
	delete(s.comments, commentID)
	return nil
}

func (s *Store) articleLocked(authorID, articleID ulid.ULID) (board.Article, error) {
	article, ok := s.articles[articleID]
	if !ok || article.AuthorID != authorID {
		return board.Article{}, oops.
			With("author_id", authorID.String()).
			With("article_id", articleID.String()).
			Wrap(board.ErrNotFound)
	}
	return article, nil
}

func (s *Store) commentLocked(authorID, articleID, commentID ulid.ULID) (board.Comment, error) {
	if _, err := s.articleLocked(authorID, articleID); err != nil {
		return board.Comment{}, err
	}
	comment, ok := s.comments[commentID]
	if !ok || comment.ArticleID != articleID {
		return board.Comment{}, oops.With("comment_id", commentID.String()).Wrap(board.ErrNotFound)
	}
	return comment, nil
}

func (s *Store) commentsLocked(articleID ulid.ULID) []board.Comment {
	out := []board.Comment{}
	for _, c := range s.comments {
		if c.ArticleID == articleID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, byID(func(c board.Comment) ulid.ULID { return c.ID }))
	return out
}

func (s *Store) deleteArticleLocked(articleID ulid.ULID) {
	delete(s.articles, articleID)
	for id, c := range s.comments {
		if c.ArticleID == articleID {
			delete(s.comments, id)
		}
	}
}

var _ board.Store = (*Store)(nil)
