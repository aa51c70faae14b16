// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package postgres implements board.Store on PostgreSQL. Cascading deletes
// are left to the foreign keys declared in the board migration.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/msgboard/internal/board"
	"github.com/holomush/msgboard/internal/store"
)

const (
	authorColumns  = `id, nick_name, owner_id, created_at, updated_at`
	articleColumns = `id, author_id, title, body, created_at, updated_at`
	commentColumns = `c.id, c.article_id, c.user_id, c.title, c.body, c.created_at`
)

// Store implements board.Store using PostgreSQL.
type Store struct {
	pool store.Pool
}

// NewStore creates a new Store.
func NewStore(pool store.Pool) *Store {
	return &Store{pool: pool}
}

// CreateAuthor stores a new author. A missing owner is reported as not found.
func (s *Store) CreateAuthor(ctx context.Context, author *board.Author) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO authors (`+authorColumns+`)
		VALUES ($1, $2, $3, $4, $5)
	`,
		author.ID.String(),
		author.NickName,
		author.OwnerID.String(),
		author.CreatedAt,
		author.UpdatedAt,
	)
	if store.IsForeignKeyViolation(err) {
		return oops.With("owner_id", author.OwnerID.String()).Wrap(board.ErrNotFound)
	}
	if err != nil {
		return oops.With("operation", "insert author").Wrap(err)
	}
	return nil
}

// ListAuthors returns every author in creation order.
func (s *Store) ListAuthors(ctx context.Context) ([]board.Author, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+authorColumns+` FROM authors ORDER BY id`)
	if err != nil {
		return nil, oops.With("operation", "list authors").Wrap(err)
	}
	defer rows.Close()

	authors := make([]board.Author, 0)
	for rows.Next() {
		author, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, *author)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate authors").Wrap(err)
	}
	return authors, nil
}

// GetAuthor retrieves one author.
func (s *Store) GetAuthor(ctx context.Context, id ulid.ULID) (*board.Author, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = $1`, id.String())
	author, err := scanAuthor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.With("author_id", id.String()).Wrap(board.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get author").With("author_id", id.String()).Wrap(err)
	}
	return author, nil
}

// UpdateAuthor writes the author's nick name.
func (s *Store) UpdateAuthor(ctx context.Context, author *board.Author) error {
	result, err := s.pool.Exec(ctx,
		`UPDATE authors SET nick_name = $2, updated_at = $3 WHERE id = $1`,
		author.ID.String(), author.NickName, author.UpdatedAt)
	if err != nil {
		return oops.With("operation", "update author").With("author_id", author.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.With("author_id", author.ID.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

// DeleteAuthor removes an author; articles and comments follow by cascade.
func (s *Store) DeleteAuthor(ctx context.Context, id ulid.ULID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id.String())
	if err != nil {
		return oops.With("operation", "delete author").With("author_id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.With("author_id", id.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

// CreateArticle stores a new article under its author.
func (s *Store) CreateArticle(ctx context.Context, article *board.Article) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO articles (`+articleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		article.ID.String(),
		article.AuthorID.String(),
		article.Title,
		article.Text,
		article.CreatedAt,
		article.UpdatedAt,
	)
	if store.IsForeignKeyViolation(err) {
		return oops.With("author_id", article.AuthorID.String()).Wrap(board.ErrNotFound)
	}
	if err != nil {
		return oops.With("operation", "insert article").Wrap(err)
	}
	return nil
}

// ListArticles returns an author's articles in creation order.
func (s *Store) ListArticles(ctx context.Context, authorID ulid.ULID) ([]board.Article, error) {
	if err := s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM authors WHERE id = $1)`, authorID.String()); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE author_id = $1 ORDER BY id`,
		authorID.String())
	if err != nil {
		return nil, oops.With("operation", "list articles").With("author_id", authorID.String()).Wrap(err)
	}
	defer rows.Close()

	articles := make([]board.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate articles").Wrap(err)
	}
	return articles, nil
}

// GetArticle retrieves an article and its comments.
func (s *Store) GetArticle(ctx context.Context, authorID, articleID ulid.ULID) (*board.Article, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1 AND author_id = $2`,
		articleID.String(), authorID.String())
	article, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.With("article_id", articleID.String()).Wrap(board.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get article").With("article_id", articleID.String()).Wrap(err)
	}

	article.Comments, err = s.listComments(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// UpdateArticle writes an article's title and text.
func (s *Store) UpdateArticle(ctx context.Context, article *board.Article) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE articles SET title = $3, body = $4, updated_at = $5
		WHERE id = $1 AND author_id = $2
	`,
		article.ID.String(),
		article.AuthorID.String(),
		article.Title,
		article.Text,
		article.UpdatedAt,
	)
	if err != nil {
		return oops.With("operation", "update article").With("article_id", article.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.With("article_id", article.ID.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

// DeleteArticle removes an article; its comments follow by cascade.
func (s *Store) DeleteArticle(ctx context.Context, authorID, articleID ulid.ULID) error {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM articles WHERE id = $1 AND author_id = $2`,
		articleID.String(), authorID.String())
	if err != nil {
		return oops.With("operation", "delete article").With("article_id", articleID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.With("article_id", articleID.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

// CreateComment stores a comment if its article belongs to authorID.
func (s *Store) CreateComment(ctx context.Context, authorID ulid.ULID, comment *board.Comment) error {
	result, err := s.pool.Exec(ctx, `
		INSERT INTO comments (id, article_id, user_id, title, body, created_at)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::text, $6::timestamptz
		WHERE EXISTS (SELECT 1 FROM articles WHERE id = $2::text AND author_id = $7::text)
	`,
		comment.ID.String(),
		comment.ArticleID.String(),
		comment.UserID.String(),
		comment.Title,
		comment.Text,
		comment.CreatedAt,
		authorID.String(),
	)
	if store.IsForeignKeyViolation(err) {
		return oops.With("user_id", comment.UserID.String()).Wrap(board.ErrNotFound)
	}
	if err != nil {
		return oops.With("operation", "insert comment").Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.With("article_id", comment.ArticleID.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

// ListComments returns an article's comments in creation order.
func (s *Store) ListComments(ctx context.Context, authorID, articleID ulid.ULID) ([]board.Comment, error) {
	err := s.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE id = $1 AND author_id = $2)`,
		articleID.String(), authorID.String())
	if err != nil {
		return nil, err
	}
	return s.listComments(ctx, articleID)
}

// GetComment retrieves one comment addressed through its article and author.
func (s *Store) GetComment(ctx context.Context, authorID, articleID, commentID ulid.ULID) (*board.Comment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+commentColumns+`
		FROM comments c JOIN articles a ON a.id = c.article_id
		WHERE c.id = $1 AND c.article_id = $2 AND a.author_id = $3
	`, commentID.String(), articleID.String(), authorID.String())
	comment, err := scanComment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.With("comment_id", commentID.String()).Wrap(board.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get comment").With("comment_id", commentID.String()).Wrap(err)
	}
	return comment, nil
}

// DeleteComment removes one comment.
func (s *Store) DeleteComment(ctx context.Context, authorID, articleID, commentID ulid.ULID) error {
	result, err := s.pool.Exec(ctx, `
		DELETE FROM comments c USING articles a
		WHERE c.id = $1 AND c.article_id = $2 AND a.id = c.article_id AND a.author_id = $3
	`, commentID.String(), articleID.String(), authorID.String())
	if err != nil {
		return oops.With("operation", "delete comment").With("comment_id", commentID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.With("comment_id", commentID.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

func (s *Store) listComments(ctx context.Context, articleID ulid.ULID) ([]board.Comment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+commentColumns+` FROM comments c WHERE c.article_id = $1 ORDER BY c.id`,
		articleID.String())
	if err != nil {
		return nil, oops.With("operation", "list comments").With("article_id", articleID.String()).Wrap(err)
	}
	defer rows.Close()

	comments := make([]board.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate comments").Wrap(err)
	}
	return comments, nil
}

// exists runs a SELECT EXISTS query and maps false to ErrNotFound.
func (s *Store) exists(ctx context.Context, query string, args ...any) error {
	var found bool
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&found); err != nil {
		return oops.With("operation", "check parent exists").Wrap(err)
	}
	if !found {
		return oops.Wrap(board.ErrNotFound)
	}
	return nil
}

func scanAuthor(row pgx.Row) (*board.Author, error) {
	var (
		author         board.Author
		idStr, ownerID string
	)
	if err := row.Scan(&idStr, &author.NickName, &ownerID, &author.CreatedAt, &author.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.With("operation", "scan author").Wrap(err)
	}
	var err error
	if author.ID, err = parseID(idStr, "author_id"); err != nil {
		return nil, err
	}
	if author.OwnerID, err = parseID(ownerID, "owner_id"); err != nil {
		return nil, err
	}
	return &author, nil
}

func scanArticle(row pgx.Row) (*board.Article, error) {
	var (
		article         board.Article
		idStr, authorID string
	)
	err := row.Scan(&idStr, &authorID, &article.Title, &article.Text, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.With("operation", "scan article").Wrap(err)
	}
	if article.ID, err = parseID(idStr, "article_id"); err != nil {
		return nil, err
	}
	if article.AuthorID, err = parseID(authorID, "author_id"); err != nil {
		return nil, err
	}
	return &article, nil
}

func scanComment(row pgx.Row) (*board.Comment, error) {
	var (
		comment                 board.Comment
		idStr, articleID, userID string
	)
	err := row.Scan(&idStr, &articleID, &userID, &comment.Title, &comment.Text, &comment.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.With("operation", "scan comment").Wrap(err)
	}
	if comment.ID, err = parseID(idStr, "comment_id"); err != nil {
		return nil, err
	}
	if comment.ArticleID, err = parseID(articleID, "article_id"); err != nil {
		return nil, err
	}
	if comment.UserID, err = parseID(userID, "user_id"); err != nil {
		return nil, err
	}
	return &comment, nil
}

// parseID parses a stored ULID, naming the column on failure.
func parseID(s, field string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.With("operation", "parse "+field).With(field, s).Wrap(err)
	}
	return id, nil
}

// Compile-time interface check.
var _ board.Store = (*Store)(nil)
