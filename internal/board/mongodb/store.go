// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package mongodb implements board.Store on MongoDB. Each author is one
// document with its articles embedded, and each article embeds its comments,
// so deleting an author removes everything beneath it in one write.
package mongodb

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/holomush/msgboard/internal/board"
)

// AuthorsCollection holds one document per author.
const AuthorsCollection = "authors"

// Store implements board.Store using MongoDB.
type Store struct {
	coll *mongo.Collection
}

// NewStore creates a Store on db's authors collection.
func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(AuthorsCollection)}
}

// withoutArticles keeps author reads from loading the whole subtree.
var withoutArticles = bson.M{"articles": 0}

// CreateAuthor stores a new author with no articles.
func (s *Store) CreateAuthor(ctx context.Context, author *board.Author) error {
	if _, err := s.coll.InsertOne(ctx, toAuthorDoc(author)); err != nil {
		return oops.With("operation", "insert author").Wrap(err)
	}
	return nil
}

// ListAuthors returns every author in creation order.
func (s *Store) ListAuthors(ctx context.Context) ([]board.Author, error) {
	opts := options.Find().
		SetProjection(withoutArticles).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, oops.With("operation", "list authors").Wrap(err)
	}

	var docs []authorDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, oops.With("operation", "decode authors").Wrap(err)
	}

	authors := make([]board.Author, 0, len(docs))
	for _, d := range docs {
		author, err := d.toAuthor()
		if err != nil {
			return nil, err
		}
		authors = append(authors, *author)
	}
	return authors, nil
}

// GetAuthor retrieves one author.
func (s *Store) GetAuthor(ctx context.Context, id ulid.ULID) (*board.Author, error) {
	var doc authorDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()},
		options.FindOne().SetProjection(withoutArticles)).Decode(&doc)
	if err != nil {
		return nil, findErr(err, "get author", "author_id", id)
	}
	return doc.toAuthor()
}

// UpdateAuthor writes the author's nick name.
func (s *Store) UpdateAuthor(ctx context.Context, author *board.Author) error {
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": author.ID.String()}, bson.M{"$set": bson.M{
		"nick_name":  author.NickName,
		"updated_at": author.UpdatedAt,
	}})
	if err != nil {
		return oops.With("operation", "update author").With("author_id", author.ID.String()).Wrap(err)
	}
	if result.MatchedCount == 0 {
		return oops.With("author_id", author.ID.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

// DeleteAuthor removes an author document and everything embedded in it.
func (s *Store) DeleteAuthor(ctx context.Context, id ulid.ULID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return oops.With("operation", "delete author").With("author_id", id.String()).Wrap(err)
	}
	if result.DeletedCount == 0 {
		return oops.With("author_id", id.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

// CreateArticle appends an article to its author.
func (s *Store) CreateArticle(ctx context.Context, article *board.Article) error {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": article.AuthorID.String()},
		bson.M{"$push": bson.M{"articles": toArticleDoc(article)}})
	if err != nil {
		return oops.With("operation", "insert article").Wrap(err)
	}
	if result.MatchedCount == 0 {
		return oops.With("author_id", article.AuthorID.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

// ListArticles returns an author's articles without comments.
func (s *Store) ListArticles(ctx context.Context, authorID ulid.ULID) ([]board.Article, error) {
	doc, err := s.loadAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	articles := make([]board.Article, 0, len(doc.Articles))
	for _, d := range doc.Articles {
		article, err := d.toArticle(authorID)
		if err != nil {
			return nil, err
		}
		article.Comments = nil
		articles = append(articles, *article)
	}
	return articles, nil
}

// GetArticle retrieves an article and its comments.
func (s *Store) GetArticle(ctx context.Context, authorID, articleID ulid.ULID) (*board.Article, error) {
	doc, err := s.loadAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	for _, d := range doc.Articles {
		if d.ID == articleID.String() {
			return d.toArticle(authorID)
		}
	}
	return nil, oops.With("article_id", articleID.String()).Wrap(board.ErrNotFound)
}

// UpdateArticle writes an article's title and text in place.
func (s *Store) UpdateArticle(ctx context.Context, article *board.Article) error {
	result, err := s.coll.UpdateOne(ctx,
		articleFilter(article.AuthorID, article.ID),
		bson.M{"$set": bson.M{
			"articles.$.title":      article.Title,
			"articles.$.text":       article.Text,
			"articles.$.updated_at": article.UpdatedAt,
		}})
	if err != nil {
		return oops.With("operation", "update article").With("article_id", article.ID.String()).Wrap(err)
	}
	if result.MatchedCount == 0 {
		return oops.With("article_id", article.ID.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

// DeleteArticle pulls an article, with its comments, out of its author.
func (s *Store) DeleteArticle(ctx context.Context, authorID, articleID ulid.ULID) error {
	result, err := s.coll.UpdateOne(ctx,
		articleFilter(authorID, articleID),
		bson.M{"$pull": bson.M{"articles": bson.M{"_id": articleID.String()}}})
	if err != nil {
		return oops.With("operation", "delete article").With("article_id", articleID.String()).Wrap(err)
	}
	if result.MatchedCount == 0 {
		return oops.With("article_id", articleID.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

// CreateComment appends a comment to an article of authorID.
func (s *Store) CreateComment(ctx context.Context, authorID ulid.ULID, comment *board.Comment) error {
	result, err := s.coll.UpdateOne(ctx,
		articleFilter(authorID, comment.ArticleID),
		bson.M{"$push": bson.M{"articles.$.comments": toCommentDoc(comment)}})
	if err != nil {
		return oops.With("operation", "insert comment").Wrap(err)
	}
	if result.MatchedCount == 0 {
		return oops.With("article_id", comment.ArticleID.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

// ListComments returns an article's comments in creation order.
func (s *Store) ListComments(ctx context.Context, authorID, articleID ulid.ULID) ([]board.Comment, error) {
	article, err := s.GetArticle(ctx, authorID, articleID)
	if err != nil {
		return nil, err
	}
	return article.Comments, nil
}

// GetComment retrieves one comment.
func (s *Store) GetComment(ctx context.Context, authorID, articleID, commentID ulid.ULID) (*board.Comment, error) {
	article, err := s.GetArticle(ctx, authorID, articleID)
	if err != nil {
		return nil, err
	}
	for i := range article.Comments {
		if article.Comments[i].ID == commentID {
			return &article.Comments[i], nil
		}
	}
	return nil, oops.With("comment_id", commentID.String()).Wrap(board.ErrNotFound)
}

// DeleteComment pulls one comment out of its article.
func (s *Store) DeleteComment(ctx context.Context, authorID, articleID, commentID ulid.ULID) error {
	result, err := s.coll.UpdateOne(ctx,
		articleFilter(authorID, articleID),
		bson.M{"$pull": bson.M{"articles.$.comments": bson.M{"_id": commentID.String()}}})
	if err != nil {
		return oops.With("operation", "delete comment").With("comment_id", commentID.String()).Wrap(err)
	}
	if result.ModifiedCount == 0 {
		return oops.With("comment_id", commentID.String()).Wrap(board.ErrNotFound)
	}
	return nil
}

func (s *Store) loadAuthor(ctx context.Context, id ulid.ULID) (*authorDoc, error) {
	var doc authorDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, findErr(err, "load author", "author_id", id)
	}
	return &doc, nil
}

// articleFilter matches the author document holding articleID; the
// positional operator in updates then addresses that article.
func articleFilter(authorID, articleID ulid.ULID) bson.M {
	return bson.M{"_id": authorID.String(), "articles._id": articleID.String()}
}

func findErr(err error, operation, key string, id ulid.ULID) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return oops.With(key, id.String()).Wrap(board.ErrNotFound)
	}
	return oops.With("operation", operation).With(key, id.String()).Wrap(err)
}

var _ board.Store = (*Store)(nil)
