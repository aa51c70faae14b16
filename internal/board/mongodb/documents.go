// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package mongodb

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/msgboard/internal/board"
)

// Comment slices are written as empty arrays, never null, so $push into an
// article works. A missing articles field is created by the first $push.

type authorDoc struct {
	ID        string       `bson:"_id"`
	NickName  string       `bson:"nick_name"`
	OwnerID   string       `bson:"owner_id"`
	Articles  []articleDoc `bson:"articles,omitempty"`
	CreatedAt time.Time    `bson:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

type articleDoc struct {
	ID        string       `bson:"_id"`
	Title     string       `bson:"title"`
	Text      string       `bson:"text"`
	Comments  []commentDoc `bson:"comments"`
	CreatedAt time.Time    `bson:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

type commentDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Title     string    `bson:"title"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"created_at"`
}

func toAuthorDoc(a *board.Author) authorDoc {
	return authorDoc{
		ID:        a.ID.String(),
		NickName:  a.NickName,
		OwnerID:   a.OwnerID.String(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (d authorDoc) toAuthor() (*board.Author, error) {
	id, err := parseID(d.ID, "author_id")
	if err != nil {
		return nil, err
	}
	owner, err := parseID(d.OwnerID, "owner_id")
	if err != nil {
		return nil, err
	}
	return &board.Author{
		ID:        id,
		NickName:  d.NickName,
		OwnerID:   owner,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func toArticleDoc(a *board.Article) articleDoc {
	return articleDoc{
		ID:        a.ID.String(),
		Title:     a.Title,
		Text:      a.Text,
		Comments:  []commentDoc{},
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (d articleDoc) toArticle(authorID ulid.ULID) (*board.Article, error) {
	id, err := parseID(d.ID, "article_id")
	if err != nil {
		return nil, err
	}
	comments := make([]board.Comment, 0, len(d.Comments))
	for _, c := range d.Comments {
		comment, err := c.toComment(id)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return &board.Article{
		ID:        id,
		AuthorID:  authorID,
		Title:     d.Title,
		Text:      d.Text,
		Comments:  comments,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

func toCommentDoc(c *board.Comment) commentDoc {
	return commentDoc{
		ID:        c.ID.String(),
		UserID:    c.UserID.String(),
		Title:     c.Title,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func (d commentDoc) toComment(articleID ulid.ULID) (*board.Comment, error) {
	id, err := parseID(d.ID, "comment_id")
	if err != nil {
		return nil, err
	}
	user, err := parseID(d.UserID, "user_id")
	if err != nil {
		return nil, err
	}
	return &board.Comment{
		ID:        id,
		ArticleID: articleID,
		UserID:    user,
		Title:     d.Title,
		Text:      d.Text,
		CreatedAt: d.CreatedAt.UTC(),
	}, nil
}

func parseID(s, field string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.With("operation", "parse "+field).With(field, s).Wrap(err)
	}
	return id, nil
}
