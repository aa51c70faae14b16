// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package board implements the message board: authors, the articles nested
// under them and the comments nested under articles.
//
// Every write is performed on behalf of an actor, the auth.PublicView of the
// session that issued the request. Authors belong to the user who created
// them; articles inherit their author's owner. Comments belong to the user
// who wrote them.
package board

import (
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

// Minimum field lengths, counted in characters.
const (
	MinNickNameLength = 3
	MinTitleLength    = 1
	MinTextLength     = 3
)

// Author is a pen name owned by a user.
type Author struct {
	ID        ulid.ULID `json:"_id"`
	NickName  string    `json:"nickName"`
	OwnerID   ulid.ULID `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Article is a post written under an Author. Comments is only populated by
// single-article reads.
type Article struct {
	ID        ulid.ULID `json:"_id"`
	AuthorID  ulid.ULID `json:"authorId"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Comments  []Comment `json:"comments,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is a reply to an Article by any signed-in user.
type Comment struct {
	ID        ulid.ULID `json:"_id"`
	ArticleID ulid.ULID `json:"articleId"`
	UserID    ulid.ULID `json:"userId"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidateNickName checks an author's display name.
func ValidateNickName(nickName string) error {
	return minLength("nickName", nickName, MinNickNameLength)
}

// ValidateTitle checks an article or comment title.
func ValidateTitle(title string) error {
	return minLength("title", title, MinTitleLength)
}

// ValidateText checks an article or comment body.
func ValidateText(text string) error {
	return minLength("text", text, MinTextLength)
}

func minLength(field, value string, minLen int) error {
	if value == "" {
		return NewValidationError(`"%s" is not allowed to be empty`, field)
	}
	if utf8.RuneCountInString(value) < minLen {
		return NewValidationError(`"%s" length must be at least %d characters long`, field, minLen)
	}
	return nil
}
