// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package mongodb_test

import (
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/msgboard/internal/board"
	"github.com/holomush/msgboard/internal/board/mongodb"
)

var _ = Describe("Store", func() {
	var (
		s       *mongodb.Store
		author  *board.Author
		article *board.Article
		now     time.Time
	)

	BeforeEach(func() {
		_, err := testDB.Collection(mongodb.AuthorsCollection).DeleteMany(suiteCtx, map[string]any{})
		Expect(err).NotTo(HaveOccurred())

		s = mongodb.NewStore(testDB)
		now = time.Now().UTC().Truncate(time.Millisecond)
		author = &board.Author{ID: ulid.Make(), NickName: "scribe", OwnerID: ulid.Make(), CreatedAt: now, UpdatedAt: now}
		Expect(s.CreateAuthor(suiteCtx, author)).To(Succeed())

		article = &board.Article{ID: ulid.Make(), AuthorID: author.ID, Title: "T", Text: "body", CreatedAt: now, UpdatedAt: now}
		Expect(s.CreateArticle(suiteCtx, article)).To(Succeed())
	})

	It("reads authors without their articles", func() {
		got, err := s.GetAuthor(suiteCtx, author.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(author))

		all, err := s.ListAuthors(suiteCtx)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(1))
	})

	It("embeds comments under the article", func() {
		comment := &board.Comment{ID: ulid.Make(), ArticleID: article.ID, UserID: ulid.Make(), Title: "Re", Text: "nice", CreatedAt: now}
		Expect(s.CreateComment(suiteCtx, author.ID, comment)).To(Succeed())

		got, err := s.GetArticle(suiteCtx, author.ID, article.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Comments).To(HaveLen(1))
		Expect(got.Comments[0].UserID).To(Equal(comment.UserID))

		listed, err := s.ListArticles(suiteCtx, author.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(listed).To(HaveLen(1))
		Expect(listed[0].Comments).To(BeEmpty())

		Expect(s.DeleteComment(suiteCtx, author.ID, article.ID, comment.ID)).To(Succeed())
		Expect(s.DeleteComment(suiteCtx, author.ID, article.ID, comment.ID)).To(MatchError(board.ErrNotFound))
	})

	It("updates an article in place", func() {
		article.Title = "Changed"
		article.UpdatedAt = now.Add(time.Minute)
		Expect(s.UpdateArticle(suiteCtx, article)).To(Succeed())

		got, err := s.GetArticle(suiteCtx, author.ID, article.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Title).To(Equal("Changed"))
	})

	It("does not find an article under another author", func() {
		other := &board.Author{ID: ulid.Make(), NickName: "other", OwnerID: ulid.Make(), CreatedAt: now, UpdatedAt: now}
		Expect(s.CreateAuthor(suiteCtx, other)).To(Succeed())

		_, err := s.GetArticle(suiteCtx, other.ID, article.ID)
		Expect(err).To(MatchError(board.ErrNotFound))
		Expect(s.DeleteArticle(suiteCtx, other.ID, article.ID)).To(MatchError(board.ErrNotFound))
	})

	It("removes the subtree with the author", func() {
		Expect(s.DeleteAuthor(suiteCtx, author.ID)).To(Succeed())

		_, err := s.ListArticles(suiteCtx, author.ID)
		Expect(err).To(MatchError(board.ErrNotFound))
		Expect(s.DeleteAuthor(suiteCtx, author.ID)).To(MatchError(board.ErrNotFound))
	})
})
