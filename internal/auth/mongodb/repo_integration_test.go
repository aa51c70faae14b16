// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package mongodb_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/msgboard/internal/auth"
	"github.com/holomush/msgboard/internal/auth/mongodb"
)

var _ = Describe("UserRepository", func() {
	var repo *mongodb.UserRepository

	BeforeEach(func() {
		clearCollections()
		repo = mongodb.NewUserRepository(testDB)
	})

	It("round-trips and finds by email regardless of case", func() {
		user, err := auth.NewUser("reader@example.com", "h")
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Create(suiteCtx, user)).To(Succeed())

		got, err := repo.GetByEmail(suiteCtx, "Reader@EXAMPLE.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(user.ID))

		got, err = repo.GetByID(suiteCtx, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Email).To(Equal("reader@example.com"))
	})

	It("rejects a duplicate email", func() {
		first, _ := auth.NewUser("reader@example.com", "h")
		second, _ := auth.NewUser("READER@example.com", "h")
		Expect(repo.Create(suiteCtx, first)).To(Succeed())
		Expect(repo.Create(suiteCtx, second)).To(MatchError(auth.ErrDuplicate))
	})

	It("reports missing users as not found", func() {
		_, err := repo.GetByEmail(suiteCtx, "ghost@example.com")
		Expect(err).To(MatchError(auth.ErrNotFound))

		ghost, _ := auth.NewUser("ghost@example.com", "h")
		Expect(repo.Update(suiteCtx, ghost)).To(MatchError(auth.ErrNotFound))
	})
})

var _ = Describe("SessionRepository", func() {
	var (
		repo *mongodb.SessionRepository
		view auth.PublicView
	)

	BeforeEach(func() {
		clearCollections()
		repo = mongodb.NewSessionRepository(testDB)
		user, err := auth.NewUser("reader@example.com", "h")
		Expect(err).NotTo(HaveOccurred())
		view = auth.Project(user)
	})

	create := func(tokenHash string, expiresAt time.Time) *auth.Session {
		s, err := auth.NewSession(view, tokenHash, "ginkgo", "127.0.0.1", expiresAt.Add(-2*time.Hour), expiresAt)
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Create(suiteCtx, s)).To(Succeed())
		return s
	}

	It("returns the stored view", func() {
		s := create("hash-1", time.Now().Add(time.Hour))

		got, err := repo.GetByTokenHash(suiteCtx, "hash-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(s.ID))
		Expect(got.User).To(Equal(view))
	})

	It("deletes by token hash once", func() {
		create("hash-1", time.Now().Add(time.Hour))
		Expect(repo.DeleteByTokenHash(suiteCtx, "hash-1")).To(Succeed())
		Expect(repo.DeleteByTokenHash(suiteCtx, "hash-1")).To(MatchError(auth.ErrNotFound))
	})

	It("prunes expired sessions", func() {
		now := time.Now().UTC()
		create("old", now.Add(-time.Minute))
		create("live", now.Add(time.Hour))

		n, err := repo.DeleteExpired(suiteCtx, now)
		Expect(err).NotTo(HaveOccurred())
		// The TTL monitor may already have reaped "old".
		Expect(n).To(BeNumerically("<=", 1))

		_, err = repo.GetByTokenHash(suiteCtx, "old")
		Expect(err).To(MatchError(auth.ErrNotFound))
		_, err = repo.GetByTokenHash(suiteCtx, "live")
		Expect(err).NotTo(HaveOccurred())
	})

	It("updates last seen", func() {
		s := create("hash-1", time.Now().Add(time.Hour))
		Expect(repo.UpdateLastSeen(suiteCtx, s.ID, time.Now())).To(Succeed())
	})
})
