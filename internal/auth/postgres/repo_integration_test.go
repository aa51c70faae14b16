// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package postgres_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/msgboard/internal/auth"
	"github.com/holomush/msgboard/internal/auth/postgres"
)

var _ = Describe("UserRepository", func() {
	var repo *postgres.UserRepository

	BeforeEach(func() {
		truncate()
		repo = postgres.NewUserRepository(testPool)
	})

	It("round-trips a user", func() {
		user, err := auth.NewUser("reader@example.com", "$2a$10$hash")
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Create(suiteCtx, user)).To(Succeed())

		got, err := repo.GetByID(suiteCtx, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Email).To(Equal("reader@example.com"))
		Expect(got.IsAdmin).To(BeFalse())
	})

	It("looks up email case-insensitively", func() {
		user, err := auth.NewUser("reader@example.com", "h")
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Create(suiteCtx, user)).To(Succeed())

		got, err := repo.GetByEmail(suiteCtx, "READER@Example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(user.ID))
	})

	It("rejects a second account for the same email", func() {
		first, _ := auth.NewUser("reader@example.com", "h")
		second, _ := auth.NewUser("reader@example.com", "h")
		Expect(repo.Create(suiteCtx, first)).To(Succeed())

		err := repo.Create(suiteCtx, second)
		Expect(err).To(MatchError(auth.ErrDuplicate))
	})

	It("reports a missing user as not found", func() {
		_, err := repo.GetByEmail(suiteCtx, "ghost@example.com")
		Expect(err).To(MatchError(auth.ErrNotFound))
	})

	It("updates the stored hash", func() {
		user, _ := auth.NewUser("reader@example.com", "old")
		Expect(repo.Create(suiteCtx, user)).To(Succeed())

		user.PasswordHash = "new"
		user.UpdatedAt = time.Now().UTC()
		Expect(repo.Update(suiteCtx, user)).To(Succeed())

		got, err := repo.GetByID(suiteCtx, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.PasswordHash).To(Equal("new"))
	})
})

var _ = Describe("SessionRepository", func() {
	var (
		users    *postgres.UserRepository
		sessions *postgres.SessionRepository
		view     auth.PublicView
	)

	BeforeEach(func() {
		truncate()
		users = postgres.NewUserRepository(testPool)
		sessions = postgres.NewSessionRepository(testPool)

		user, err := auth.NewUser("reader@example.com", "h")
		Expect(err).NotTo(HaveOccurred())
		Expect(users.Create(suiteCtx, user)).To(Succeed())
		view = auth.Project(user)
	})

	newSession := func(tokenHash string, expiresAt time.Time) *auth.Session {
		now := time.Now().UTC()
		if !expiresAt.After(now) {
			now = expiresAt.Add(-time.Hour)
		}
		s, err := auth.NewSession(view, tokenHash, "ginkgo", "127.0.0.1", now, expiresAt)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	It("stores and returns the public view", func() {
		s := newSession("hash-1", time.Now().Add(time.Hour))
		Expect(sessions.Create(suiteCtx, s)).To(Succeed())

		got, err := sessions.GetByTokenHash(suiteCtx, "hash-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(s.ID))
		Expect(got.User).To(Equal(view))
		Expect(got.UserAgent).To(Equal("ginkgo"))
	})

	It("deletes by token hash", func() {
		Expect(sessions.Create(suiteCtx, newSession("hash-1", time.Now().Add(time.Hour)))).To(Succeed())

		Expect(sessions.DeleteByTokenHash(suiteCtx, "hash-1")).To(Succeed())
		Expect(sessions.DeleteByTokenHash(suiteCtx, "hash-1")).To(MatchError(auth.ErrNotFound))
		_, err := sessions.GetByTokenHash(suiteCtx, "hash-1")
		Expect(err).To(MatchError(auth.ErrNotFound))
	})

	It("prunes only expired sessions", func() {
		now := time.Now().UTC()
		Expect(sessions.Create(suiteCtx, newSession("old", now.Add(-time.Minute)))).To(Succeed())
		Expect(sessions.Create(suiteCtx, newSession("live", now.Add(time.Hour)))).To(Succeed())

		n, err := sessions.DeleteExpired(suiteCtx, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(1)))

		_, err = sessions.GetByTokenHash(suiteCtx, "live")
		Expect(err).NotTo(HaveOccurred())
	})

	It("updates last seen", func() {
		s := newSession("hash-1", time.Now().Add(time.Hour))
		Expect(sessions.Create(suiteCtx, s)).To(Succeed())

		seen := time.Now().UTC().Add(time.Minute).Truncate(time.Microsecond)
		Expect(sessions.UpdateLastSeen(suiteCtx, s.ID, seen)).To(Succeed())

		got, err := sessions.GetByTokenHash(suiteCtx, "hash-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.LastSeenAt.Equal(seen)).To(BeTrue())
	})
})
