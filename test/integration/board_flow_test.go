// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package integration_test

import (
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/msgboard/internal/api"
)

var _ = Describe("Message board over PostgreSQL", Ordered, func() {
	var (
		alice, bob *client
		authorPath string
		articleID  string
	)

	BeforeAll(func() {
		alice = newClient()
		bob = newClient()
	})

	It("registers and logs in two users", func() {
		for email, c := range map[string]*client{"alice@example.com": alice, "bob@example.com": bob} {
			var view map[string]any
			Expect(c.do(http.MethodPost, "/api/user", credentials(email, "secret1"), &view)).To(Equal(http.StatusOK))
			Expect(view).To(HaveKeyWithValue("email", email))
			Expect(view).To(HaveKeyWithValue("isAdmin", false))

			Expect(c.do(http.MethodPost, "/api/auth", credentials(email, "secret1"), nil)).To(Equal(http.StatusOK))
		}

		var current map[string]any
		Expect(alice.do(http.MethodGet, "/api/auth", "", &current)).To(Equal(http.StatusOK))
		Expect(current).To(HaveKeyWithValue("email", "alice@example.com"))
	})

	It("rejects a second account for the same address", func() {
		var body api.ErrorBody
		status := newClient().do(http.MethodPost, "/api/user", credentials("ALICE@example.com", "secret1"), &body)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body.Error.Kind).To(Equal(api.KindDuplicateAccount))
	})

	It("publishes an article with a comment", func() {
		var author map[string]any
		Expect(alice.do(http.MethodPost, "/authors", `{"nickName":"alice"}`, &author)).To(Equal(http.StatusCreated))
		authorPath = fmt.Sprintf("/authors/%s", author["_id"])

		var article map[string]any
		Expect(alice.do(http.MethodPost, authorPath+"/articles",
			`{"title":"Hello","text":"First post"}`, &article)).To(Equal(http.StatusCreated))
		articleID = article["_id"].(string)

		Expect(bob.do(http.MethodPost, authorPath+"/articles/"+articleID+"/comments",
			`{"title":"Nice","text":"Welcome aboard"}`, nil)).To(Equal(http.StatusCreated))

		var read map[string]any
		Expect(newClient().do(http.MethodGet, authorPath+"/articles/"+articleID, "", &read)).To(Equal(http.StatusOK))
		Expect(read["comments"]).To(HaveLen(1))
	})

	It("forbids edits by another user", func() {
		var body api.ErrorBody
		status := bob.do(http.MethodPut, authorPath+"/articles/"+articleID,
			`{"title":"Mine","text":"now"}`, &body)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body.Error.Kind).To(Equal(api.KindForbidden))
	})

	It("removes articles and comments with their author", func() {
		Expect(alice.do(http.MethodDelete, authorPath, "", nil)).To(Equal(http.StatusNoContent))
		Expect(newClient().do(http.MethodGet, authorPath+"/articles/"+articleID, "", nil)).To(Equal(http.StatusNotFound))

		var count int
		Expect(env.pool.QueryRow(env.ctx, `SELECT count(*) FROM comments`).Scan(&count)).To(Succeed())
		Expect(count).To(BeZero())
	})

	It("ends the session on logout", func() {
		Expect(alice.do(http.MethodDelete, "/api/auth", "", nil)).To(Equal(http.StatusOK))
		Expect(alice.do(http.MethodGet, "/api/auth", "", nil)).To(Equal(http.StatusUnauthorized))
	})
})
