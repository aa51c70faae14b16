// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package api_test

import (
	"context"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/msgboard/internal/api"
)

func nick(name string) string {
	return fmt.Sprintf(`{"nickName":%q}`, name)
}

func post(title, text string) string {
	return fmt.Sprintf(`{"title":%q,"text":%q}`, title, text)
}

var _ = Describe("Board", func() {
	var (
		env          *testEnv
		alice, bob   *client
		anon         *client
		authorPath   string
		articlesPath string
	)

	BeforeEach(func() {
		env = newTestEnv()
		alice, bob, anon = env.newClient(), env.newClient(), env.newClient()
		alice.signIn("alice@example.com", "secret1")
		bob.signIn("bob@example.com", "secret2")

		resp := alice.do(http.MethodPost, "/authors", nick("alice"))
		Expect(resp.status).To(Equal(http.StatusCreated))
		authorPath = "/authors/" + resp.object()["_id"].(string)
		articlesPath = authorPath + "/articles"
	})

	Describe("authors", func() {
		It("requires a session to create one", func() {
			resp := anon.do(http.MethodPost, "/authors", nick("ghost"))
			Expect(resp.status).To(Equal(http.StatusUnauthorized))
			Expect(resp.apiError().Kind).To(Equal(api.KindUnauthenticated))
		})

		It("validates the nickname", func() {
			resp := alice.do(http.MethodPost, "/authors", nick("al"))
			Expect(resp.status).To(Equal(http.StatusBadRequest))
			Expect(resp.apiError().Message).To(Equal(`"nickName" length must be at least 3 characters long`))
		})

		It("lists and reads authors publicly", func() {
			list := anon.do(http.MethodGet, "/authors", "")
			Expect(list.status).To(Equal(http.StatusOK))
			Expect(list.list()).To(HaveLen(1))

			one := anon.do(http.MethodGet, authorPath, "")
			Expect(one.status).To(Equal(http.StatusOK))
			Expect(one.object()).To(HaveKeyWithValue("nickName", "alice"))
		})

		It("lets the owner rename and forbids everyone else", func() {
			Expect(bob.do(http.MethodPut, authorPath, nick("mallory")).apiError().Kind).To(Equal(api.KindForbidden))

			resp := alice.do(http.MethodPut, authorPath, nick("alice2"))
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.object()).To(HaveKeyWithValue("nickName", "alice2"))
		})

		It("lets an admin delete any author", func() {
			ctx := context.Background()
			user, err := env.backend.Users.GetByEmail(ctx, "bob@example.com")
			Expect(err).NotTo(HaveOccurred())
			user.IsAdmin = true
			Expect(env.backend.Users.Update(ctx, user)).To(Succeed())
			// the session view is a login-time snapshot
			bob.signIn("bob@example.com", "secret2")

			Expect(bob.do(http.MethodDelete, authorPath, "").status).To(Equal(http.StatusNoContent))
			Expect(anon.do(http.MethodGet, authorPath, "").status).To(Equal(http.StatusNotFound))
		})

		It("treats a malformed id as not found", func() {
			resp := anon.do(http.MethodGet, "/authors/not-a-ulid", "")
			Expect(resp.status).To(Equal(http.StatusNotFound))
			Expect(resp.apiError().Message).To(Equal("The author was not found."))
		})
	})

	Describe("articles and comments", func() {
		var articlePath string

		BeforeEach(func() {
			resp := alice.do(http.MethodPost, articlesPath, post("Hello", "First post"))
			Expect(resp.status).To(Equal(http.StatusCreated))
			articlePath = articlesPath + "/" + resp.object()["_id"].(string)
		})

		It("lists and updates articles", func() {
			Expect(anon.do(http.MethodGet, articlesPath, "").list()).To(HaveLen(1))

			resp := alice.do(http.MethodPut, articlePath, post("Hello again", "Edited text"))
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.object()).To(HaveKeyWithValue("title", "Hello again"))

			Expect(bob.do(http.MethodPut, articlePath, post("x", "hijack")).status).To(Equal(http.StatusForbidden))
		})

		It("hides an article from a different author's path", func() {
			other := bob.do(http.MethodPost, "/authors", nick("bobby"))
			Expect(other.status).To(Equal(http.StatusCreated))
			otherArticles := "/authors/" + other.object()["_id"].(string) + "/articles"

			articleID := articlePath[len(articlesPath)+1:]
			resp := anon.do(http.MethodGet, otherArticles+"/"+articleID, "")
			Expect(resp.status).To(Equal(http.StatusNotFound))
			Expect(resp.apiError().Message).To(Equal("The article was not found."))
		})

		It("lets any signed-in user comment and only the commenter delete", func() {
			resp := bob.do(http.MethodPost, articlePath+"/comments", post("Nice", "Great read"))
			Expect(resp.status).To(Equal(http.StatusCreated))
			commentPath := articlePath + "/comments/" + resp.object()["_id"].(string)

			Expect(anon.do(http.MethodGet, articlePath+"/comments", "").list()).To(HaveLen(1))

			article := anon.do(http.MethodGet, articlePath, "").object()
			Expect(article["comments"]).To(HaveLen(1))

			Expect(alice.do(http.MethodDelete, commentPath, "").status).To(Equal(http.StatusForbidden))
			Expect(bob.do(http.MethodDelete, commentPath, "").status).To(Equal(http.StatusNoContent))
			Expect(anon.do(http.MethodGet, articlePath+"/comments", "").list()).To(BeEmpty())
		})

		It("removes articles with their author", func() {
			Expect(alice.do(http.MethodDelete, authorPath, "").status).To(Equal(http.StatusNoContent))
			Expect(anon.do(http.MethodGet, articlePath, "").status).To(Equal(http.StatusNotFound))
		})

		It("deletes an article", func() {
			Expect(alice.do(http.MethodDelete, articlePath, "").status).To(Equal(http.StatusNoContent))
			Expect(anon.do(http.MethodGet, articlesPath, "").list()).To(BeEmpty())
		})

		It("validates comment text", func() {
			resp := bob.do(http.MethodPost, articlePath+"/comments", post("Hi", "no"))
			Expect(resp.status).To(Equal(http.StatusBadRequest))
			Expect(resp.apiError().Message).To(Equal(`"text" length must be at least 3 characters long`))
		})
	})
})
