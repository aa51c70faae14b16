// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package api_test

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/holomush/msgboard/internal/api"
	"github.com/holomush/msgboard/internal/observability"
)

var _ = Describe("Accounts and sessions", func() {
	var (
		env *testEnv
		c   *client
	)

	BeforeEach(func() {
		env = newTestEnv()
		c = env.newClient()
	})

	Describe("POST /api/user", func() {
		It("registers a non-admin account and returns only public fields", func() {
			resp := c.do(http.MethodPost, "/api/user", credentials("a@b.com", "secret1"))

			Expect(resp.status).To(Equal(http.StatusOK))
			body := resp.object()
			Expect(body).To(HaveLen(3))
			Expect(body).To(HaveKeyWithValue("email", "a@b.com"))
			Expect(body).To(HaveKeyWithValue("isAdmin", false))
			Expect(body).To(HaveKey("_id"))
			Expect(resp.header.Get("Set-Cookie")).To(BeEmpty())
		})

		It("rejects a second registration of the same email", func() {
			c.do(http.MethodPost, "/api/user", credentials("a@b.com", "secret1"))
			resp := c.do(http.MethodPost, "/api/user", credentials("a@b.com", "another1"))

			Expect(resp.status).To(Equal(http.StatusBadRequest))
			Expect(resp.apiError()).To(Equal(api.ErrorDetail{
				Kind:    api.KindDuplicateAccount,
				Message: "An account with the given email already exists",
			}))
		})

		DescribeTable("rejects invalid input",
			func(body, message string) {
				resp := c.do(http.MethodPost, "/api/user", body)
				Expect(resp.status).To(Equal(http.StatusBadRequest))
				Expect(resp.apiError()).To(Equal(api.ErrorDetail{Kind: api.KindValidation, Message: message}))
			},
			Entry("bad email", credentials("not-an-email", "secret1"), `"email" must be a valid email`),
			Entry("short password", credentials("a@b.com", "five5"), `"password" length must be at least 6 characters long`),
			Entry("empty password", credentials("a@b.com", ""), `"password" is not allowed to be empty`),
			Entry("missing password", `{"email":"a@b.com"}`, `"password" is required`),
			Entry("extra field", `{"email":"a@b.com","password":"secret1","isAdmin":true}`, `"isAdmin" is not allowed`),
		)
	})

	Describe("POST /api/auth", func() {
		BeforeEach(func() {
			Expect(c.do(http.MethodPost, "/api/user", credentials("a@b.com", "secret1")).status).To(Equal(http.StatusOK))
		})

		It("logs in and sets a hardened session cookie", func() {
			resp := c.do(http.MethodPost, "/api/auth", credentials("a@b.com", "secret1"))

			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.object()).To(HaveKeyWithValue("email", "a@b.com"))

			cookie := resp.header.Get("Set-Cookie")
			Expect(cookie).To(HavePrefix(cookieName + "="))
			Expect(cookie).To(ContainSubstring("Path=/"))
			Expect(cookie).To(ContainSubstring("Max-Age=86400"))
			Expect(cookie).To(ContainSubstring("HttpOnly"))
			Expect(cookie).To(ContainSubstring("SameSite=Lax"))
			Expect(cookie).NotTo(ContainSubstring("Secure"))
		})

		It("gives the same answer for a wrong password and an unknown email", func() {
			wrong := c.do(http.MethodPost, "/api/auth", credentials("a@b.com", "wrong-password"))
			unknown := c.do(http.MethodPost, "/api/auth", credentials("nobody@b.com", "secret1"))

			for _, resp := range []response{wrong, unknown} {
				Expect(resp.status).To(Equal(http.StatusBadRequest))
				Expect(resp.apiError()).To(Equal(api.ErrorDetail{
					Kind:    api.KindInvalidCredentials,
					Message: "Email or password not found.",
				}))
				Expect(resp.header.Get("Set-Cookie")).To(BeEmpty())
			}
			Expect(string(wrong.body)).To(Equal(string(unknown.body)))
		})

		It("requires both fields", func() {
			resp := c.do(http.MethodPost, "/api/auth", `{"email":"a@b.com"}`)
			Expect(resp.status).To(Equal(http.StatusBadRequest))
			Expect(resp.apiError().Kind).To(Equal(api.KindValidation))
		})

		It("counts login outcomes", func() {
			c.do(http.MethodPost, "/api/auth", credentials("a@b.com", "secret1"))
			c.do(http.MethodPost, "/api/auth", credentials("a@b.com", "nope-nope"))

			Expect(testutil.ToFloat64(env.metrics.AuthEventsTotal.WithLabelValues("login", observability.OutcomeSuccess))).To(Equal(1.0))
			Expect(testutil.ToFloat64(env.metrics.AuthEventsTotal.WithLabelValues("login", observability.OutcomeFailure))).To(Equal(1.0))
		})
	})

	Describe("GET /api/auth", func() {
		It("asks anonymous callers to log in", func() {
			resp := c.do(http.MethodGet, "/api/auth", "")

			Expect(resp.status).To(Equal(http.StatusUnauthorized))
			Expect(resp.apiError()).To(Equal(api.ErrorDetail{
				Kind:    api.KindUnauthenticated,
				Message: "Please log in first.",
			}))
		})

		It("returns the logged-in user's view", func() {
			view := c.signIn("a@b.com", "secret1")

			resp := c.do(http.MethodGet, "/api/auth", "")
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.object()).To(Equal(view))
		})

		It("does not accept a forged token", func() {
			other := env.newClient()
			req, err := http.NewRequest(http.MethodGet, other.base+"/api/auth", nil)
			Expect(err).NotTo(HaveOccurred())
			req.AddCookie(&http.Cookie{Name: cookieName, Value: "deadbeef"})

			resp, err := other.http.Do(req)
			Expect(err).NotTo(HaveOccurred())
			_ = resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("DELETE /api/auth", func() {
		It("ends the session", func() {
			c.signIn("a@b.com", "secret1")

			resp := c.do(http.MethodDelete, "/api/auth", "")
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.object()).To(HaveKeyWithValue("message", api.MsgLoggedOut))
			Expect(resp.header.Get("Set-Cookie")).To(ContainSubstring("Max-Age=0"))

			Expect(c.do(http.MethodGet, "/api/auth", "").status).To(Equal(http.StatusUnauthorized))
		})

		It("is a no-op without a session", func() {
			resp := c.do(http.MethodDelete, "/api/auth", "")
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.object()).To(HaveKeyWithValue("message", api.MsgLoggedOut))
		})

		It("leaves other sessions of the same user alive", func() {
			other := env.newClient()
			c.signIn("a@b.com", "secret1")
			other.signIn("a@b.com", "secret1")

			c.do(http.MethodDelete, "/api/auth", "")

			Expect(other.do(http.MethodGet, "/api/auth", "").status).To(Equal(http.StatusOK))
		})
	})

	It("answers unknown routes with a not_found error", func() {
		resp := c.do(http.MethodGet, "/nope", "")
		Expect(resp.status).To(Equal(http.StatusNotFound))
		Expect(resp.apiError().Kind).To(Equal(api.KindNotFound))
	})
})
