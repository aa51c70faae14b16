// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/holomush/msgboard/internal/auth"
)

// sessionHandle builds the caller's session reference from the request.
func (s *Server) sessionHandle(c echo.Context) auth.SessionHandle {
	handle := auth.SessionHandle{
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	}
	if cookie, err := c.Cookie(s.opts.CookieName); err == nil {
		handle.Token = cookie.Value
	}
	return handle
}

// actor resolves the signed-in user or fails with an unauthenticated error.
func (s *Server) actor(c echo.Context) (auth.PublicView, error) {
	return s.auth.CurrentSession(c.Request().Context(), s.sessionHandle(c))
}

func (s *Server) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.opts.SessionTTL / time.Second),
		Expires:  time.Now().Add(s.opts.SessionTTL),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
