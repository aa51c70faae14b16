// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MsgLoggedOut is the body of a successful logout.
const MsgLoggedOut = "The user has been logged out"

// MessageBody is the JSON shape of informational responses.
type MessageBody struct {
	Message string `json:"message"`
}

// register handles POST /api/user.
func (s *Server) register(c echo.Context) error {
	req, err := bind[credentialsRequest](c)
	if err != nil {
		return err
	}

	view, err := s.auth.Register(c.Request().Context(), *req.Email, *req.Password)
	s.metrics.RecordAuth("register", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// login handles POST /api/auth. The cookie is set only once the session has
// been stored.
func (s *Server) login(c echo.Context) error {
	req, err := bind[credentialsRequest](c)
	if err != nil {
		return err
	}

	view, token, err := s.auth.Login(c.Request().Context(), s.sessionHandle(c), *req.Email, *req.Password)
	s.metrics.RecordAuth("login", err)
	if err != nil {
		return err
	}

	s.setSessionCookie(c, token)
	return c.JSON(http.StatusOK, view)
}

// currentSession handles GET /api/auth.
func (s *Server) currentSession(c echo.Context) error {
	view, err := s.actor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// logout handles DELETE /api/auth.
func (s *Server) logout(c echo.Context) error {
	err := s.auth.Logout(c.Request().Context(), s.sessionHandle(c))
	s.metrics.RecordAuth("logout", err)
	if err != nil {
		return err
	}

	s.clearSessionCookie(c)
	return c.JSON(http.StatusOK, MessageBody{Message: MsgLoggedOut})
}
