// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"

	"github.com/holomush/msgboard/internal/auth"
	"github.com/holomush/msgboard/internal/board"
	"github.com/holomush/msgboard/pkg/errutil"
)

// Error kinds returned to clients.
const (
	KindValidation         = "validation_error"
	KindDuplicateAccount   = "duplicate_account"
	KindInvalidCredentials = "invalid_credentials"
	KindUnauthenticated    = "unauthenticated"
	KindForbidden          = "forbidden"
	KindNotFound           = "not_found"
	KindSession            = "session_error"
	KindStore              = "store_error"
)

// codeBadRequest marks request bodies and parameters the API rejects itself.
const codeBadRequest = "API_BAD_REQUEST"

// Messages for failures whose detail stays in the log.
const (
	msgSessionFailed = "There was an error while processing the session."
	msgStoreFailed   = "There was an error while accessing the data."
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail names the error kind and carries a message safe for clients.
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorMapping struct {
	status int
	kind   string
	// expose sends err.Error() to the client; otherwise message is used.
	expose  bool
	message string
}

var codeMappings = map[string]errorMapping{
	codeBadRequest:              {http.StatusBadRequest, KindValidation, true, ""},
	auth.CodeValidation:         {http.StatusBadRequest, KindValidation, true, ""},
	auth.CodeDuplicateAccount:   {http.StatusBadRequest, KindDuplicateAccount, true, ""},
	auth.CodeInvalidCredentials: {http.StatusBadRequest, KindInvalidCredentials, true, ""},
	auth.CodeUnauthenticated:    {http.StatusUnauthorized, KindUnauthenticated, true, ""},
	auth.CodeSessionFailed:      {http.StatusInternalServerError, KindSession, false, msgSessionFailed},
	auth.CodeStoreFailed:        {http.StatusInternalServerError, KindStore, false, msgStoreFailed},
	board.CodeValidation:        {http.StatusBadRequest, KindValidation, true, ""},
	board.CodeNotFound:          {http.StatusNotFound, KindNotFound, true, ""},
	board.CodeForbidden:         {http.StatusForbidden, KindForbidden, true, ""},
	board.CodeStoreFailed:       {http.StatusInternalServerError, KindStore, false, msgStoreFailed},
}

func badRequest(format string, args ...any) error {
	return oops.Code(codeBadRequest).Errorf(format, args...)
}

// Classify maps an error to its HTTP status and client body.
func Classify(err error) (int, ErrorBody) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return classifyHTTPError(he)
	}

	m, ok := codeMappings[errutil.Code(err)]
	if !ok {
		m = errorMapping{http.StatusInternalServerError, KindStore, false, msgStoreFailed}
	}
	msg := m.message
	if m.expose {
		msg = err.Error()
	}
	return m.status, ErrorBody{Error: ErrorDetail{Kind: m.kind, Message: msg}}
}

func classifyHTTPError(he *echo.HTTPError) (int, ErrorBody) {
	msg, ok := he.Message.(string)
	if !ok {
		msg = http.StatusText(he.Code)
	}

	kind := KindValidation
	switch {
	case he.Code == http.StatusUnauthorized:
		kind = KindUnauthenticated
	case he.Code == http.StatusForbidden:
		kind = KindForbidden
	case he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed:
		kind = KindNotFound
	case he.Code >= http.StatusInternalServerError:
		kind = KindStore
		msg = msgStoreFailed
	}
	return he.Code, ErrorBody{Error: ErrorDetail{Kind: kind, Message: msg}}
}

// newErrorHandler returns an echo.HTTPErrorHandler writing ErrorBody
// responses. Server-side failures are logged with their oops context.
func newErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := Classify(err)
		if status >= http.StatusInternalServerError {
			errutil.LogErrorContext(c.Request().Context(), logger, "request failed", err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.WarnContext(c.Request().Context(), "failed to write error response", "error", writeErr)
		}
	}
}
