// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package board

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// ErrNotFound is wrapped by Store implementations when an author, article or
// comment does not exist, or exists under a different parent.
var ErrNotFound = errors.New("not found")

// Error codes carried by service errors.
const (
	CodeValidation  = "BOARD_VALIDATION"
	CodeNotFound    = "BOARD_NOT_FOUND"
	CodeForbidden   = "BOARD_FORBIDDEN"
	CodeStoreFailed = "BOARD_STORE_FAILED"
)

// Messages safe to show to clients.
const (
	MsgAuthorNotFound  = "The author was not found."
	MsgArticleNotFound = "The article was not found."
	MsgCommentNotFound = "The comment was not found."
	MsgForbidden       = "You are not allowed to change this resource."
)

// NewValidationError reports malformed board input.
func NewValidationError(format string, args ...any) error {
	return oops.Code(CodeValidation).Errorf("%s", fmt.Sprintf(format, args...))
}

func notFound(msg string) error {
	return oops.Code(CodeNotFound).Errorf("%s", msg)
}

func forbidden() error {
	return oops.Code(CodeForbidden).Errorf("%s", MsgForbidden)
}

// storeFailed classifies a Store error. ErrNotFound becomes a not-found error
// with the given message; anything else is a store failure.
func storeFailed(err error, operation, notFoundMsg string) error {
	if errors.Is(err, ErrNotFound) {
		return notFound(notFoundMsg)
	}
	return oops.Code(CodeStoreFailed).With("operation", operation).Wrap(err)
}
