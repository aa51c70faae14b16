// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Repository sentinels. Implementations wrap them without an oops code so the
// service decides how a failure is classified.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate")
)

// Error codes carried by service errors.
const (
	CodeValidation         = "AUTH_VALIDATION"
	CodeDuplicateAccount   = "AUTH_DUPLICATE_ACCOUNT"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeUnauthenticated    = "AUTH_UNAUTHENTICATED"
	CodeSessionFailed      = "AUTH_SESSION_FAILED"
	CodeStoreFailed        = "AUTH_STORE_FAILED"
)

// Messages safe to show to clients.
const (
	MsgDuplicateAccount   = "An account with the given email already exists"
	MsgInvalidCredentials = "Email or password not found."
	MsgUnauthenticated    = "Please log in first."
)

// NewValidationError reports malformed input. The message is shown to the
// client verbatim, so it must name the field and never echo secrets.
func NewValidationError(format string, args ...any) error {
	return oops.Code(CodeValidation).Errorf("%s", fmt.Sprintf(format, args...))
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("%s", MsgInvalidCredentials)
}

// NewUnauthenticatedError reports a request that needs a session but has
// none. Other packages use it to reject anonymous actors.
func NewUnauthenticatedError() error {
	return oops.Code(CodeUnauthenticated).Errorf("%s", MsgUnauthenticated)
}

func unauthenticated() error {
	return NewUnauthenticatedError()
}
