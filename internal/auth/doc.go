// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auth provides registration, password and session primitives for
// the message board.
//
// # Domain Types
//
// Domain types (User, Session) should be created using their constructors:
//   - NewUser - creates a non-admin User with a validated email and a password hash
//   - NewSession - creates a Session holding a PublicView snapshot and an expiry
//
// Direct struct initialization bypasses validation and may create invalid state.
// Repository implementations receive pre-validated types from these constructors.
//
// # Projection
//
// A User never leaves the server. Anything sent to a client is a PublicView
// produced by Project, which keeps exactly the id, email and admin flag.
//
// # Services
//
// Service coordinates the account lifecycle: Register, Login, CurrentSession,
// Logout and PruneSessions. Callers pass a SessionHandle describing the
// request's cookie token; the service never reads shared request state.
//
// Services are created with New*Service constructors that validate dependencies.
package auth
