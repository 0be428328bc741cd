// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auth decides whether credentials are valid and tracks which user
// is logged in to which session.
//
// # Credentials
//
// A Credential is an immutable value a caller supplies to prove identity.
// UserNamePassword is the built-in kind. A ValidatorChain holds an ordered
// list of CredentialValidator implementations and returns the first
// success, or a Failure joining every collected failure message.
//
// # Sessions
//
// SessionRegistry binds at most one user to a session ID. Login and Logout
// are atomic state transitions; the outcome of a login attempt is a
// LoginOutcome value, not an error. Registries are created with
// NewSessionRegistry and passed to call sites explicitly.
package auth
