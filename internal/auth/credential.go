// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"fmt"
	"log/slog"
)

// Credential kinds.
const (
	KindUserNamePassword = "username_password"
)

// redacted replaces secrets in string and log output.
const redacted = "***"

// Credential is something a caller supplies to prove identity.
// Implementations must be immutable and comparable.
type Credential interface {
	// Kind names the credential variant.
	Kind() string
	// String returns a representation safe to log; secrets are redacted.
	String() string
}

// UserNamePassword is a user name and password pair. Either part may be
// absent, which is represented by the empty string.
type UserNamePassword struct {
	userName string
	password string
}

// NewUserNamePassword creates a UserNamePassword credential.
func NewUserNamePassword(userName, password string) UserNamePassword {
	return UserNamePassword{userName: userName, password: password}
}

// Kind implements Credential.
func (c UserNamePassword) Kind() string { return KindUserNamePassword }

// UserName returns the user name, or "" if absent.
func (c UserNamePassword) UserName() string { return c.userName }

// Password returns the plaintext password, or "" if absent.
func (c UserNamePassword) Password() string { return c.password }

// HasUserName reports whether a user name was supplied.
func (c UserNamePassword) HasUserName() bool { return c.userName != "" }

// HasPassword reports whether a password was supplied.
func (c UserNamePassword) HasPassword() bool { return c.password != "" }

// String implements Credential. The password is never included.
func (c UserNamePassword) String() string {
	pw := "<none>"
	if c.HasPassword() {
		pw = redacted
	}
	return fmt.Sprintf("UserNamePassword{user=%q, password=%s}", c.userName, pw)
}

// GoString keeps %#v from printing the password.
func (c UserNamePassword) GoString() string {
	return c.String()
}

// LogValue implements slog.LogValuer.
func (c UserNamePassword) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", KindUserNamePassword),
		slog.String("user", c.userName),
		slog.Bool("has_password", c.HasPassword()),
	)
}

var (
	_ Credential     = UserNamePassword{}
	_ slog.LogValuer = UserNamePassword{}
)
