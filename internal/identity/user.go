// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

import (
	"maps"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"golang.org/x/text/unicode/norm"
)

// User is an account that can log in.
type User struct {
	ID           string            `json:"id" yaml:"id"`
	Login        string            `json:"login" yaml:"login"`
	DisplayName  string            `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Email        string            `json:"email,omitempty" yaml:"email,omitempty"`
	PasswordHash string            `json:"password_hash" yaml:"password_hash"`
	Locale       string            `json:"locale,omitempty" yaml:"locale,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Disabled     bool              `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Deleted      bool              `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	CreatedAt    time.Time         `json:"-" yaml:"-"`
	UpdatedAt    time.Time         `json:"-" yaml:"-"`
}

// NormalizeLogin returns login in NFKC form without surrounding space, so
// compatibility variants such as full-width letters name the same user.
// Case is left alone; stores compare logins case-insensitively.
func NormalizeLogin(login string) string {
	return norm.NFKC.String(strings.TrimSpace(login))
}

// NewUser creates a validated User with a new ID.
func NewUser(login, passwordHash string) (*User, error) {
	now := time.Now()
	u := &User{
		ID:           ulid.Make().String(),
		Login:        login,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks the invariants of a User.
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return oops.Code("IDENTITY_INVALID_ID").With("login", u.Login).Errorf("user ID cannot be empty")
	}
	if strings.TrimSpace(u.Login) == "" {
		return oops.Code("USER_INVALID_LOGIN").With("id", u.ID).Errorf("user login cannot be empty")
	}
	if u.PasswordHash == "" {
		return oops.Code("USER_INVALID_PASSWORD_HASH").With("id", u.ID).Errorf("user password hash cannot be empty")
	}
	for k := range u.Attributes {
		if k == "" {
			return oops.Code("USER_INVALID_ATTRIBUTE").With("id", u.ID).Errorf("attribute name cannot be empty")
		}
	}
	return nil
}

// IsEnabled returns true if the account is neither disabled nor deleted.
func (u *User) IsEnabled() bool {
	return !u.Disabled && !u.Deleted
}

// SetPasswordHash replaces the stored password hash.
func (u *User) SetPasswordHash(hash string) error {
	if hash == "" {
		return oops.Code("USER_INVALID_PASSWORD_HASH").With("id", u.ID).Errorf("user password hash cannot be empty")
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

// Attribute returns a custom attribute value.
func (u *User) Attribute(name string) (string, bool) {
	v, ok := u.Attributes[name]
	return v, ok
}

// SetAttribute sets a custom attribute value.
func (u *User) SetAttribute(name, value string) {
	if u.Attributes == nil {
		u.Attributes = make(map[string]string)
	}
	u.Attributes[name] = value
	u.UpdatedAt = time.Now()
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	c := *u
	c.Attributes = maps.Clone(u.Attributes)
	return &c
}
