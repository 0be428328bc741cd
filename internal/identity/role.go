// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

import (
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/warden/internal/state"
)

// Role is a named permission bundle granted through user groups.
type Role struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// NewRole creates a validated Role with a new ID.
func NewRole(name string) (*Role, error) {
	r := &Role{ID: ulid.Make().String(), Name: name}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the invariants of a Role.
func (r *Role) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return oops.Code("IDENTITY_INVALID_ID").With("name", r.Name).Errorf("role ID cannot be empty")
	}
	if strings.TrimSpace(r.Name) == "" {
		return oops.Code("ROLE_INVALID_NAME").With("id", r.ID).Errorf("role name cannot be empty")
	}
	return nil
}

// Rename changes the role name.
func (r *Role) Rename(name string) (state.Change, error) {
	if strings.TrimSpace(name) == "" {
		return state.Unchanged, oops.Code("ROLE_INVALID_NAME").With("id", r.ID).Errorf("role name cannot be empty")
	}
	if name == r.Name {
		return state.Unchanged, nil
	}
	r.Name = name
	return state.Changed, nil
}

// Clone returns a copy of the role.
func (r *Role) Clone() *Role {
	c := *r
	return &c
}
