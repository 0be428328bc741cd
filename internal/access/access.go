// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package access answers membership and permission questions about users.
//
// Resolver walks the identity store one level deep: a user's effective
// roles are the union of the roles of every user group the user is
// assigned to. Unknown users, roles and groups resolve to false or an
// empty set; they are never reported as errors.
//
// Authorizer maps roles to glob permission patterns of the form
// "action:resource" and denies by default:
//   - action: "read", "write", "delete", "execute", "grant"
//   - resource: "user:01ABC", "role:*", "report:monthly"
package access

import (
	"context"
	"sort"
)

// Checker decides whether a user may perform an action on a resource.
type Checker interface {
	// Check returns true if the user is allowed to perform action on
	// resource. Unknown users and missing grants are denied.
	Check(ctx context.Context, userID, action, resource string) bool
}

// RoleSet is a set of role IDs.
type RoleSet map[string]struct{}

// NewRoleSet creates a set holding ids.
func NewRoleSet(ids ...string) RoleSet {
	s := make(RoleSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s RoleSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of roles.
func (s RoleSet) Len() int {
	return len(s)
}

// Sorted returns the role IDs in ascending order.
func (s RoleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
