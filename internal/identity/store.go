// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

import "context"

// Store provides read-only lookup of users, roles and user groups.
//
// Find* methods return ErrNotFound (possibly wrapped) when the entity does
// not exist. Returned values are copies; mutating them does not affect the
// store.
type Store interface {
	// FindUserByLogin looks up a user by login name. Matching is
	// case-insensitive.
	FindUserByLogin(ctx context.Context, login string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	FindRoleByID(ctx context.Context, id string) (*Role, error)
	FindUserGroupByID(ctx context.Context, id string) (*UserGroup, error)

	Users(ctx context.Context) ([]*User, error)
	Roles(ctx context.Context) ([]*Role, error)
	UserGroups(ctx context.Context) ([]*UserGroup, error)
}

// PasswordUpdater is implemented by stores that can persist a rotated
// password hash.
type PasswordUpdater interface {
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// GroupMembershipFinder is implemented by stores that can list the groups
// of a user without enumerating every group.
type GroupMembershipFinder interface {
	UserGroupsOfUser(ctx context.Context, userID string) ([]*UserGroup, error)
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
