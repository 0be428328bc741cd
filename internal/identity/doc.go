// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package identity defines users, roles and user groups and the read-only
// Store the authentication core looks them up in.
//
// # Domain Types
//
// Domain types should be created using their constructors, which validate
// input and assign a fresh ULID-based ID:
//   - NewUser - creates a User with a login and password hash
//   - NewRole - creates a Role with a name
//   - NewUserGroup - creates an empty UserGroup with a name
//
// A user's effective roles are the union of the roles of every group the
// user is assigned to. Groups do not nest.
//
// # Stores
//
// MemoryStore keeps everything in process and is populated from a
// Directory document (YAML or JSON). The postgres subpackage provides a
// PostgreSQL-backed Store. Lookups of unknown IDs return ErrNotFound.
package identity
