// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package postgres provides a PostgreSQL-backed identity.Store.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/holomush/warden/internal/identity"
)

// poolIface is the subset of *pgxpool.Pool the store uses.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// querier is implemented by both the pool and a pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store implements identity.Store using PostgreSQL.
type Store struct {
	pool poolIface
}

// NewStore creates a Store. Pass a *pgxpool.Pool.
func NewStore(pool poolIface) *Store {
	return &Store{pool: pool}
}

// Ping implements identity.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return oops.Code("IDENTITY_UNAVAILABLE").With("operation", "ping").Wrap(err)
	}
	return nil
}

var _ identity.Pinger = (*Store)(nil)

const userColumns = `id, login, display_name, email, password_hash, locale, disabled, deleted, created_at, updated_at`

// FindUserByLogin implements identity.Store.
func (s *Store) FindUserByLogin(ctx context.Context, login string) (*identity.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(login) = LOWER($1)`, identity.NormalizeLogin(login))
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("login", login).Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("operation", "find user by login").With("login", login).Wrap(err)
	}
	if err := s.loadAttributes(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// FindUserByID implements identity.Store.
func (s *Store) FindUserByID(ctx context.Context, id string) (*identity.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("user_id", id).Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("operation", "find user by id").With("user_id", id).Wrap(err)
	}
	if err := s.loadAttributes(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// FindRoleByID implements identity.Store.
func (s *Store) FindRoleByID(ctx context.Context, id string) (*identity.Role, error) {
	var r identity.Role
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE id = $1`, id).Scan(&r.ID, &r.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ROLE_NOT_FOUND").With("role_id", id).Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ROLE_QUERY_FAILED").With("role_id", id).Wrap(err)
	}
	return &r, nil
}

// FindUserGroupByID implements identity.Store.
func (s *Store) FindUserGroupByID(ctx context.Context, id string) (*identity.UserGroup, error) {
	var groupID, name string
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM user_groups WHERE id = $1`, id).Scan(&groupID, &name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_GROUP_NOT_FOUND").With("user_group_id", id).Wrap(identity.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GROUP_QUERY_FAILED").With("user_group_id", id).Wrap(err)
	}

	g := &identity.UserGroup{ID: groupID, Name: name}
	members, err := s.pairs(ctx, `SELECT user_group_id, user_id FROM user_group_users WHERE user_group_id = $1`, id)
	if err != nil {
		return nil, err
	}
	roles, err := s.pairs(ctx, `SELECT user_group_id, role_id FROM user_group_roles WHERE user_group_id = $1`, id)
	if err != nil {
		return nil, err
	}
	if err := assignMembers(g, members[id], roles[id]); err != nil {
		return nil, err
	}
	return g, nil
}

// Users implements identity.Store.
func (s *Store) Users(ctx context.Context) ([]*identity.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("operation", "list users").Wrap(err)
	}
	defer rows.Close()

	var users []*identity.User
	byID := make(map[string]*identity.User)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_QUERY_FAILED").With("operation", "scan user").Wrap(err)
		}
		users = append(users, u)
		byID[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("operation", "iterate users").Wrap(err)
	}

	attrs, err := s.pool.Query(ctx, `SELECT user_id, name, value FROM user_attributes`)
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("operation", "list attributes").Wrap(err)
	}
	defer attrs.Close()
	for attrs.Next() {
		var userID, name, value string
		if err := attrs.Scan(&userID, &name, &value); err != nil {
			return nil, oops.Code("USER_QUERY_FAILED").With("operation", "scan attribute").Wrap(err)
		}
		if u, ok := byID[userID]; ok {
			setAttribute(u, name, value)
		}
	}
	if err := attrs.Err(); err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").With("operation", "iterate attributes").Wrap(err)
	}
	return users, nil
}

// Roles implements identity.Store.
func (s *Store) Roles(ctx context.Context) ([]*identity.Role, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, oops.Code("ROLE_QUERY_FAILED").With("operation", "list roles").Wrap(err)
	}
	defer rows.Close()

	var roles []*identity.Role
	for rows.Next() {
		var r identity.Role
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, oops.Code("ROLE_QUERY_FAILED").With("operation", "scan role").Wrap(err)
		}
		roles = append(roles, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROLE_QUERY_FAILED").With("operation", "iterate roles").Wrap(err)
	}
	return roles, nil
}

// UserGroups implements identity.Store.
func (s *Store) UserGroups(ctx context.Context) ([]*identity.UserGroup, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM user_groups ORDER BY id`)
	if err != nil {
		return nil, oops.Code("USER_GROUP_QUERY_FAILED").With("operation", "list user groups").Wrap(err)
	}
	var groups []*identity.UserGroup
	for rows.Next() {
		g := &identity.UserGroup{}
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			rows.Close()
			return nil, oops.Code("USER_GROUP_QUERY_FAILED").With("operation", "scan user group").Wrap(err)
		}
		groups = append(groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_GROUP_QUERY_FAILED").With("operation", "iterate user groups").Wrap(err)
	}

	members, err := s.pairs(ctx, `SELECT user_group_id, user_id FROM user_group_users`)
	if err != nil {
		return nil, err
	}
	roles, err := s.pairs(ctx, `SELECT user_group_id, role_id FROM user_group_roles`)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if err := assignMembers(g, members[g.ID], roles[g.ID]); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// UserGroupsOfUser implements identity.GroupMembershipFinder.
func (s *Store) UserGroupsOfUser(ctx context.Context, userID string) ([]*identity.UserGroup, error) {
	ids, err := s.pairs(ctx, `SELECT user_id, user_group_id FROM user_group_users WHERE user_id = $1 ORDER BY user_group_id`, userID)
	if err != nil {
		return nil, err
	}
	groups := make([]*identity.UserGroup, 0, len(ids[userID]))
	for _, id := range ids[userID] {
		g, err := s.FindUserGroupByID(ctx, id)
		if errors.Is(err, identity.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// UpdatePasswordHash implements identity.PasswordUpdater.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	if hash == "" {
		return oops.Code("USER_INVALID_PASSWORD_HASH").With("id", userID).Errorf("user password hash cannot be empty")
	}
	result, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		userID, hash, time.Now())
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").With("user_id", userID).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("user_id", userID).Wrap(identity.ErrNotFound)
	}
	return nil
}

// Import inserts every entity of d in a single transaction. The directory
// must already be valid; conflicting IDs or logins fail with IDENTITY_DUPLICATE.
func (s *Store) Import(ctx context.Context, d *identity.Directory) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return oops.Code("IDENTITY_IMPORT_FAILED").With("operation", "begin transaction").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := importDirectory(ctx, tx, d); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("IDENTITY_IMPORT_FAILED").With("operation", "commit").Wrap(err)
	}
	return nil
}

func importDirectory(ctx context.Context, q querier, d *identity.Directory) error {
	for _, r := range d.Roles {
		if _, err := q.Exec(ctx, `INSERT INTO roles (id, name) VALUES ($1, $2)`, r.ID, r.Name); err != nil {
			return insertError(err, "role", r.ID)
		}
	}
	now := time.Now()
	for _, u := range d.Users {
		created, updated := u.CreatedAt, u.UpdatedAt
		if created.IsZero() {
			created = now
		}
		if updated.IsZero() {
			updated = now
		}
		_, err := q.Exec(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, u.ID, identity.NormalizeLogin(u.Login), u.DisplayName, u.Email, u.PasswordHash, u.Locale, u.Disabled, u.Deleted, created, updated)
		if err != nil {
			return insertError(err, "user", u.ID)
		}
		for name, value := range u.Attributes {
			_, err := q.Exec(ctx, `INSERT INTO user_attributes (user_id, name, value) VALUES ($1, $2, $3)`, u.ID, name, value)
			if err != nil {
				return insertError(err, "user attribute", u.ID)
			}
		}
	}
	for _, g := range d.UserGroups {
		if _, err := q.Exec(ctx, `INSERT INTO user_groups (id, name) VALUES ($1, $2)`, g.ID, g.Name); err != nil {
			return insertError(err, "user group", g.ID)
		}
		for _, userID := range g.UserIDs() {
			_, err := q.Exec(ctx, `INSERT INTO user_group_users (user_group_id, user_id) VALUES ($1, $2)`, g.ID, userID)
			if err != nil {
				return insertError(err, "user group member", g.ID)
			}
		}
		for _, roleID := range g.RoleIDs() {
			_, err := q.Exec(ctx, `INSERT INTO user_group_roles (user_group_id, role_id) VALUES ($1, $2)`, g.ID, roleID)
			if err != nil {
				return insertError(err, "user group role", g.ID)
			}
		}
	}
	return nil
}

func insertError(err error, kind, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("IDENTITY_DUPLICATE").
			With("kind", kind).
			With("id", id).
			With("constraint", pgErr.ConstraintName).
			Wrap(err)
	}
	return oops.Code("IDENTITY_IMPORT_FAILED").With("kind", kind).With("id", id).Wrap(err)
}

// pairs runs a two-column query and groups the second column by the first.
func (s *Store) pairs(ctx context.Context, sql string, args ...any) (map[string][]string, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.Code("USER_GROUP_QUERY_FAILED").With("operation", "list memberships").Wrap(err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, oops.Code("USER_GROUP_QUERY_FAILED").With("operation", "scan membership").Wrap(err)
		}
		out[key] = append(out[key], value)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_GROUP_QUERY_FAILED").With("operation", "iterate memberships").Wrap(err)
	}
	return out, nil
}

func assignMembers(g *identity.UserGroup, userIDs, roleIDs []string) error {
	for _, id := range userIDs {
		if _, err := g.AssignUser(id); err != nil {
			return err
		}
	}
	for _, id := range roleIDs {
		if _, err := g.AssignRole(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadAttributes(ctx context.Context, u *identity.User) error {
	rows, err := s.pool.Query(ctx, `SELECT name, value FROM user_attributes WHERE user_id = $1`, u.ID)
	if err != nil {
		return oops.Code("USER_QUERY_FAILED").With("operation", "load attributes").With("user_id", u.ID).Wrap(err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return oops.Code("USER_QUERY_FAILED").With("operation", "scan attribute").With("user_id", u.ID).Wrap(err)
		}
		setAttribute(u, name, value)
	}
	if err := rows.Err(); err != nil {
		return oops.Code("USER_QUERY_FAILED").With("operation", "iterate attributes").With("user_id", u.ID).Wrap(err)
	}
	return nil
}

func setAttribute(u *identity.User, name, value string) {
	if u.Attributes == nil {
		u.Attributes = make(map[string]string)
	}
	u.Attributes[name] = value
}

// scanUser scans one users row. pgx.ErrNoRows is returned unwrapped.
func scanUser(row pgx.Row) (*identity.User, error) {
	var u identity.User
	err := row.Scan(
		&u.ID,
		&u.Login,
		&u.DisplayName,
		&u.Email,
		&u.PasswordHash,
		&u.Locale,
		&u.Disabled,
		&u.Deleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with lookup context
	}
	return &u, nil
}

var (
	_ identity.Store                 = (*Store)(nil)
	_ identity.PasswordUpdater       = (*Store)(nil)
	_ identity.GroupMembershipFinder = (*Store)(nil)
)
