// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]*User
	logins     map[string]string // lowercased login -> user ID
	roles      map[string]*Role
	userGroups map[string]*UserGroup
}

var (
	_ Store                 = (*MemoryStore)(nil)
	_ PasswordUpdater       = (*MemoryStore)(nil)
	_ GroupMembershipFinder = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]*User),
		logins:     make(map[string]string),
		roles:      make(map[string]*Role),
		userGroups: make(map[string]*UserGroup),
	}
}

// NewMemoryStoreFromDirectory creates a store holding every entity of d.
func NewMemoryStoreFromDirectory(d *Directory) (*MemoryStore, error) {
	s := NewMemoryStore()
	for _, r := range d.Roles {
		if err := s.PutRole(r); err != nil {
			return nil, err
		}
	}
	for _, u := range d.Users {
		if err := s.PutUser(u); err != nil {
			return nil, err
		}
	}
	for _, g := range d.UserGroups {
		if err := s.PutUserGroup(g); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func loginKey(login string) string {
	return strings.ToLower(NormalizeLogin(login))
}

// PutUser inserts or replaces a user. Logins must be unique
// case-insensitively.
func (s *MemoryStore) PutUser(u *User) error {
	if u == nil {
		return oops.Code("USER_INVALID").Errorf("user cannot be nil")
	}
	if err := u.Validate(); err != nil {
		return err
	}
	key := loginKey(u.Login)

	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.logins[key]; ok && owner != u.ID {
		return oops.Code("IDENTITY_DUPLICATE").
			With("login", u.Login).
			With("existing_id", owner).
			Errorf("login already in use")
	}
	if prev, ok := s.users[u.ID]; ok {
		delete(s.logins, loginKey(prev.Login))
	}
	s.users[u.ID] = u.Clone()
	s.logins[key] = u.ID
	return nil
}

// PutRole inserts or replaces a role.
func (s *MemoryStore) PutRole(r *Role) error {
	if r == nil {
		return oops.Code("ROLE_INVALID").Errorf("role cannot be nil")
	}
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[r.ID] = r.Clone()
	return nil
}

// PutUserGroup inserts or replaces a user group.
func (s *MemoryStore) PutUserGroup(g *UserGroup) error {
	if g == nil {
		return oops.Code("USER_GROUP_INVALID").Errorf("user group cannot be nil")
	}
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userGroups[g.ID] = g.Clone()
	return nil
}

// FindUserByLogin implements Store.
func (s *MemoryStore) FindUserByLogin(_ context.Context, login string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.logins[loginKey(login)]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").With("login", login).Wrap(ErrNotFound)
	}
	return s.users[id].Clone(), nil
}

// FindUserByID implements Store.
func (s *MemoryStore) FindUserByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").With("user_id", id).Wrap(ErrNotFound)
	}
	return u.Clone(), nil
}

// FindRoleByID implements Store.
func (s *MemoryStore) FindRoleByID(_ context.Context, id string) (*Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[id]
	if !ok {
		return nil, oops.Code("ROLE_NOT_FOUND").With("role_id", id).Wrap(ErrNotFound)
	}
	return r.Clone(), nil
}

// FindUserGroupByID implements Store.
func (s *MemoryStore) FindUserGroupByID(_ context.Context, id string) (*UserGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.userGroups[id]
	if !ok {
		return nil, oops.Code("USER_GROUP_NOT_FOUND").With("user_group_id", id).Wrap(ErrNotFound)
	}
	return g.Clone(), nil
}

// Users implements Store. Results are sorted by ID.
func (s *MemoryStore) Users(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Roles implements Store. Results are sorted by ID.
func (s *MemoryStore) Roles(_ context.Context) ([]*Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UserGroups implements Store. Results are sorted by ID.
func (s *MemoryStore) UserGroups(_ context.Context) ([]*UserGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*UserGroup, 0, len(s.userGroups))
	for _, g := range s.userGroups {
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UserGroupsOfUser implements GroupMembershipFinder.
func (s *MemoryStore) UserGroupsOfUser(_ context.Context, userID string) ([]*UserGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*UserGroup
	for _, g := range s.userGroups {
		if g.ContainsUser(userID) {
			out = append(out, g.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdatePasswordHash implements PasswordUpdater.
func (s *MemoryStore) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return oops.Code("USER_NOT_FOUND").With("user_id", userID).Wrap(ErrNotFound)
	}
	return u.SetPasswordHash(hash)
}
