// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/warden/internal/state"
)

// UserGroup assigns a set of users to a set of roles.
//
// The member sets never contain duplicates or empty IDs; they are only
// reachable through the Assign/Unassign methods.
type UserGroup struct {
	ID      string
	Name    string
	userIDs map[string]struct{}
	roleIDs map[string]struct{}
}

// groupDocument is the serialized form of a UserGroup.
type groupDocument struct {
	ID    string   `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Users []string `json:"users,omitempty" yaml:"users,omitempty" jsonschema:"uniqueItems=true"`
	Roles []string `json:"roles,omitempty" yaml:"roles,omitempty" jsonschema:"uniqueItems=true"`
}

// NewUserGroup creates an empty, validated UserGroup with a new ID.
func NewUserGroup(name string) (*UserGroup, error) {
	return newUserGroup(ulid.Make().String(), name)
}

func newUserGroup(id, name string) (*UserGroup, error) {
	g := &UserGroup{
		ID:      id,
		Name:    name,
		userIDs: make(map[string]struct{}),
		roleIDs: make(map[string]struct{}),
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the invariants of a UserGroup.
func (g *UserGroup) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return oops.Code("IDENTITY_INVALID_ID").With("name", g.Name).Errorf("user group ID cannot be empty")
	}
	if strings.TrimSpace(g.Name) == "" {
		return oops.Code("USER_GROUP_INVALID_NAME").With("id", g.ID).Errorf("user group name cannot be empty")
	}
	return nil
}

func checkMemberID(groupID, kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return oops.Code("IDENTITY_INVALID_ID").
			With("group_id", groupID).
			With("member_kind", kind).
			Errorf("%s ID cannot be empty", kind)
	}
	return nil
}

func add(set *map[string]struct{}, id string) state.Change {
	if *set == nil {
		*set = make(map[string]struct{})
	}
	if _, ok := (*set)[id]; ok {
		return state.Unchanged
	}
	(*set)[id] = struct{}{}
	return state.Changed
}

func remove(set map[string]struct{}, id string) state.Change {
	if _, ok := set[id]; !ok {
		return state.Unchanged
	}
	delete(set, id)
	return state.Changed
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// AssignUser adds a user to the group.
func (g *UserGroup) AssignUser(userID string) (state.Change, error) {
	if err := checkMemberID(g.ID, "user", userID); err != nil {
		return state.Unchanged, err
	}
	return add(&g.userIDs, userID), nil
}

// UnassignUser removes a user from the group.
func (g *UserGroup) UnassignUser(userID string) state.Change {
	return remove(g.userIDs, userID)
}

// ContainsUser returns true if the user is assigned to the group.
func (g *UserGroup) ContainsUser(userID string) bool {
	_, ok := g.userIDs[userID]
	return ok
}

// UserIDs returns the assigned user IDs, sorted.
func (g *UserGroup) UserIDs() []string {
	return sortedKeys(g.userIDs)
}

// UserCount returns the number of assigned users.
func (g *UserGroup) UserCount() int {
	return len(g.userIDs)
}

// AssignRole adds a role to the group.
func (g *UserGroup) AssignRole(roleID string) (state.Change, error) {
	if err := checkMemberID(g.ID, "role", roleID); err != nil {
		return state.Unchanged, err
	}
	return add(&g.roleIDs, roleID), nil
}

// UnassignRole removes a role from the group.
func (g *UserGroup) UnassignRole(roleID string) state.Change {
	return remove(g.roleIDs, roleID)
}

// ContainsRole returns true if the role is assigned to the group.
func (g *UserGroup) ContainsRole(roleID string) bool {
	_, ok := g.roleIDs[roleID]
	return ok
}

// RoleIDs returns the assigned role IDs, sorted.
func (g *UserGroup) RoleIDs() []string {
	return sortedKeys(g.roleIDs)
}

// RoleCount returns the number of assigned roles.
func (g *UserGroup) RoleCount() int {
	return len(g.roleIDs)
}

// Clone returns a deep copy of the group.
func (g *UserGroup) Clone() *UserGroup {
	c := &UserGroup{
		ID:      g.ID,
		Name:    g.Name,
		userIDs: make(map[string]struct{}, len(g.userIDs)),
		roleIDs: make(map[string]struct{}, len(g.roleIDs)),
	}
	for id := range g.userIDs {
		c.userIDs[id] = struct{}{}
	}
	for id := range g.roleIDs {
		c.roleIDs[id] = struct{}{}
	}
	return c
}

func (g *UserGroup) document() groupDocument {
	return groupDocument{ID: g.ID, Name: g.Name, Users: g.UserIDs(), Roles: g.RoleIDs()}
}

func (g *UserGroup) fromDocument(doc groupDocument) error {
	built, err := newUserGroup(doc.ID, doc.Name)
	if err != nil {
		return err
	}
	for _, id := range doc.Users {
		if _, err := built.AssignUser(id); err != nil {
			return err
		}
	}
	for _, id := range doc.Roles {
		if _, err := built.AssignRole(id); err != nil {
			return err
		}
	}
	*g = *built
	return nil
}

// MarshalJSON implements json.Marshaler.
func (g *UserGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.document()) //nolint:wrapcheck // plain document
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *UserGroup) UnmarshalJSON(data []byte) error {
	var doc groupDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return oops.Code("USER_GROUP_DECODE_FAILED").Wrap(err)
	}
	return g.fromDocument(doc)
}

// MarshalYAML implements yaml.Marshaler.
func (g *UserGroup) MarshalYAML() (any, error) {
	return g.document(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (g *UserGroup) UnmarshalYAML(node *yaml.Node) error {
	var doc groupDocument
	if err := node.Decode(&doc); err != nil {
		return oops.Code("USER_GROUP_DECODE_FAILED").Wrap(err)
	}
	return g.fromDocument(doc)
}
