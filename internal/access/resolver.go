// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/samber/oops"

	"github.com/holomush/warden/internal/identity"
	"github.com/holomush/warden/pkg/errutil"
)

// Resolver answers membership questions by reading an identity.Store.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	store  identity.Store
	logger *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger used for store failures.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver over store.
func NewResolver(store identity.Store, opts ...ResolverOption) (*Resolver, error) {
	if store == nil {
		return nil, oops.In("access").Code("ACCESS_NO_STORE").Errorf("identity store is required")
	}
	r := &Resolver{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// IsUserAssignedToUserGroup reports whether userID is a member of the
// group userGroupID. It returns false if the group does not exist.
func (r *Resolver) IsUserAssignedToUserGroup(ctx context.Context, userGroupID, userID string) bool {
	g, err := r.store.FindUserGroupByID(ctx, userGroupID)
	if err != nil {
		r.storeFailure(ctx, "find user group", err, "user_group_id", userGroupID)
		return false
	}
	return g.ContainsUser(userID)
}

// UserGroupIDsOf returns the IDs of every group userID is assigned to, sorted.
func (r *Resolver) UserGroupIDsOf(ctx context.Context, userID string) []string {
	groups := r.groupsOf(ctx, userID)
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	sort.Strings(ids)
	return ids
}

// EffectiveRoles returns the union of the roles of every group userID is
// assigned to. Groups do not nest.
func (r *Resolver) EffectiveRoles(ctx context.Context, userID string) RoleSet {
	roles := make(RoleSet)
	for _, g := range r.groupsOf(ctx, userID) {
		for _, id := range g.RoleIDs() {
			roles[id] = struct{}{}
		}
	}
	return roles
}

// HasRole reports whether roleID is one of the effective roles of userID.
func (r *Resolver) HasRole(ctx context.Context, userID, roleID string) bool {
	return r.EffectiveRoles(ctx, userID).Contains(roleID)
}

func (r *Resolver) groupsOf(ctx context.Context, userID string) []*identity.UserGroup {
	if userID == "" {
		return nil
	}
	if finder, ok := r.store.(identity.GroupMembershipFinder); ok {
		groups, err := finder.UserGroupsOfUser(ctx, userID)
		if err != nil {
			r.storeFailure(ctx, "list user groups of user", err, "user_id", userID)
			return nil
		}
		return groups
	}

	all, err := r.store.UserGroups(ctx)
	if err != nil {
		r.storeFailure(ctx, "list user groups", err, "user_id", userID)
		return nil
	}
	var groups []*identity.UserGroup
	for _, g := range all {
		if g.ContainsUser(userID) {
			groups = append(groups, g)
		}
	}
	return groups
}

// storeFailure logs lookup failures other than not-found. Callers fail closed.
func (r *Resolver) storeFailure(ctx context.Context, operation string, err error, args ...any) {
	if errors.Is(err, identity.ErrNotFound) {
		return
	}
	errutil.LogWarn(ctx, r.logger.With(args...).With("operation", operation), "identity store lookup failed", err)
}
