// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// selfToken is replaced with the checked user ID before matching.
const selfToken = "$self"

// Authorizer implements Checker with static role permissions.
//
// Permissions are keyed by role ID or role name. The permission table is
// immutable after construction, so no locking is needed.
type Authorizer struct {
	resolver *Resolver
	roles    map[string][]compiledPermission
	logger   *slog.Logger
}

// compiledPermission holds a permission pattern and its compiled glob.
type compiledPermission struct {
	pattern string
	glob    glob.Glob
}

// AuthorizerOption configures an Authorizer.
type AuthorizerOption func(*Authorizer)

// WithAuthorizerLogger sets the logger used for denied or failed checks.
func WithAuthorizerLogger(logger *slog.Logger) AuthorizerOption {
	return func(a *Authorizer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAuthorizer creates an Authorizer. permissions maps a role ID or name
// to "action:resource" glob patterns; ':' separates segments.
//
// Returns an error if any pattern fails to compile.
func NewAuthorizer(resolver *Resolver, permissions map[string][]string, opts ...AuthorizerOption) (*Authorizer, error) {
	if resolver == nil {
		return nil, oops.In("access").Code("ACCESS_NO_RESOLVER").Errorf("resolver is required")
	}

	compiled := make(map[string][]compiledPermission, len(permissions))
	for role, patterns := range permissions {
		perms := make([]compiledPermission, 0, len(patterns))
		for _, p := range patterns {
			g, err := glob.Compile(p, ':')
			if err != nil {
				return nil, oops.In("access").
					Code("INVALID_PERMISSION_PATTERN").
					With("role", role).
					With("pattern", p).
					Wrap(err)
			}
			perms = append(perms, compiledPermission{pattern: p, glob: g})
		}
		compiled[role] = perms
	}

	a := &Authorizer{resolver: resolver, roles: compiled, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Check implements Checker.
func (a *Authorizer) Check(ctx context.Context, userID, action, resource string) bool {
	if IsSystemContext(ctx) {
		return true
	}
	if userID == "" || action == "" {
		return false
	}

	user, err := a.resolver.store.FindUserByID(ctx, userID)
	if err != nil {
		a.resolver.storeFailure(ctx, "find user", err, "user_id", userID)
		return false
	}
	if !user.IsEnabled() {
		return false
	}

	requested := action + ":" + resource
	for _, perm := range a.permissionsOf(ctx, userID) {
		if strings.Contains(perm.pattern, selfToken) {
			resolved := strings.ReplaceAll(perm.pattern, selfToken, glob.QuoteMeta(userID))
			g, err := glob.Compile(resolved, ':')
			if err != nil {
				a.logger.Warn("failed to compile resolved permission pattern",
					"user_id", userID,
					"pattern", perm.pattern,
					"resolved", resolved,
					"error", err)
				continue
			}
			if g.Match(requested) {
				return true
			}
		} else if perm.glob.Match(requested) {
			return true
		}
	}

	a.logger.DebugContext(ctx, "permission denied",
		"user_id", userID,
		"action", action,
		"resource", resource)
	return false
}

// Permissions returns the patterns granted to userID through its effective
// roles, sorted and deduplicated.
func (a *Authorizer) Permissions(ctx context.Context, userID string) []string {
	seen := make(map[string]struct{})
	for _, perm := range a.permissionsOf(ctx, userID) {
		seen[perm.pattern] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (a *Authorizer) permissionsOf(ctx context.Context, userID string) []compiledPermission {
	var perms []compiledPermission
	for _, roleID := range a.resolver.EffectiveRoles(ctx, userID).Sorted() {
		perms = append(perms, a.roles[roleID]...)

		role, err := a.resolver.store.FindRoleByID(ctx, roleID)
		if err != nil {
			a.resolver.storeFailure(ctx, "find role", err, "role_id", roleID)
			continue
		}
		if role.Name != roleID {
			perms = append(perms, a.roles[role.Name]...)
		}
	}
	return perms
}

var _ Checker = (*Authorizer)(nil)
