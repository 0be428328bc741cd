// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

// Permission groups define reusable sets of permission patterns.
// Roles compose these groups rather than inheriting.

var selfService = []string{
	"read:user:$self",
	"write:user:$self",
	"execute:command:logout",
}

var directoryReader = []string{
	"read:user:*",
	"read:role:*",
	"read:user_group:*",
}

var adminPowers = []string{
	"read:**",
	"write:**",
	"delete:**",
	"execute:**",
	"grant:**",
}

// DefaultPermissions returns the built-in role permissions, keyed by role name.
func DefaultPermissions() map[string][]string {
	return map[string][]string{
		"user":    selfService,
		"auditor": compose(selfService, directoryReader),
		"admin":   compose(selfService, directoryReader, adminPowers),
	}
}

// compose merges multiple permission slices into one.
func compose(groups ...[]string) []string {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]string, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}
