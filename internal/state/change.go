// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package state holds small value types describing the effect of a mutation.
package state

// Change reports whether an operation modified anything.
type Change bool

// Possible Change values.
const (
	Changed   Change = true
	Unchanged Change = false
)

// IsChanged returns true if the operation modified state.
func (c Change) IsChanged() bool {
	return bool(c)
}

// IsUnchanged returns true if the operation was a no-op.
func (c Change) IsUnchanged() bool {
	return !bool(c)
}

// Or combines two changes; the result is Changed if either is.
func (c Change) Or(other Change) Change {
	return c || other
}

// String implements fmt.Stringer.
func (c Change) String() string {
	if c {
		return "changed"
	}
	return "unchanged"
}

// ValueOf converts a boolean "did modify" flag to a Change.
func ValueOf(modified bool) Change {
	return Change(modified)
}
