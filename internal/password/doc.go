// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package password implements password policy and password hashing.
//
// # Constraints
//
// A Constraint is a single strength rule. Constraints are created with
// their New* constructors, which reject non-positive bounds:
//   - NewMinLength - minimum number of characters
//   - NewMaxLength - maximum number of characters
//   - NewMustContainDigit - minimum number of decimal digits
//   - NewMustContainLetter - minimum number of letters
//
// A ConstraintList combines constraints with logical AND. The empty list
// accepts every password. Lists serialize to a slice of Spec values for
// configuration files.
//
// # Hashing
//
// A HashCreator is a named hashing strategy. Encoded hashes always carry the
// algorithm name ("$sha512$...", "$argon2id$..."), so Hashers can verify
// hashes created by any registered algorithm after the default changes.
package password
