// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

// ValidationResult is the outcome of validating a credential: either
// Success or a Failure carrying a non-empty, localized message.
type ValidationResult struct {
	message string
}

// Success is the only successful ValidationResult.
var Success = ValidationResult{}

// Failure creates a failed result. It panics if message is empty.
func Failure(message string) ValidationResult {
	if message == "" {
		panic("auth.Failure: message must not be empty")
	}
	return ValidationResult{message: message}
}

// IsSuccess reports whether the credential was accepted.
func (r ValidationResult) IsSuccess() bool { return r.message == "" }

// IsFailure reports whether the credential was rejected.
func (r ValidationResult) IsFailure() bool { return r.message != "" }

// Message returns the failure message, or "" on success.
func (r ValidationResult) Message() string { return r.message }

// String returns "success" or the failure message.
func (r ValidationResult) String() string {
	if r.IsSuccess() {
		return "success"
	}
	return "failure: " + r.message
}
