// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/text/language"

	"github.com/holomush/warden/internal/i18n"
)

// CredentialValidator checks credentials of the kinds it supports.
type CredentialValidator interface {
	// Supports reports whether the validator understands c.
	Supports(c Credential) bool
	// Validate checks c. Failure messages are localized for locale.
	Validate(ctx context.Context, locale language.Tag, c Credential) ValidationResult
}

// ValidatorChain tries an ordered list of validators.
type ValidatorChain struct {
	validators []CredentialValidator
}

// NewValidatorChain creates a chain over validators, in order. Nil entries
// are skipped. A chain without validators cannot accept anything, so zero
// validators is an error.
func NewValidatorChain(validators ...CredentialValidator) (*ValidatorChain, error) {
	list := make([]CredentialValidator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			list = append(list, v)
		}
	}
	if len(list) == 0 {
		return nil, oops.Code("AUTH_NO_VALIDATORS").Errorf("at least one credential validator is required")
	}
	return &ValidatorChain{validators: list}, nil
}

// Len returns the number of validators.
func (c *ValidatorChain) Len() int {
	return len(c.validators)
}

// Supports reports whether any validator supports cred.
func (c *ValidatorChain) Supports(cred Credential) bool {
	for _, v := range c.validators {
		if v.Supports(cred) {
			return true
		}
	}
	return false
}

// Validate runs every supporting validator in order and returns the first
// success. Otherwise the failure messages are joined with newlines. It
// panics if cred is nil.
func (c *ValidatorChain) Validate(ctx context.Context, locale language.Tag, cred Credential) ValidationResult {
	if cred == nil {
		panic("auth.ValidatorChain.Validate: credential must not be nil")
	}

	var messages []string
	for _, v := range c.validators {
		if !v.Supports(cred) {
			continue
		}
		result := v.Validate(ctx, locale, cred)
		if result.IsSuccess() {
			return Success
		}
		if msg := result.Message(); msg != "" {
			messages = append(messages, msg)
		}
	}
	if len(messages) == 0 {
		return Failure(i18n.Sprintf(locale, i18n.CredentialNoneSucceeded))
	}
	return Failure(strings.Join(messages, "\n"))
}

var _ CredentialValidator = (*ValidatorChain)(nil)
