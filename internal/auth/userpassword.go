// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
	"golang.org/x/text/language"

	"github.com/holomush/warden/internal/i18n"
	"github.com/holomush/warden/internal/identity"
	"github.com/holomush/warden/internal/password"
	"github.com/holomush/warden/pkg/errutil"
)

// UserPasswordValidator validates UserNamePassword credentials against an
// identity.Store.
type UserPasswordValidator struct {
	users   identity.Store
	hashers *password.Hashers
	lockout *Lockout
	logger  *slog.Logger
}

// UserPasswordValidatorOption configures a UserPasswordValidator.
type UserPasswordValidatorOption func(*UserPasswordValidator)

// WithValidatorLogger sets the logger used for store failures.
func WithValidatorLogger(logger *slog.Logger) UserPasswordValidatorOption {
	return func(v *UserPasswordValidator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithValidatorLockout makes the validator count failed passwords and
// reject locked users. Share the registry's Lockout so both paths agree.
func WithValidatorLockout(l *Lockout) UserPasswordValidatorOption {
	return func(v *UserPasswordValidator) {
		v.lockout = l
	}
}

// NewUserPasswordValidator creates a validator. Both dependencies are required.
func NewUserPasswordValidator(users identity.Store, hashers *password.Hashers, opts ...UserPasswordValidatorOption) (*UserPasswordValidator, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NO_STORE").Errorf("identity store is required")
	}
	if hashers == nil {
		return nil, oops.Code("AUTH_NO_HASHERS").Errorf("password hashers are required")
	}
	v := &UserPasswordValidator{users: users, hashers: hashers, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Supports implements CredentialValidator.
func (v *UserPasswordValidator) Supports(c Credential) bool {
	_, ok := c.(UserNamePassword)
	return ok
}

// Validate implements CredentialValidator. Unknown users and wrong
// passwords produce the same message; the unknown-user path still verifies
// a dummy hash.
func (v *UserPasswordValidator) Validate(ctx context.Context, locale language.Tag, c Credential) ValidationResult {
	cred, ok := c.(UserNamePassword)
	if !ok {
		return Failure(i18n.Sprintf(locale, i18n.CredentialNoneSucceeded))
	}
	if !cred.HasUserName() {
		return Failure(i18n.Sprintf(locale, i18n.CredentialNoUserName))
	}

	user, err := v.users.FindUserByLogin(ctx, cred.UserName())
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			_, _ = v.hashers.Verify(cred.Password(), v.hashers.DummyHash()) //nolint:errcheck // timing only
			return Failure(i18n.Sprintf(locale, i18n.CredentialInvalid))
		}
		errutil.LogWarn(ctx, v.logger, "credential validation failed", err)
		return Failure(i18n.Sprintf(locale, i18n.CredentialStoreFailure))
	}

	match, err := v.hashers.Verify(cred.Password(), user.PasswordHash)
	if err != nil {
		errutil.LogWarn(ctx, v.logger.With("user_id", user.ID), "stored password hash is unusable", err)
	}
	if err != nil || !match {
		if _, newlyLocked := v.lockout.RecordFailure(user.ID); newlyLocked {
			v.logger.InfoContext(ctx, "account locked after repeated failures",
				"user_id", user.ID, "remaining", v.lockout.Remaining(user.ID))
		}
		return Failure(i18n.Sprintf(locale, i18n.CredentialInvalid))
	}
	if !user.IsEnabled() || v.lockout.IsLocked(user.ID) {
		return Failure(i18n.Sprintf(locale, i18n.CredentialUserDisabled))
	}
	v.lockout.RecordSuccess(user.ID)
	return Success
}

var _ CredentialValidator = (*UserPasswordValidator)(nil)
