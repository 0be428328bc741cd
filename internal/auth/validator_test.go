// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/holomush/warden/internal/auth"
	"github.com/holomush/warden/internal/i18n"
	"github.com/holomush/warden/pkg/errutil"
)

// stubValidator supports credentials of one kind and returns a fixed result.
type stubValidator struct {
	kind   string
	result auth.ValidationResult
	calls  int
}

func (v *stubValidator) Supports(c auth.Credential) bool { return c.Kind() == v.kind }

func (v *stubValidator) Validate(_ context.Context, _ language.Tag, _ auth.Credential) auth.ValidationResult {
	v.calls++
	return v.result
}

// otherCredential is a credential kind no built-in validator supports.
type otherCredential struct{}

func (otherCredential) Kind() string   { return "other" }
func (otherCredential) String() string { return "other" }

func TestNewValidatorChain_RequiresValidators(t *testing.T) {
	chain, err := auth.NewValidatorChain()
	require.Error(t, err)
	assert.Nil(t, chain)
	errutil.AssertErrorCode(t, err, "AUTH_NO_VALIDATORS")

	chain, err = auth.NewValidatorChain(nil, nil)
	require.Error(t, err)
	assert.Nil(t, chain)
	errutil.AssertErrorCode(t, err, "AUTH_NO_VALIDATORS")
}

func TestNewValidatorChain_SkipsNil(t *testing.T) {
	chain, err := auth.NewValidatorChain(nil, &stubValidator{kind: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, chain.Len())
}

func TestValidatorChain_Validate(t *testing.T) {
	ctx := context.Background()
	cred := auth.NewUserNamePassword("admin", "pw")

	t.Run("unsupporting validator contributes nothing", func(t *testing.T) {
		a := &stubValidator{kind: "other", result: auth.Failure("from a")}
		b := &stubValidator{kind: auth.KindUserNamePassword, result: auth.Failure("bad")}
		chain, err := auth.NewValidatorChain(a, b)
		require.NoError(t, err)

		result := chain.Validate(ctx, language.English, cred)
		assert.True(t, result.IsFailure())
		assert.Equal(t, "bad", result.Message())
		assert.Zero(t, a.calls)
		assert.Equal(t, 1, b.calls)
	})

	t.Run("first success wins", func(t *testing.T) {
		a := &stubValidator{kind: auth.KindUserNamePassword, result: auth.Failure("nope")}
		b := &stubValidator{kind: auth.KindUserNamePassword, result: auth.Success}
		c := &stubValidator{kind: auth.KindUserNamePassword, result: auth.Success}
		chain, err := auth.NewValidatorChain(a, b, c)
		require.NoError(t, err)

		result := chain.Validate(ctx, language.English, cred)
		assert.True(t, result.IsSuccess())
		assert.Equal(t, 1, a.calls)
		assert.Equal(t, 1, b.calls)
		assert.Zero(t, c.calls)
	})

	t.Run("failures are joined in order", func(t *testing.T) {
		chain, err := auth.NewValidatorChain(
			&stubValidator{kind: auth.KindUserNamePassword, result: auth.Failure("first")},
			&stubValidator{kind: auth.KindUserNamePassword, result: auth.Failure("second")},
		)
		require.NoError(t, err)

		result := chain.Validate(ctx, language.English, cred)
		assert.Equal(t, "first\nsecond", result.Message())
	})

	t.Run("no supporting validator yields generic failure", func(t *testing.T) {
		chain, err := auth.NewValidatorChain(&stubValidator{kind: auth.KindUserNamePassword, result: auth.Success})
		require.NoError(t, err)

		result := chain.Validate(ctx, language.German, otherCredential{})
		assert.True(t, result.IsFailure())
		assert.Equal(t, i18n.Sprintf(language.German, i18n.CredentialNoneSucceeded), result.Message())
		assert.False(t, chain.Supports(otherCredential{}))
		assert.True(t, chain.Supports(cred))
	})

	t.Run("nil credential panics", func(t *testing.T) {
		chain, err := auth.NewValidatorChain(&stubValidator{kind: auth.KindUserNamePassword})
		require.NoError(t, err)
		assert.Panics(t, func() { chain.Validate(ctx, language.English, nil) })
	})
}

func TestNewUserPasswordValidator_NilDependencies(t *testing.T) {
	f := newFixture(t)

	v, err := auth.NewUserPasswordValidator(nil, f.hashers)
	require.Error(t, err)
	assert.Nil(t, v)
	errutil.AssertErrorCode(t, err, "AUTH_NO_STORE")

	v, err = auth.NewUserPasswordValidator(f.store, nil)
	require.Error(t, err)
	assert.Nil(t, v)
	errutil.AssertErrorCode(t, err, "AUTH_NO_HASHERS")
}

func TestUserPasswordValidator_Validate(t *testing.T) {
	f := newFixture(t)
	v, err := auth.NewUserPasswordValidator(f.store, f.hashers)
	require.NoError(t, err)

	tests := []struct {
		name    string
		cred    auth.Credential
		wantMsg i18n.Message
	}{
		{name: "valid", cred: auth.NewUserNamePassword("admin", "adminpw")},
		{name: "login is case-insensitive", cred: auth.NewUserNamePassword("ADMIN", "adminpw")},
		{name: "wrong password", cred: auth.NewUserNamePassword("admin", "nope"), wantMsg: i18n.CredentialInvalid},
		{name: "unknown user", cred: auth.NewUserNamePassword("ghost", "adminpw"), wantMsg: i18n.CredentialInvalid},
		{name: "missing user name", cred: auth.NewUserNamePassword("", "adminpw"), wantMsg: i18n.CredentialNoUserName},
		{name: "missing password", cred: auth.NewUserNamePassword("admin", ""), wantMsg: i18n.CredentialInvalid},
		{name: "disabled user", cred: auth.NewUserNamePassword("disabled", "disabledpw"), wantMsg: i18n.CredentialUserDisabled},
		{name: "deleted user", cred: auth.NewUserNamePassword("deleted", "deletedpw"), wantMsg: i18n.CredentialUserDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(context.Background(), language.English, tt.cred)
			if tt.wantMsg == "" {
				assert.True(t, result.IsSuccess(), result.String())
				return
			}
			require.True(t, result.IsFailure())
			assert.Equal(t, i18n.Sprintf(language.English, tt.wantMsg), result.Message())
		})
	}
}

func TestUserPasswordValidator_Supports(t *testing.T) {
	f := newFixture(t)
	v, err := auth.NewUserPasswordValidator(f.store, f.hashers)
	require.NoError(t, err)

	assert.True(t, v.Supports(auth.NewUserNamePassword("a", "b")))
	assert.False(t, v.Supports(otherCredential{}))
}

func TestUserPasswordValidator_StoreFailure(t *testing.T) {
	f := newFixture(t)
	store := &mockStore{}
	store.On("FindUserByLogin", mock.Anything, "admin").Return(nil, errors.New("connection reset"))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	v, err := auth.NewUserPasswordValidator(store, f.hashers, auth.WithValidatorLogger(logger))
	require.NoError(t, err)

	result := v.Validate(context.Background(), language.English, auth.NewUserNamePassword("admin", "adminpw"))
	require.True(t, result.IsFailure())
	assert.Equal(t, i18n.Sprintf(language.English, i18n.CredentialStoreFailure), result.Message())
	assert.Contains(t, buf.String(), "connection reset")
	assert.NotContains(t, buf.String(), "adminpw")
	store.AssertExpectations(t)
}

func TestUserPasswordValidator_RejectsUserLockedByRegistry(t *testing.T) {
	f := newFixture(t)
	lockout, err := auth.NewLockout(2, time.Hour)
	require.NoError(t, err)
	r, err := auth.NewSessionRegistry(f.store, f.hashers, auth.WithLockout(lockout))
	require.NoError(t, err)
	v, err := auth.NewUserPasswordValidator(f.store, f.hashers, auth.WithValidatorLockout(lockout))
	require.NoError(t, err)
	chain, err := auth.NewValidatorChain(v)
	require.NoError(t, err)

	ctx := context.Background()
	for range 2 {
		out, err := r.Login(ctx, "s1", "user", "wrong")
		require.NoError(t, err)
		assert.Equal(t, auth.LoginInvalidPassword, out)
	}
	require.True(t, lockout.IsLocked("user-id"))

	result := chain.Validate(ctx, language.English, auth.NewUserNamePassword("user", "userpw"))
	require.True(t, result.IsFailure())
	assert.Equal(t, i18n.Sprintf(language.English, i18n.CredentialUserDisabled), result.Message())

	// Other users are unaffected.
	assert.True(t, chain.Validate(ctx, language.English, auth.NewUserNamePassword("admin", "adminpw")).IsSuccess())
}

func TestUserPasswordValidator_FailuresLockTheUser(t *testing.T) {
	f := newFixture(t)
	lockout, err := auth.NewLockout(3, time.Hour)
	require.NoError(t, err)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	v, err := auth.NewUserPasswordValidator(f.store, f.hashers,
		auth.WithValidatorLockout(lockout),
		auth.WithValidatorLogger(logger),
	)
	require.NoError(t, err)

	ctx := context.Background()
	wrong := auth.NewUserNamePassword("user", "wrong")
	right := auth.NewUserNamePassword("user", "userpw")

	// A success in between resets the count.
	assert.True(t, v.Validate(ctx, language.English, wrong).IsFailure())
	assert.True(t, v.Validate(ctx, language.English, right).IsSuccess())
	assert.Zero(t, lockout.Failures("user-id"))

	for range 5 {
		result := v.Validate(ctx, language.English, wrong)
		assert.Equal(t, i18n.Sprintf(language.English, i18n.CredentialInvalid), result.Message())
	}
	assert.True(t, lockout.IsLocked("user-id"))
	assert.Equal(t, 1, strings.Count(buf.String(), "account locked after repeated failures"))

	result := v.Validate(ctx, language.English, right)
	require.True(t, result.IsFailure())
	assert.Equal(t, i18n.Sprintf(language.English, i18n.CredentialUserDisabled), result.Message())

	// Unknown users never create lockout entries.
	v.Validate(ctx, language.English, auth.NewUserNamePassword("ghost", "x"))
	assert.Zero(t, lockout.Failures("ghost"))
}

func TestValidatorChain_WithUserPasswordValidator(t *testing.T) {
	f := newFixture(t)
	v, err := auth.NewUserPasswordValidator(f.store, f.hashers)
	require.NoError(t, err)
	chain, err := auth.NewValidatorChain(&stubValidator{kind: "other"}, v)
	require.NoError(t, err)

	ctx := context.Background()
	assert.True(t, chain.Validate(ctx, language.English, auth.NewUserNamePassword("user", "userpw")).IsSuccess())

	result := chain.Validate(ctx, language.German, auth.NewUserNamePassword("user", "wrong"))
	assert.Equal(t, "Der Benutzername oder das Passwort ist ungültig.", result.Message())
}
