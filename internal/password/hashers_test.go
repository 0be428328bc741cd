// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/warden/internal/password"
	"github.com/holomush/warden/pkg/errutil"
)

func TestNewHashers(t *testing.T) {
	t.Run("requires default", func(t *testing.T) {
		h, err := password.NewHashers(nil)
		require.Error(t, err)
		assert.Nil(t, h)
		errutil.AssertErrorCode(t, err, "HASH_NO_DEFAULT")
	})

	t.Run("rejects duplicate algorithm", func(t *testing.T) {
		_, err := password.NewHashers(password.NewSHA512Hasher(), password.NewSHA512Hasher())
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "HASH_DUPLICATE_ALGORITHM")
	})

	t.Run("registers default and others", func(t *testing.T) {
		h, err := password.NewHashers(password.NewSHA512Hasher(), password.NewArgon2idHasher(), nil)
		require.NoError(t, err)
		assert.Equal(t, password.AlgorithmSHA512, h.Default().Algorithm())
		assert.Equal(t, []string{"argon2id", "sha512"}, h.Algorithms())
	})
}

func TestNewBuiltinHashers(t *testing.T) {
	h, err := password.NewBuiltinHashers(password.AlgorithmArgon2id)
	require.NoError(t, err)
	assert.Equal(t, password.AlgorithmArgon2id, h.Default().Algorithm())

	_, ok := h.Lookup(password.AlgorithmSHA512)
	assert.True(t, ok)

	_, err = password.NewBuiltinHashers("md5")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "HASH_UNKNOWN_ALGORITHM")
}

func TestHashers_VerifyAcrossAlgorithms(t *testing.T) {
	// Hashes created while sha512 was the default keep verifying after the
	// default moves to argon2id, and vice versa.
	oldDefault, err := password.NewBuiltinHashers(password.AlgorithmSHA512)
	require.NoError(t, err)
	newDefault, err := password.NewBuiltinHashers(password.AlgorithmArgon2id)
	require.NoError(t, err)

	oldHash, err := oldDefault.Hash("s3cret")
	require.NoError(t, err)
	newHash, err := newDefault.Hash("s3cret")
	require.NoError(t, err)

	for _, h := range []*password.Hashers{oldDefault, newDefault} {
		for _, encoded := range []string{oldHash, newHash} {
			ok, err := h.Verify("s3cret", encoded)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.Verify("wrong", encoded)
			require.NoError(t, err)
			assert.False(t, ok)
		}
	}
}

func TestHashers_VerifyUnknownAlgorithm(t *testing.T) {
	h, err := password.NewHashers(password.NewSHA512Hasher())
	require.NoError(t, err)

	_, err = h.Verify("x", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "HASH_UNKNOWN_ALGORITHM")
	errutil.AssertErrorContext(t, err, "algorithm", "argon2id")
}

func TestHashers_NeedsUpgrade(t *testing.T) {
	h, err := password.NewBuiltinHashers(password.AlgorithmSHA512)
	require.NoError(t, err)

	current, err := h.Hash("pw")
	require.NoError(t, err)
	assert.False(t, h.NeedsUpgrade(current))

	assert.True(t, h.NeedsUpgrade(sha512OfPassword), "legacy bare digest")
	assert.True(t, h.NeedsUpgrade("$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"))
	assert.True(t, h.NeedsUpgrade(""))
}

func TestHashers_DummyHash(t *testing.T) {
	h, err := password.NewBuiltinHashers(password.AlgorithmSHA512)
	require.NoError(t, err)

	dummy := h.DummyHash()
	assert.True(t, strings.HasPrefix(dummy, "$sha512$"))
	assert.Equal(t, dummy, h.DummyHash())

	ok, err := h.Verify("password", dummy)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAlgorithmOf(t *testing.T) {
	tests := []struct {
		encoded string
		want    string
	}{
		{encoded: "$sha512$" + sha512OfPassword, want: "sha512"},
		{encoded: sha512OfPassword, want: "sha512"},
		{encoded: "$argon2id$v=19$m=1,t=1,p=1$a$b", want: "argon2id"},
		{encoded: "$nodollar", want: ""},
		{encoded: "plain", want: ""},
		{encoded: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.encoded, func(t *testing.T) {
			assert.Equal(t, tt.want, password.AlgorithmOf(tt.encoded))
		})
	}
}
