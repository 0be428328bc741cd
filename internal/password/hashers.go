// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password

import (
	"sort"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// dummyPlaintext is hashed once with the default algorithm so that lookups of
// unknown users can spend the same verification effort as real ones.
const dummyPlaintext = "warden-dummy-password-never-matches"

// Hashers holds the registered hashing strategies and the default used for
// new hashes. Verification dispatches on the algorithm carried by the hash.
//
// Thread-safety: immutable after construction.
type Hashers struct {
	def       HashCreator
	byName    map[string]HashCreator
	dummy     string
	dummyOnce sync.Once
}

// NewHashers creates a manager with def as the default and others as
// additional verifiers. Duplicate algorithm names are rejected.
func NewHashers(def HashCreator, others ...HashCreator) (*Hashers, error) {
	if def == nil {
		return nil, oops.Code("HASH_NO_DEFAULT").Errorf("default hash creator is required")
	}
	byName := map[string]HashCreator{def.Algorithm(): def}
	for _, h := range others {
		if h == nil {
			continue
		}
		if _, dup := byName[h.Algorithm()]; dup {
			return nil, oops.Code("HASH_DUPLICATE_ALGORITHM").
				With("algorithm", h.Algorithm()).
				Errorf("hash algorithm %q registered twice", h.Algorithm())
		}
		byName[h.Algorithm()] = h
	}
	return &Hashers{def: def, byName: byName}, nil
}

// NewBuiltinHashers registers every built-in algorithm and makes the named
// one the default.
func NewBuiltinHashers(defaultAlgorithm string) (*Hashers, error) {
	builtins := []HashCreator{NewSHA512Hasher(), NewArgon2idHasher()}
	var def HashCreator
	others := make([]HashCreator, 0, len(builtins))
	for _, h := range builtins {
		if h.Algorithm() == defaultAlgorithm {
			def = h
			continue
		}
		others = append(others, h)
	}
	if def == nil {
		return nil, oops.Code("HASH_UNKNOWN_ALGORITHM").
			With("algorithm", defaultAlgorithm).
			Errorf("unknown hash algorithm %q", defaultAlgorithm)
	}
	return NewHashers(def, others...)
}

// Default returns the strategy used for new hashes.
func (h *Hashers) Default() HashCreator {
	return h.def
}

// Algorithms returns the registered algorithm names, sorted.
func (h *Hashers) Algorithms() []string {
	names := make([]string, 0, len(h.byName))
	for name := range h.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the strategy registered for an algorithm name.
func (h *Hashers) Lookup(algorithm string) (HashCreator, bool) {
	c, ok := h.byName[algorithm]
	return c, ok
}

// Hash hashes the password with the default algorithm.
func (h *Hashers) Hash(password string) (string, error) {
	return h.def.Hash(password) //nolint:wrapcheck // creators return oops errors
}

// Verify checks a password against a hash produced by any registered algorithm.
func (h *Hashers) Verify(password, encoded string) (bool, error) {
	algorithm := AlgorithmOf(encoded)
	creator, ok := h.byName[algorithm]
	if !ok {
		return false, oops.Code("HASH_UNKNOWN_ALGORITHM").
			With("algorithm", algorithm).
			Errorf("no hash creator registered for algorithm %q", algorithm)
	}
	return creator.Verify(password, encoded) //nolint:wrapcheck // creators return oops errors
}

// NeedsUpgrade returns true if the hash was not produced by the default algorithm.
func (h *Hashers) NeedsUpgrade(encoded string) bool {
	return AlgorithmOf(encoded) != h.def.Algorithm() || !strings.HasPrefix(encoded, "$")
}

// DummyHash returns a hash of a fixed plaintext under the default algorithm.
// It is computed on first use.
func (h *Hashers) DummyHash() string {
	h.dummyOnce.Do(func() {
		// Hashing a non-empty constant cannot fail for the built-in creators;
		// on failure the dummy stays empty and verification reports an error,
		// which callers already treat as a mismatch.
		h.dummy, _ = h.def.Hash(dummyPlaintext) //nolint:errcheck // see above
	})
	return h.dummy
}

// AlgorithmOf extracts the algorithm name from an encoded hash. A bare
// 128-digit hex string is reported as sha512. Unknown formats yield "".
func AlgorithmOf(encoded string) string {
	if rest, ok := strings.CutPrefix(encoded, "$"); ok {
		name, _, found := strings.Cut(rest, "$")
		if found {
			return name
		}
		return ""
	}
	if isLegacySHA512(encoded) {
		return AlgorithmSHA512
	}
	return ""
}
