// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Algorithm names carried in encoded hashes.
const (
	AlgorithmSHA512   = "sha512"
	AlgorithmArgon2id = "argon2id"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("HASH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// HashCreator is a named password hashing strategy.
type HashCreator interface {
	// Algorithm returns the name stored as the first segment of encoded hashes.
	Algorithm() string

	// Hash encodes the password, including the algorithm name.
	Hash(password string) (string, error)

	// Verify checks if the password matches the encoded hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, encoded string) (bool, error)
}

// SHA512Hasher hashes the UTF-8 bytes of a password with SHA-512 and hex-encodes
// the digest. The output is deterministic: $sha512$<hex>.
type SHA512Hasher struct{}

// NewSHA512Hasher creates a new SHA512Hasher.
func NewSHA512Hasher() *SHA512Hasher {
	return &SHA512Hasher{}
}

// Algorithm implements HashCreator.
func (h *SHA512Hasher) Algorithm() string { return AlgorithmSHA512 }

// Hash implements HashCreator.
func (h *SHA512Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	return "$" + AlgorithmSHA512 + "$" + sha512Hex(password), nil
}

// Verify implements HashCreator. Bare 128-digit hex digests without an
// algorithm prefix are accepted as legacy SHA-512 hashes.
func (h *SHA512Hasher) Verify(password, encoded string) (bool, error) {
	digest, found := strings.CutPrefix(encoded, "$"+AlgorithmSHA512+"$")
	if !found && !isLegacySHA512(encoded) {
		return false, oops.Code("HASH_INVALID").Errorf("invalid sha512 hash format")
	}
	if len(digest) != sha512.Size*2 {
		return false, oops.Code("HASH_INVALID").
			With("length", len(digest)).
			Errorf("invalid sha512 digest length")
	}
	computed := sha512Hex(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(digest))) == 1, nil
}

func sha512Hex(password string) string {
	sum := sha512.Sum512([]byte(password))
	return hex.EncodeToString(sum[:])
}

func isLegacySHA512(encoded string) bool {
	if len(encoded) != sha512.Size*2 {
		return false
	}
	_, err := hex.DecodeString(encoded)
	return err == nil
}

// Argon2idHasher implements HashCreator using argon2id with a random salt.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Algorithm implements HashCreator.
func (h *Argon2idHasher) Algorithm() string { return AlgorithmArgon2id }

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("HASH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// Verify checks if the password matches the hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, oops.Code("HASH_INVALID").Errorf("invalid hash format")
	}

	if parts[1] != AlgorithmArgon2id {
		return false, oops.Code("HASH_INVALID").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("HASH_INVALID").Wrap(err)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, oops.Code("HASH_INVALID").Wrap(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("HASH_INVALID").Wrap(err)
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("HASH_INVALID").Wrap(err)
	}

	if threads == 0 || threads > 255 {
		return false, oops.Code("HASH_INVALID").Errorf("threads value %d out of range", threads)
	}

	keyLen := len(expectedHash)
	if keyLen <= 0 || keyLen > 1<<30 {
		return false, oops.Code("HASH_INVALID").Errorf("invalid hash key length: %d", keyLen)
	}

	computedHash := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen)) //nolint:gosec // bounds checked above

	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1, nil
}
