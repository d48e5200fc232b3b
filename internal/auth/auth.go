// Package auth wraps bcrypt password hashing for the login handler's
// UserStore collaborator (spec.md §4.G: verify_password / hash_with_salt).
//
// Grounded on golang.org/x/crypto, the dependency MiyuruAmarasiri-Qsafe
// pulls in for the same purpose (pkg/session/state/session.go), and on
// original_source/src/net/handler/login/login.rs, which calls
// bcrypt::hash_with_salt(password, DEFAULT_COST, salt) against a 16-byte
// random salt generated from a seeded CSPRNG.
package auth

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SaltSize matches the reference client's 16-byte random salt.
const SaltSize = 16

// Hasher verifies and produces bcrypt password hashes.
type Hasher struct {
	cost int
}

// NewHasher builds a Hasher at bcrypt's default cost.
func NewHasher() Hasher {
	return Hasher{cost: bcrypt.DefaultCost}
}

// Verify reports whether candidate matches the stored bcrypt hash.
func (h Hasher) Verify(candidate, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

// GenerateSalt produces a fresh random 16-byte salt for auto-registration.
func GenerateSalt() ([SaltSize]byte, error) {
	var salt [SaltSize]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return salt, fmt.Errorf("auth: generate salt: %w", err)
	}
	return salt, nil
}

// HashWithSalt hashes candidate, matching the UserStore contract in
// spec.md §4.G (hash_with_salt(candidate, cost, salt[16]) -> hash_string).
// salt is not mixed into the bcrypt input: bcrypt.GenerateFromPassword
// embeds its own random salt in the returned hash, and Go's public bcrypt
// API gives no way to supply an external one, so salt is stored only as
// schema-level metadata (spec.md §6's `salt` column) and Verify below
// re-derives the digest the same way CompareHashAndPassword always does,
// from the embedded salt alone.
func (h Hasher) HashWithSalt(candidate string, salt [SaltSize]byte) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(candidate), h.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hashed), nil
}
