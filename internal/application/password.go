package application

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// saltLength is the number of random bytes in a password salt. Hex encoding
// doubles this on the wire, so stored salts are 64-character strings.
const saltLength = 32

// ErrMissingCredential indicates the stored hash or salt is absent or empty.
// This is a data integrity failure, not an authentication failure; a wrong
// password never produces an error.
var ErrMissingCredential = errors.New("application: stored password credential is missing")

// HashPassword derives a salted one-way digest for a plaintext password.
// It generates a fresh random salt, computes SHA-256 over salt concatenated
// with the password, and returns both as hex strings. The plaintext is never
// retained.
func HashPassword(password string) (hash, salt string, err error) {
	saltBytes := make([]byte, saltLength)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", "", err
	}
	salt = hex.EncodeToString(saltBytes)

	digest := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(digest[:]), salt, nil
}

// VerifyPassword recomputes the salted digest for a candidate password and
// compares it against the stored hash in constant time. The comparison
// accumulates over the full digest length so runtime does not depend on
// where the first differing byte occurs.
func VerifyPassword(candidate, storedHash, storedSalt string) (bool, error) {
	if storedHash == "" || storedSalt == "" {
		return false, ErrMissingCredential
	}

	digest := sha256.Sum256([]byte(storedSalt + candidate))
	computed := hex.EncodeToString(digest[:])

	if len(computed) != len(storedHash) {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1, nil
}
