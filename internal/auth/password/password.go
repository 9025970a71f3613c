// Package password wraps bcrypt so the hashing policy lives in one place.
package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Hash returns the bcrypt hash of a plaintext password. bcrypt salts
// internally, so two hashes of the same password differ.
func Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether plaintext matches the stored hash.
func Compare(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
