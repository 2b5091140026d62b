// Package secret provides one-way hashing for short-lived credentials.
package secret

import "golang.org/x/crypto/bcrypt"

const cost = 10

// Hash returns a salted bcrypt hash of plaintext. The salt is randomized per
// call, so hashing the same input twice yields different strings.
func Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plaintext matches hash. Malformed or foreign-format
// hashes verify as false rather than erroring.
func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
