// Package otp generates one-time passcodes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var ten = big.NewInt(10)

// Generate returns a string of length random decimal digits. Each digit is
// drawn independently from crypto/rand, so there is no leading-zero bias.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("otp length must be positive, got %d", length)
	}
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate otp digit: %w", err)
		}
		b[i] = '0' + byte(n.Int64())
	}
	return string(b), nil
}
