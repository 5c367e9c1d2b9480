// Package auth provides API key material and request identity helpers.
package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// Key format: sk-{32 base-36 chars}
// Example: sk-4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
const (
	KeyPrefix    = "sk-"
	KeySecretLen = 32
	KeyLen       = len(KeyPrefix) + KeySecretLen
)

const keyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var keyFormatRegex = regexp.MustCompile(`^sk-[0-9a-z]{32}$`)

// GenerateAPIKey returns a new opaque bearer token.
func GenerateAPIKey() (string, error) {
	max := big.NewInt(int64(len(keyAlphabet)))

	var b strings.Builder
	b.Grow(KeyLen)
	b.WriteString(KeyPrefix)

	for i := 0; i < KeySecretLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate key: %w", err)
		}
		b.WriteByte(keyAlphabet[n.Int64()])
	}

	return b.String(), nil
}

// ValidateKeyFormat reports whether key has the shape of a generated key.
// Validation against the store does not require this shape.
func ValidateKeyFormat(key string) bool {
	return keyFormatRegex.MatchString(key)
}
