package auth

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// QuickHash returns a BLAKE2b-256 digest of input for cache keys.
// Plaintext tokens never appear in cache key names.
func QuickHash(input string) string {
	sum := blake2b.Sum256([]byte(input))
	return hex.EncodeToString(sum[:16])
}
