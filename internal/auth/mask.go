package auth

import "strings"

const (
	maskVisible = 4
	maskGlyph   = "*"
)

// MaskKey shows the first four characters of key and replaces the rest
// with '*'. The result has the same length in runes as key.
func MaskKey(key string) string {
	runes := []rune(key)
	if len(runes) <= maskVisible {
		return key
	}
	return string(runes[:maskVisible]) + strings.Repeat(maskGlyph, len(runes)-maskVisible)
}
