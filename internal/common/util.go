package common

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// MakeRandHexString generates size random bytes and returns them hex encoded,
// so the resulting string is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// value. It returns "" when the value is empty or uses another scheme.
func BearerToken(value string) string {
	if !strings.HasPrefix(value, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(value[len(BearerPrefix):])
}
