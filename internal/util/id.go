package util

import (
	"crypto/rand"
	"encoding/hex"
)

func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}

// ShortID returns the first 8 characters of an id, used as a display
// fallback when a user has no display name.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
