package ids

import (
	"crypto/sha256"
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

// DefaultLength is the standard length for generated IDs.
const DefaultLength = 8

// Generate creates a deterministic, lowercase base32 ID derived from input.
func Generate(input string, length int) string {
	hash := sha256.Sum256([]byte(input))
	encoded := base32.StdEncoding.EncodeToString(hash[:])
	if length <= 0 {
		return ""
	}
	if length > len(encoded) {
		length = len(encoded)
	}
	return strings.ToLower(encoded[:length])
}

// New returns a random ID of the given length. The input to the hash is a
// fresh random UUID, so two calls within the same instant still differ.
func New(length int) string {
	return Generate(uuid.NewString(), length)
}

// NewUnique returns a random ID that is not already present in taken.
func NewUnique(length int, taken func(id string) bool) string {
	for {
		id := New(length)
		if taken == nil || !taken(id) {
			return id
		}
	}
}
