// Package checksum provides content digests for advisory staleness checks.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether expected is empty (check disabled) or equal to
// the digest of data.
func Matches(expected string, data []byte) bool {
	return expected == "" || expected == Sum(data)
}
