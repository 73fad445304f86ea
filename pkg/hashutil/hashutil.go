// Package hashutil provides deterministic content hashing for evidence files
// and capsule payloads. Hashing is pure: identical bytes always yield the
// identical 64-character lowercase hex digest. Empty input is valid and
// hashes to the SHA-256 of zero bytes.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Sum returns the lowercase hex SHA-256 digest of b.
func Sum(b []byte) string {
	digest := sha256.Sum256(b)
	return hex.EncodeToString(digest[:])
}

// SumString returns the lowercase hex SHA-256 digest of the UTF-8 bytes of s.
func SumString(s string) string {
	return Sum([]byte(s))
}

// Truncate shortens a hash for display as "prefix...suffix". It is a display
// transform only and must never be used for equality checks or storage.
// Hashes shorter than prefixLen+suffixLen are returned unchanged.
func Truncate(hash string, prefixLen, suffixLen int) string {
	if prefixLen <= 0 {
		prefixLen = 6
	}
	if suffixLen <= 0 {
		suffixLen = 6
	}
	if len(hash) <= prefixLen+suffixLen {
		return hash
	}
	return fmt.Sprintf("%s...%s", hash[:prefixLen], hash[len(hash)-suffixLen:])
}
