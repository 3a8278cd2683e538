package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// Prefix returns the first n hex characters of SHA256(input), or the full
// hash when n exceeds its length.
func Prefix(input string, n int) string {
	full := SHA256Hex(input)
	if n > len(full) || n <= 0 {
		return full
	}
	return full[:n]
}

// IPForLog returns a short irreversible tag for a client IP so requests can
// be correlated in logs without storing the address.
func IPForLog(ip string) string {
	return Prefix(ip, 12)
}

// QueryKey normalizes a free-text query (case and surrounding whitespace)
// and hashes it into a fixed-length key suitable for cache keys.
func QueryKey(q string) string {
	return Prefix(strings.ToLower(strings.Join(strings.Fields(q), " ")), 16)
}
