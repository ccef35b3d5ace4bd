package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// ShortHash returns a 12-character SHA256 prefix of the input, used to
// correlate log lines without writing raw identifiers. Empty input yields
// an empty string.
func ShortHash(input string) string {
	if input == "" {
		return ""
	}
	return SHA256Hex(input)[:12]
}
