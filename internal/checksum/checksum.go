// Package checksum computes content digests used to detect changed entry files.
package checksum

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Sum returns the hex-encoded BLAKE3-256 digest of data.
func Sum(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Equal reports whether data hashes to sum.
func Equal(data []byte, sum string) bool {
	return sum != "" && Sum(data) == sum
}
