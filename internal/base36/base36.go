// Package base36 encodes entry identifiers and generates new random ones.
package base36

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
)

const (
	// IDLength is the length of every generated identifier.
	IDLength = 8

	// randomBytes is the entropy drawn per generated identifier (40 bits).
	randomBytes = 5
)

// Encode returns n in base 36, most significant digit first, using 0-9a-z.
func Encode(n uint64) string {
	return strconv.FormatUint(n, 36)
}

// Decode parses a lowercase base-36 string.
func Decode(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("base36: empty string")
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, fmt.Errorf("base36: invalid character %q in %q", s[i], s)
		}
	}
	n, err := strconv.ParseUint(s, 36, 64)
	if err != nil {
		return 0, fmt.Errorf("base36: decode %q: %w", s, err)
	}
	return n, nil
}

// IsValidFormat reports whether s is 1-8 characters drawn from [0-9a-z].
func IsValidFormat(s string) bool {
	if len(s) == 0 || len(s) > IDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// Generate returns a new random identifier of exactly IDLength characters.
// Uniqueness is not guaranteed; duplicates are reported by validation.
func Generate() (string, error) {
	var buf [randomBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("base36: read random: %w", err)
	}
	var n uint64
	for _, b := range buf {
		n = n<<8 | uint64(b)
	}
	return pad(Encode(n)), nil
}

// pad left-pads s with zeros to IDLength. 36^8 exceeds 2^40 so a 40-bit value
// never needs truncation.
func pad(s string) string {
	if len(s) >= IDLength {
		return s[len(s)-IDLength:]
	}
	return strings.Repeat("0", IDLength-len(s)) + s
}

func isDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'z')
}
