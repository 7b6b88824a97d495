// Package normalize holds the identifier canonicalization rules shared by the
// mapping strategies. All functions are pure and idempotent.
package normalize

import (
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// OEM canonicalizes a manufacturer (OEM) number: trim surrounding whitespace,
// lower-case, strip leading zeros.
func OEM(s string) string {
	return TrimLeadingZeros(strings.ToLower(strings.TrimSpace(s)))
}

// EAN canonicalizes an EAN/GTIN: keep digits only, strip leading zeros.
func EAN(s string) string {
	return TrimLeadingZeros(Digits(s))
}

// OrderNumber canonicalizes a distributor order number: trim surrounding
// whitespace, lower-case.
func OrderNumber(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Digits returns only the digit runes of s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsNumeric reports whether s is non-empty and consists of digits only.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// TrimLeadingZeros removes leading '0' runes. An all-zero input becomes the
// empty string.
func TrimLeadingZeros(s string) string {
	return strings.TrimLeft(s, "0")
}

// HexToUUID parses a 32-character hex string (a binary id rendered as hex)
// into a UUID.
func HexToUUID(s string) (uuid.UUID, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.FromBytes(raw)
}

// UUIDToHex renders a UUID as the 32-character lower-case hex form of its
// binary representation.
func UUIDToHex(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}
