// file: internal/isbn/isbn.go
// version: 1.0.0
// guid: f6a4849a-1745-431b-93cd-8212faa75b3e

package isbn

import (
	"fmt"
	"strings"
)

// Normalize removes hyphens and spaces from an ISBN string. No checksum or
// digit-count validation is performed; any string is accepted and cleaned.
func Normalize(s string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(s)
}

// ToISBN10 converts a 978-prefixed ISBN-13 to ISBN-10 format, recomputing the
// check digit. An input that is already an ISBN-10 is returned unchanged.
func ToISBN10(s string) (string, error) {
	clean := Normalize(s)
	if len(clean) == 10 {
		return clean, nil
	}
	if len(clean) != 13 {
		return "", fmt.Errorf("invalid ISBN length %d for %q", len(clean), s)
	}
	if !strings.HasPrefix(clean, "978") {
		return "", fmt.Errorf("ISBN-13 %q has no ISBN-10 equivalent", clean)
	}

	core := clean[3:12]
	sum := 0
	for i, r := range core {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid character %q in ISBN %q", r, s)
		}
		sum += (10 - i) * int(r-'0')
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return core + "X", nil
	}
	return core + fmt.Sprintf("%d", check), nil
}
