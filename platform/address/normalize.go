// Package address provides Dutch address normalization utilities.
// This is part of the platform layer and contains no business logic.
package address

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalid is returned when an address cannot be normalized because the
// postcode or house number is missing.
var ErrInvalid = errors.New("address: postcode and house number are required")

// Normalized is a canonical Dutch address key. Postcode is uppercase without
// spaces, HouseNumber contains digits only with leading zeros stripped, and
// HouseLetter is a single uppercase letter or empty.
type Normalized struct {
	Postcode    string `json:"postcode"`
	HouseNumber string `json:"houseNumber"`
	HouseLetter string `json:"houseLetter,omitempty"`
}

// Normalize canonicalizes raw postcode, house number and house letter input.
// House number ranges like "5-7" collapse to the first value. The function is
// deterministic and idempotent: Normalize of its own output is a no-op.
func Normalize(postcode, houseNumber, houseLetter string) (Normalized, error) {
	pc := normalizePostcode(postcode)
	nr := normalizeHouseNumber(houseNumber)
	if pc == "" || nr == "" {
		return Normalized{}, ErrInvalid
	}

	return Normalized{
		Postcode:    pc,
		HouseNumber: nr,
		HouseLetter: normalizeHouseLetter(houseLetter),
	}, nil
}

// SearchTerm renders the address as a "postcode number [letter]" search string
// for registry address-search endpoints.
func (n Normalized) SearchTerm() string {
	if n.HouseLetter != "" {
		return n.Postcode + " " + n.HouseNumber + " " + n.HouseLetter
	}
	return n.Postcode + " " + n.HouseNumber
}

// HouseNumberInt returns the house number as an integer. The second return
// value is false when the number does not parse, which can only happen for a
// zero-value Normalized.
func (n Normalized) HouseNumberInt() (int, bool) {
	return parseInt(n.HouseNumber)
}

func normalizePostcode(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func normalizeHouseNumber(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	// Ranges like "5-7" collapse to the first value.
	if idx := strings.IndexByte(trimmed, '-'); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	var b strings.Builder
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	stripped := strings.TrimLeft(digits, "0")
	if stripped == "" {
		return "0"
	}
	return stripped
}

func normalizeHouseLetter(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	r := []rune(strings.ToUpper(trimmed))[0]
	if !unicode.IsLetter(r) {
		return ""
	}
	return string(r)
}

// HouseNumberFromText extracts the house number from a free-text address line
// such as "Pippelingstraat 31" or "Dorpsstraat 5a". It returns the last
// numeric token, with any trailing letter suffix stripped. This is an explicit
// parser; callers branch on the ok result instead of recovering from errors.
func HouseNumberFromText(text string) (int, bool) {
	fields := strings.Fields(text)
	for i := len(fields) - 1; i >= 0; i-- {
		token := strings.TrimFunc(fields[i], func(r rune) bool {
			return !unicode.IsDigit(r) && !unicode.IsLetter(r)
		})
		token = strings.TrimRightFunc(token, unicode.IsLetter)
		if n, ok := parseInt(token); ok {
			return n, true
		}
	}
	return 0, false
}

// SameHouseNumber reports whether two house number strings denote the same
// number, using parsed-integer equality rather than substring containment, so
// "31" never matches "131".
func SameHouseNumber(a, b string) bool {
	na, okA := parseInt(normalizeHouseNumber(a))
	nb, okB := parseInt(normalizeHouseNumber(b))
	return okA && okB && na == nb
}

func parseInt(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}
