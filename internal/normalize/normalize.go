// Package normalize maps raw field values from source files to canonical
// types. Every function is total: invalid input yields a defined fallback,
// never an error.
package normalize

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"orderpulse/internal/model"
)

// CleanString trims whitespace and applies NFC normalization so visually
// identical names and regions compare and group identically.
// Returns "" when the input is absent or trims to nothing.
func CleanString(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}

// MobileNumber reduces a raw phone value to the canonical join key.
//
// All non-digit characters are stripped. If 10 or more digits remain, the
// last 10 are kept (a leading country code is dropped). If 1-9 digits
// remain they are returned as-is: sub-10-digit numbers pass through
// unnormalized, and downstream joins must tolerate them. Zero digits yields
// "".
func MobileNumber(v string) string {
	// Digits can be multibyte (e.g. Devanagari), so the last-10 cut
	// slices runes, not bytes.
	digits := make([]rune, 0, len(v))
	for _, r := range v {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) >= 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}

// dateLayouts is the fixed, ordered list of accepted timestamp layouts:
// full datetime variants first, then date-only variants, then compact
// numeric, then ISO. Order matters only for strings that could match more
// than one layout. Go's parser accepts an optional fractional second after
// the seconds field, so the list needs no explicit fractional variants.
var dateLayouts = []string{
	model.DateTimeLayout,
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"20060102",
	"2006-01-02T15:04:05",
}

// DateTime parses a raw timestamp against the fixed layout list and returns
// the first successful parse. ok is false when no layout matches or the
// input is blank.
func DateTime(v string) (t time.Time, ok bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// SafeInt converts v to an integer, returning def on any failure.
// Decimal strings are truncated toward zero ("3.7" -> 3), matching the
// numeric coercion the order feed historically received.
func SafeInt(v string, def int) int {
	s := strings.TrimSpace(v)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return int(f)
}

// SafeFloat converts v to a float, returning def on any failure.
func SafeFloat(v string, def float64) float64 {
	s := strings.TrimSpace(v)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
