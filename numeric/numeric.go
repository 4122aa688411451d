// Package numeric provides locale-aware parsing of quantities and prices
// extracted from vendor documents. Cost figures arrive in both decimal-point
// ("1,234.56") and decimal-comma ("1.234,56") conventions, so parsing is
// driven by a locale hint detected from the surrounding document.
package numeric

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Locale identifies the numeric convention of a source document.
type Locale int

const (
	// LocaleUnknown means no convention could be detected; parsing falls
	// back to a per-value heuristic.
	LocaleUnknown Locale = iota
	// LocaleDot uses '.' as the decimal separator and ',' for grouping.
	LocaleDot
	// LocaleComma uses ',' as the decimal separator and '.' for grouping.
	LocaleComma
)

// String returns the string representation of the locale.
func (l Locale) String() string {
	switch l {
	case LocaleDot:
		return "dot"
	case LocaleComma:
		return "comma"
	default:
		return "unknown"
	}
}

// currencyTokens are stripped from price strings before parsing. Codes must
// be stripped before symbols so "NIS" does not leave a dangling "NI".
var currencyTokens = []string{"USD", "NIS", "ILS", "EUR", "GBP", "$", "₪", "€", "£"}

// DetectLocale inspects numeric-looking values from one document and reports
// the dominant decimal convention. A value votes "comma" when its last comma
// is followed by one or two digits and it carries no later dot; the mirror
// rule votes "dot". Ties and empty samples yield LocaleUnknown.
func DetectLocale(samples []string) Locale {
	dotVotes, commaVotes := 0, 0
	for _, s := range samples {
		s = stripCurrency(s)
		if !LooksNumeric(s) {
			continue
		}
		lastDot := strings.LastIndexByte(s, '.')
		lastComma := strings.LastIndexByte(s, ',')
		switch {
		case lastDot == -1 && lastComma == -1:
			continue
		case lastComma > lastDot && commaDecimalTail(s, lastComma):
			commaVotes++
		case lastDot > lastComma && decimalsAfter(s, lastDot) >= 0 && decimalsAfter(s, lastDot) <= 2:
			dotVotes++
		}
	}
	switch {
	case dotVotes > commaVotes:
		return LocaleDot
	case commaVotes > dotVotes:
		return LocaleComma
	default:
		return LocaleUnknown
	}
}

// commaDecimalTail reports whether the comma at idx reads as a decimal
// separator, that is, one or two trailing digits. A grouping comma is always
// followed by exactly three.
func commaDecimalTail(s string, idx int) bool {
	n := decimalsAfter(s, idx)
	return n == 1 || n == 2
}

func decimalsAfter(s string, idx int) int {
	n := 0
	for _, r := range s[idx+1:] {
		if !unicode.IsDigit(r) {
			return -1
		}
		n++
	}
	return n
}

// LooksNumeric reports whether s is plausibly a number once currency tokens,
// separators and surrounding space are ignored.
func LooksNumeric(s string) bool {
	s = stripCurrency(s)
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',' || r == ' ' || r == '-' || r == '+':
		default:
			return false
		}
	}
	return digits > 0
}

func stripCurrency(s string) string {
	s = strings.TrimSpace(s)
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	return strings.TrimSpace(s)
}

// ParsePrice parses a raw price string using the document's locale hint.
// Currency symbols and codes are stripped first. Negative values are
// rejected: a negative "price" in a vendor table is a correction line, not a
// unit cost. The second return value is false when the field is missing or
// malformed; callers must treat that as absent, never as zero.
func ParsePrice(raw string, loc Locale) (decimal.Decimal, bool) {
	s := stripCurrency(raw)
	if s == "" || !LooksNumeric(s) {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, " ", "")

	switch effectiveLocale(s, loc) {
	case LocaleComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// effectiveLocale resolves LocaleUnknown per value: when both separators are
// present the later one is the decimal separator; a lone comma followed by
// one or two digits is treated as a decimal comma.
func effectiveLocale(s string, loc Locale) Locale {
	if loc != LocaleUnknown {
		return loc
	}
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')
	switch {
	case lastComma > lastDot && commaDecimalTail(s, lastComma):
		return LocaleComma
	default:
		return LocaleDot
	}
}

// ParseQuantity parses a raw quantity string into a positive integer.
// Grouping separators and a trailing unit word ("2 pcs") are tolerated;
// fractional values are truncated. Returns false for missing, malformed or
// non-positive input.
func ParseQuantity(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if i := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != ','
	}); i > 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	q := int(d.IntPart())
	if q < 1 {
		return 0, false
	}
	return q, true
}
