package mapping

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDateFormats is the fallback list tried in order when coercing
// text to a revenue date. Callers can supply their own list when a
// source is known to use an ambiguous layout (US month-first, say).
var DefaultDateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02.01.2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseAmount coerces source text to a two-digit decimal amount.
// It tolerates leading currency symbols, surrounding whitespace,
// accounting-style parentheses for negatives, and both separator
// locales ("1,234.56" and "1.234,56").
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	cleaned = strings.TrimLeft(cleaned, "$€£¥ \t")
	cleaned = strings.TrimSpace(cleaned)
	if strings.HasPrefix(cleaned, "-") {
		negative = !negative
		cleaned = cleaned[1:]
	}

	cleaned = normalizeSeparators(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d.Round(2), nil
}

// normalizeSeparators rewrites locale-specific grouping into the plain
// form decimal.NewFromString accepts. When both separators appear, the
// rightmost one is the decimal point. A lone comma followed by one or
// two digits is a decimal comma; any other lone separator pattern is
// grouping and is stripped.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		digitsAfter := len(s) - lastComma - 1
		if strings.Count(s, ",") == 1 && digitsAfter >= 1 && digitsAfter <= 2 {
			// 12,5 or 12,50
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234 or 1,234,567
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			// 1.234.567
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// ParseDate coerces source text to a date using a format fallback list
func ParseDate(s string, formats []string) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(formats) == 0 {
		formats = DefaultDateFormats
	}

	for _, layout := range formats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
