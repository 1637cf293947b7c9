package extract

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a monetary or quantity string as it commonly appears on
// invoices: currency symbols or codes, thousands separators, decimal commas,
// and accounting-style parentheses for negative amounts.
//
//	"$1,234.56"  → 1234.56
//	"(123.45)"   → -123.45
//	"EUR 1.234,56" → 1234.56
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

	// Drop everything that is not a digit, separator, or sign: currency
	// symbols, currency codes, stray spaces.
	var b strings.Builder
	for _, r := range cleaned {
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned = b.String()
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, fmt.Errorf("no digits in amount %q", s)
	}

	cleaned = normalizeSeparators(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators rewrites a digit string so '.' is the decimal
// separator. When both ',' and '.' appear, the one further right wins as the
// decimal mark; a lone comma followed by exactly two digits is read as a
// decimal comma, any other comma as a thousands separator.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 == 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		// "1.234.567": European thousands dots, no decimal part.
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}
