package parse

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount normalizes a Romanian-locale monetary token into a decimal.
// Accepted shapes: space or dot as thousands grouping, comma as the decimal
// separator ("1 234,56", "1.234,56", "150,00", "121"). Tokens using a dot
// with one or two trailing digits and no comma are treated as dot-decimal
// ("23.95"), which shows up on bilingual POS receipts. Returns false for
// anything that does not survive normalization; callers skip the field.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	switch {
	case strings.Contains(s, ","):
		// comma-decimal: any dots are grouping
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
		if strings.Contains(s, ",") {
			return decimal.Decimal{}, false
		}
	case strings.Count(s, ".") == 1:
		// single dot: decimal point when followed by cents, grouping otherwise
		frac := s[strings.IndexByte(s, '.')+1:]
		if len(frac) == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	default:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseRate parses a VAT percentage token ("19", "9,5").
func ParseRate(s string) (decimal.Decimal, bool) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
