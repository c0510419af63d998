package importer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// priceNoiseRe matches currency words and incoterm tokens that surround prices.
var priceNoiseRe = regexp.MustCompile(`(?i)\b(?:usd|eur|euro|cfr|cif|cnf|c&f|fob|exw|dap|ddp|fca|per|ton|mt|kg)\b|c&f|[$€]|دولار|يورو|للطن|طن`)

// ParsePrice parses a unit price or balance cell and returns the amount and
// its currency. A comma followed by exactly three digits is a thousands
// separator, any other comma is a decimal separator. When both '.' and ','
// occur, the right-most one is the decimal separator.
func ParsePrice(raw string) (decimal.Decimal, string) {
	s := NormalizeDigits(raw)
	currency := DetectCurrency(s)

	s = priceNoiseRe.ReplaceAllString(s, "")
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	s = strings.Trim(b.String(), ".,")
	if s == "" {
		return decimal.Zero, currency
	}

	s = normalizeSeparators(s)
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, currency
	}
	return v, currency
}

func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 1.250,50
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		// 1,250.50
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		trailing := len(s) - lastComma - 1
		if trailing == 3 || strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		// 1.250.000
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
