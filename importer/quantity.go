package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is the result of parsing a possibly multi-part numeric cell.
type Quantity struct {
	Total    decimal.Decimal
	Parts    []decimal.Decimal
	Currency string
}

// IsZero reports whether nothing numeric was found.
func (q Quantity) IsZero() bool {
	return len(q.Parts) == 0
}

var euroMarkers = []string{"€", "eur", "يورو"}

// DetectCurrency returns EUR when the text carries a euro marker, USD otherwise.
func DetectCurrency(s string) string {
	lower := strings.ToLower(s)
	for _, m := range euroMarkers {
		if strings.Contains(lower, m) {
			return CurrencyEUR
		}
	}
	return CurrencyUSD
}

// ParseComplexQuantity parses cells such as "6+4", "150+100", "25 طن" or
// "€ 1,200". A "+" or a non-leading "-" splits the cell into parts; the
// total is their sum. Unparseable input yields a zero total and no parts.
// Weights and container counts both go through here.
func ParseComplexQuantity(raw string) Quantity {
	s := NormalizeDigits(raw)
	q := Quantity{Total: decimal.Zero, Parts: []decimal.Decimal{}, Currency: DetectCurrency(s)}

	s = strings.ReplaceAll(s, ",", "")
	cleaned := keepNumeric(s)
	if cleaned == "" {
		return q
	}

	for _, part := range splitParts(cleaned) {
		v, err := decimal.NewFromString(part)
		if err != nil {
			continue
		}
		q.Parts = append(q.Parts, v)
		q.Total = q.Total.Add(v)
	}
	return q
}

// keepNumeric drops everything but digits, '.', '+' and '-'.
func keepNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '+' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "+")
}

// splitParts splits on '+' and on '-' that is not a leading sign.
func splitParts(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '+' || (c == '-' && i > start) {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])

	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimRight(p, ".")
		if p != "" && p != "-" {
			out = append(out, p)
		}
	}
	return out
}
