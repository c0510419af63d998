package importer

import (
	"strconv"
	"strings"
	"unicode"
)

// placeholderTracking lists cell values that mean "no tracking yet".
var placeholderTracking = map[string]bool{
	"":          true,
	"-":         true,
	"--":        true,
	"—":         true,
	"0":         true,
	"x":         true,
	"n/a":       true,
	"na":        true,
	"none":      true,
	"tba":       true,
	"tbd":       true,
	"pending":   true,
	"لا يوجد":   true,
	"لايوجد":    true,
	"بدون":      true,
	"غير متوفر": true,
	"قيد الحجز": true,
}

// IsPlaceholderTracking reports whether the tracking cell carries no reference.
func IsPlaceholderTracking(s string) bool {
	return placeholderTracking[strings.ToLower(strings.TrimSpace(s))]
}

// LooksLikeTracking reports whether a cell has the shape of a tracking
// reference: a URL, an MSC "MEDU" container/BL number, or an uppercase
// alphanumeric code of eight or more characters containing a digit.
func LooksLikeTracking(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || IsPlaceholderTracking(s) {
		return false
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "http") || strings.Contains(lower, "www.") {
		return true
	}
	if strings.Contains(strings.ToUpper(s), "MEDU") {
		return true
	}

	compact := strings.NewReplacer(" ", "", "-", "", "/", "").Replace(s)
	if len(compact) < 8 {
		return false
	}
	hasDigit := false
	for _, r := range compact {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return hasDigit
}

// ClassifyCarrierTracking decides which of the two candidate cells is the
// shipping company and which is the tracking reference. The export puts the
// carrier first, but some sheets have the columns swapped; the swap is
// detected purely by token shape.
func ClassifyCarrierTracking(first, second string) (carrier, tracking string) {
	first, second = strings.TrimSpace(first), strings.TrimSpace(second)
	if LooksLikeTracking(first) && !LooksLikeTracking(second) {
		return second, first
	}
	return first, second
}

// ParseFreeTime extracts the number of free days from cells like "14 يوم" or "21 days".
func ParseFreeTime(raw string) int {
	s := NormalizeDigits(raw)
	start := strings.IndexFunc(s, unicode.IsDigit)
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0
	}
	return n
}

// BaseContractNumber returns the leading numeric prefix of an SN ("390" for
// "390-A"). An SN without a numeric prefix is its own base number.
func BaseContractNumber(sn string) string {
	s := strings.TrimSpace(NormalizeDigits(sn))
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return s
	}
	return s[:end]
}
