package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// isArabicMark matches harakat, the superscript alef and tatweel, none of
// which carry meaning for name matching.
func isArabicMark(r rune) bool {
	return (r >= 0x064B && r <= 0x0652) || r == 0x0670 || r == 0x0640
}

// foldArabic unifies letter variants that the export uses interchangeably.
func foldArabic(r rune) rune {
	switch r {
	case 'أ', 'إ', 'آ', 'ٱ':
		return 'ا'
	case 'ى':
		return 'ي'
	case 'ة':
		return 'ه'
	case 'ؤ':
		return 'و'
	case 'ئ':
		return 'ي'
	}
	switch {
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	}
	return unicode.ToLower(r)
}

// NormalizeName returns the comparison key for master-data names and
// section markers: NFKC, Arabic letter folding, lowercase, punctuation
// turned into spaces, whitespace collapsed.
func NormalizeName(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	t := transform.Chain(norm.NFKC, runes.Remove(runes.Predicate(isArabicMark)), runes.Map(foldArabic))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = strings.ToLower(s)
	}

	out = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, out)
	return strings.Join(strings.Fields(out), " ")
}
