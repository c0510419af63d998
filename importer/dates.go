package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTargetYear is the year month placeholders ("شهر 11") resolve into.
const DefaultTargetYear = 2026

// placeholderDay is the day of month used for month-only placeholders.
const placeholderDay = 15

const dateLayout = "2006-01-02"

var (
	isoDateRe   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[ T].*)?$`)
	slashDateRe = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
	dmyDateRe   = regexp.MustCompile(`^(\d{1,2})[/.](\d{1,2})[/.](\d{4})$`)
	monthWordRe = regexp.MustCompile(`(?i)(?:الشهر|شهر|month|mon\.?)\s*(\d{1,2})(?:\s*[-/]\s*(\d{1,2}))?`)
	monthOnlyRe = regexp.MustCompile(`^(\d{1,2})\s*-\s*(\d{1,2})$`)
)

// monthNames covers the Levantine and Egyptian Arabic month names that show
// up instead of a number. Longer names first so "كانون الثاني" wins over "كانون".
var monthNames = []struct {
	name  string
	month time.Month
}{
	{"كانون الثاني", time.January},
	{"كانون الاول", time.December},
	{"كانون الأول", time.December},
	{"تشرين الثاني", time.November},
	{"تشرين الاول", time.October},
	{"تشرين الأول", time.October},
	{"يناير", time.January},
	{"شباط", time.February},
	{"فبراير", time.February},
	{"آذار", time.March},
	{"اذار", time.March},
	{"مارس", time.March},
	{"نيسان", time.April},
	{"أبريل", time.April},
	{"ابريل", time.April},
	{"أيار", time.May},
	{"ايار", time.May},
	{"مايو", time.May},
	{"حزيران", time.June},
	{"يونيو", time.June},
	{"تموز", time.July},
	{"يوليو", time.July},
	{"آب", time.August},
	{"اب", time.August},
	{"أغسطس", time.August},
	{"اغسطس", time.August},
	{"أيلول", time.September},
	{"ايلول", time.September},
	{"سبتمبر", time.September},
	{"أكتوبر", time.October},
	{"اكتوبر", time.October},
	{"نوفمبر", time.November},
	{"ديسمبر", time.December},
}

// ParseDate parses an arrival date cell. Month placeholders resolve to the
// 15th of the month in targetYear. Anything unparseable yields nil.
func ParseDate(raw string, targetYear int) *time.Time {
	s := strings.TrimSpace(NormalizeDigits(raw))
	if s == "" {
		return nil
	}
	if targetYear <= 0 {
		targetYear = DefaultTargetYear
	}

	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return buildDate(m[1], m[2], m[3])
	}
	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		return buildDate(m[1], m[2], m[3])
	}
	if m := dmyDateRe.FindStringSubmatch(s); m != nil {
		return buildDate(m[3], m[2], m[1])
	}
	if m := monthWordRe.FindStringSubmatch(s); m != nil {
		return monthPlaceholder(m[1], targetYear)
	}
	if m := monthOnlyRe.FindStringSubmatch(s); m != nil {
		return monthPlaceholder(m[1], targetYear)
	}

	name := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(s, "الشهر"), "شهر"))
	for _, mn := range monthNames {
		if name == mn.name {
			t := time.Date(targetYear, mn.month, placeholderDay, 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	return nil
}

// FormatDate renders a parsed date as YYYY-MM-DD, or "" for no date.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func buildDate(year, month, day string) *time.Time {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return nil
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalises overflow (Feb 30 -> Mar 2); reject those.
	if t.Day() != d || int(t.Month()) != m {
		return nil
	}
	return &t
}

func monthPlaceholder(month string, targetYear int) *time.Time {
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return nil
	}
	t := time.Date(targetYear, time.Month(m), placeholderDay, 0, 0, 0, 0, time.UTC)
	return &t
}
