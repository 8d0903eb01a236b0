package utils

import (
	"regexp"
	"time"
)

// SheetDateFormat is the date layout used across both sheets.
const SheetDateFormat = "02/01/2006"

// sheetDatePattern gates repayment dates: exactly D/M/YYYY with slashes.
var sheetDatePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

// ParseSheetDate parses a DD/MM/YYYY date string. The ok result is false when
// the string does not match the pattern or names an impossible date; callers
// decide whether that is a skip, a fallback, or nothing at all.
func ParseSheetDate(s string) (time.Time, bool) {
	if !sheetDatePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse("2/1/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatMonthYear renders a date as "Jan 2006", the month bucket label.
func FormatMonthYear(t time.Time) string {
	return t.Format("Jan 2006")
}

// MonthYearOf parses a sheet date and returns its month label. On parse
// failure the raw string comes back unmodified (degraded, not fatal).
func MonthYearOf(dateStr string) string {
	t, ok := ParseSheetDate(dateStr)
	if !ok {
		return dateStr
	}
	return FormatMonthYear(t)
}

// SameMonth reports whether two times fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
