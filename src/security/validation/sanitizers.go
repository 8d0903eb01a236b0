package validation

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictHTMLPolicy = bluemonday.StrictPolicy()

// SanitizeCellText cleans a spreadsheet-sourced string before it is stored or
// echoed back to the dashboard: unprintables are dropped, any HTML is
// stripped, and entities the sanitizer escaped are restored so plain text like
// "M&M Finance" survives intact.
func SanitizeCellText(s string) string {
	cleaned := StripUnprintable(s)
	cleaned = strictHTMLPolicy.Sanitize(cleaned)
	cleaned = html.UnescapeString(cleaned)
	return strings.TrimSpace(cleaned)
}

// SanitizeForFormulaInjection prepends a single quote if the string starts with a formula character.
// This makes most spreadsheet software treat it as text.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 0 {
		firstChar := rune(trimmed[0])
		if firstChar == '=' || firstChar == '+' || firstChar == '-' || firstChar == '@' || firstChar == '\t' || firstChar == '\r' {
			return "'" + s
		}
	}
	return s
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1 // Drop the rune
	}, s)
}
