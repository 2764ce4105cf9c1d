package utils

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// DateUnparsed is returned by NormalizeDate for values no layout accepts.
// It never equals a real ISO date, so the DOB rule treats it as a mismatch.
const DateUnparsed = "UNPARSED"

const isoDate = "2006-01-02"

// dateLayouts are tried in order. Numeric layouts put the day first, matching
// Indian documents, so "03/04/1995" is 3 April. Two-digit years follow
// time.Parse: 69-99 map to 19xx, 00-68 to 20xx.
var dateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2 Jan, 2006",
	"2 January, 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"02012006",
	"2-1-06",
	"2/1/06",
	"2.1.06",
}

var (
	spaceRe     = regexp.MustCompile(`\s+`)
	nonDigitRe  = regexp.MustCompile(`\D`)
	dateTokenRe = regexp.MustCompile(`\d{1,4}[/\-.]\d{1,2}[/\-.]\d{1,4}`)
	ordinalRe   = regexp.MustCompile(`(?i)(\d)(?:st|nd|rd|th)\b`)
	panRe       = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	aadhaarRe   = regexp.MustCompile(`^[0-9]{12}$`)
)

// NormalizeText trims, collapses internal whitespace and upper-cases s so
// names and addresses compare case-insensitively.
func NormalizeText(s string) string {
	return strings.ToUpper(CollapseSpaces(s))
}

// CollapseSpaces trims s and replaces whitespace runs with a single space.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// NormalizePhone keeps the digits of s. When more digits than nationalLength
// remain, the leading country calling code or trunk prefix is dropped.
func NormalizePhone(s string, nationalLength int) string {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if nationalLength > 0 && len(digits) > nationalLength {
		return digits[len(digits)-nationalLength:]
	}
	return digits
}

// NormalizeID strips all whitespace from a PAN or Aadhaar value; case and
// every other character are preserved for format validation.
func NormalizeID(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeDate returns s as an ISO calendar date (YYYY-MM-DD), or
// DateUnparsed when it cannot be read. Empty input yields "".
func NormalizeDate(s string) string {
	s = CollapseSpaces(s)
	if s == "" {
		return ""
	}
	// "15th August 1995"
	s = ordinalRe.ReplaceAllString(s, "$1")

	if t, ok := parseDayFirst(s); ok {
		return t.Format(isoDate)
	}

	// OCR values often carry labels such as "DOB: 15/08/1995".
	if token := dateTokenRe.FindString(s); token != "" && token != s {
		if t, ok := parseDayFirst(token); ok {
			return t.Format(isoDate)
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return DateUnparsed
	}
	return t.Format(isoDate)
}

func parseDayFirst(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsValidPAN reports whether s is 5 upper-case letters, 4 digits and 1
// upper-case letter. s must already be normalized with NormalizeID.
func IsValidPAN(s string) bool {
	return panRe.MatchString(s)
}

// IsValidAadhaar reports whether s is exactly 12 decimal digits.
func IsValidAadhaar(s string) bool {
	return aadhaarRe.MatchString(s)
}
