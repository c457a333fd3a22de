package helpers

import (
	"strings"
	"time"
)

const (
	// LongDateLayout renders dates as "January 2, 2006"
	LongDateLayout = "January 2, 2006"
	// SlashDateLayout renders dates as DD/MM/YYYY
	SlashDateLayout = "02/01/2006"
)

var birthDateLayouts = []string{"02-01-2006", "2-1-2006", "2006-01-02"}

var letterDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02-01-2006",
	"02/01/2006",
	"2-1-2006",
	"2/1/2006",
	LongDateLayout,
	"Jan 2, 2006",
	"2 January 2006",
}

func parseWith(layouts []string, s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBirthDate accepts DD-MM-YYYY as well as ISO YYYY-MM-DD
func ParseBirthDate(s string) (time.Time, bool) {
	return parseWith(birthDateLayouts, s)
}

// ParseLetterDate accepts the date spellings operators type into letter sheets
func ParseLetterDate(s string) (time.Time, bool) {
	return parseWith(letterDateLayouts, s)
}

// FormatLetterDate renders a parseable date as "January 2, 2006" and returns
// anything else unchanged.
func FormatLetterDate(raw string) string {
	if t, ok := ParseLetterDate(raw); ok {
		return t.Format(LongDateLayout)
	}
	return strings.TrimSpace(raw)
}

// FormatSlashDate renders t as DD/MM/YYYY
func FormatSlashDate(t time.Time) string {
	return t.Format(SlashDateLayout)
}
