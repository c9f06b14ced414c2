// Package dateutils parses the dates printed on Brazilian invoices.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts found on invoices.
const (
	DateLayoutISO     = "2006-01-02"
	DateLayoutBR      = "02/01/2006"
	DateLayoutBRShort = "02/01/06"
	DateLayoutDayOnly = "02/01"
)

// CommonFormats lists the full-date layouts tried by ParseDate, in order.
var CommonFormats = []string{
	DateLayoutBR,
	DateLayoutBRShort,
	DateLayoutISO,
	"02.01.2006",
	"02-01-2006",
}

// ParseDate parses a full date and returns the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, format, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %q", dateStr)
}

// ParseDayMonth resolves a DD/MM transaction date against the due date of its
// invoice. Purchases dated after the due month belong to the previous year.
func ParseDayMonth(dayMonth string, due time.Time) (time.Time, error) {
	t, err := time.Parse(DateLayoutDayOnly, CleanDateString(dayMonth))
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse day and month: %q", dayMonth)
	}
	year := due.Year()
	if t.Month() > due.Month() {
		year--
	}
	return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString trims the string and collapses inner whitespace.
func CleanDateString(dateStr string) string {
	return strings.Join(strings.Fields(dateStr), " ")
}

// Span tracks the earliest and latest of a set of dates.
type Span struct {
	First time.Time
	Last  time.Time
}

// Add widens the span to include t.
func (s *Span) Add(t time.Time) {
	if s.First.IsZero() || t.Before(s.First) {
		s.First = t
	}
	if s.Last.IsZero() || t.After(s.Last) {
		s.Last = t
	}
}

// IsZero reports whether no date was added.
func (s Span) IsZero() bool {
	return s.First.IsZero()
}
