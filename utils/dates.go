package utils

import (
	"time"
)

const dateLayout = "2006-01-02"

// DateLocation is the application's timezone. It defaults to UTC until
// InitializeDateLocation runs.
var DateLocation = time.UTC

// InitializeDateLocation sets up the application's timezone
func InitializeDateLocation(timezone string) error {
	if timezone == "" {
		timezone = "Asia/Dubai"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	DateLocation = loc
	return nil
}

// Today returns midnight of the current day in the application timezone.
func Today() time.Time {
	return NormalizeDate(time.Now().In(DateLocation))
}

// NormalizeDate keeps the calendar date of t as read in t's own location and
// returns midnight of that date in the application timezone. Drivers hand
// date columns back in UTC or a fixed offset, so the date is taken as-is.
func NormalizeDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, DateLocation)
}

func AddDays(t time.Time, days int) time.Time {
	return NormalizeDate(t).AddDate(0, 0, days)
}

// SQLDate renders t as YYYY-MM-DD for comparisons against date columns.
// Always compare with half-open ranges (>= start, < end).
func SQLDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD string in the application timezone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, DateLocation)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// MonthRange returns the first day of the month and the first day of the
// following month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, DateLocation)
	return start, start.AddDate(0, 1, 0)
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return SQLDate(NormalizeDate(a)) == SQLDate(NormalizeDate(b))
}
