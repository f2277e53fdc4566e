package core

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// DateOf truncates t to its UTC calendar day (midnight UTC).
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// NextDay returns the calendar day following d.
func NextDay(d time.Time) time.Time {
	return DateOf(d).AddDate(0, 0, 1)
}

// FormatDate renders d as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.UTC().Format(DateLayout)
}
