package domain

import (
	"fmt"
	"time"
)

// DateLayout is the day-granularity layout used for every persisted date.
const DateLayout = "2006-01-02"

// MonthLayout is the layout of month keys ("YYYY-MM").
const MonthLayout = "2006-01"

// DateOf strips the clock from t and returns the civil date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// MonthKey returns the "YYYY-MM" key for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampedDate builds the date for day in the given month, moving days past
// the end of the month onto its last day (31 -> 28/29 in February).
func ClampedDate(year int, month time.Month, day int) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
