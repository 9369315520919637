package util

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the compact calendar date used by the provider and the CLI.
	DateLayout = "20060102"
	// MonthLayout is the grouping key of monthly aggregates.
	MonthLayout = "2006-01"
	// ClockLayout is a local wall-clock time of day.
	ClockLayout = "15:04"

	// DefaultLookbackDays approximates five years without leap-day pitfalls.
	DefaultLookbackDays = 1827
)

// ParseDate accepts YYYYMMDD or YYYY-MM-DD (dashes are stripped) and returns
// midnight of that day in loc. Returns (t, true) if it worked.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "-", "")
	if len(s) != len(DateLayout) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthKey formats t as YYYY-MM in its own location.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseClock parses HH:MM into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q, want HH:MM: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// ResolveWindow fills an empty start or end. end defaults to today and start to
// DefaultLookbackDays before today. Both are returned as YYYYMMDD.
func ResolveWindow(start, end string, today time.Time) (string, string) {
	if strings.TrimSpace(end) == "" {
		end = today.Format(DateLayout)
	}
	if strings.TrimSpace(start) == "" {
		start = today.AddDate(0, 0, -DefaultLookbackDays).Format(DateLayout)
	}
	return strings.ReplaceAll(start, "-", ""), strings.ReplaceAll(end, "-", "")
}
