// utils/dates.go
package utils

import (
	"fmt"
	"strings"
	"time"
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

func BeginningOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// PeriodRange resolves a named reporting period to [start, end).
func PeriodRange(period string, now time.Time) (time.Time, time.Time, error) {
	month := BeginningOfMonth(now)
	switch period {
	case "", "current-month":
		return month, month.AddDate(0, 1, 0), nil
	case "last-month":
		return month.AddDate(0, -1, 0), month, nil
	case "last-3-months":
		return month.AddDate(0, -3, 0), month, nil
	case "current-year":
		year := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return year, year.AddDate(1, 0, 0), nil
	case "current-quarter", "quarter":
		q := (int(now.Month()) - 1) / 3
		start := time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 3, 0), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", period)
}

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MinuteOfDay returns minutes since midnight in t's location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// WeekdayKey is the lowercase English weekday used as a working-hours key.
func WeekdayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}
