package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout          = "2006-01-02"
	ClockLayout         = "15:04:05"
	TimestampLayout     = "2006-01-02T15:04:05"
	TimestampLayoutText = "2006-01-02 15:04:05"
)

// ParseDuration extends time.ParseDuration with day (d) and week (w) units.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, errors.New("empty duration string")
	}

	if dur, err := time.ParseDuration(s); err == nil {
		return dur, nil
	}

	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	numStr := s[:len(s)-1]
	unit := s[len(s)-1:]

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration number: %s", numStr)
	}

	switch unit {
	case "d":
		return time.Duration(num) * 24 * time.Hour, nil
	case "w":
		return time.Duration(num) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}
}

// ParseRelativeTime accepts an absolute timestamp or an offset such as "-30d"
// or "+12h" applied to base.
func ParseRelativeTime(s string, base time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty time string")
	}

	if t, err := ParseTimestamp(s); err == nil {
		return t, nil
	}
	if t, err := ParseDate(s); err == nil {
		return t, nil
	}

	if !strings.HasPrefix(s, "-") && !strings.HasPrefix(s, "+") {
		return time.Time{}, fmt.Errorf("relative time must start with + or -: %s", s)
	}

	isNegative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "+")

	dur, err := ParseDuration(s)
	if err != nil {
		return time.Time{}, err
	}

	if isNegative {
		return base.Add(-dur), nil
	}
	return base.Add(dur), nil
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

func ParseClock(s string) (time.Time, error) {
	return time.ParseInLocation(ClockLayout, strings.TrimSpace(s), time.UTC)
}

// ParseTimestamp accepts RFC3339 and the two naive layouts. The result is
// converted to UTC and truncated to seconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}
	for _, layout := range []string{TimestampLayout, TimestampLayoutText} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp: %s", s)
}

// StartOfDay drops the clock part of t in UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Noon returns the given day at 12:00:00 UTC.
func Noon(t time.Time) time.Time {
	return StartOfDay(t).Add(12 * time.Hour)
}

// SecondsOfDay counts seconds since midnight for a clock value.
func SecondsOfDay(t time.Time) int64 {
	return int64(t.Hour()*3600 + t.Minute()*60 + t.Second())
}
