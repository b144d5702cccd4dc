package utils

import (
	"errors"
	"fmt"
	"time"
)

// DefaultWindow is how far back a stats query looks when no start is given.
const DefaultWindow = 7 * 24 * time.Hour

func IsValidInterval(interval string) bool {
	switch interval {
	case "Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year":
		return true
	default:
		return false
	}
}

// ParseTimeRange reads optional RFC3339 start/end values. A missing start
// defaults to DefaultWindow before now, a missing end to now.
func ParseTimeRange(startParam, endParam string, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	start, end := now.Add(-DefaultWindow), now

	if startParam != "" {
		parsed, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'start' timestamp format, use RFC3339 (e.g., 2006-01-02T15:04:05Z): %w", err)
		}
		start = parsed
	}
	if endParam != "" {
		parsed, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'end' timestamp format, use RFC3339 (e.g., 2006-01-02T15:04:05Z): %w", err)
		}
		end = parsed
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("'end' must not be before 'start'")
	}
	return start, end, nil
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
