// Package timezone provides timezone parsing and formatting helpers.
//
// Scheduling comparisons never depend on a timezone: windows compare as UTC
// instants. Timezones matter only when stepping recurrences by local clock
// and when rendering times back to people.
package timezone

import (
	"fmt"
	"time"
)

// ParseTimezone parses an IANA timezone identifier (e.g. "Europe/Berlin").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for identifiers known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	if tz == "" || tz == "UTC" {
		return true
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// FormatTimestamp formats a Unix timestamp for display in the given
// timezone. Falls back to UTC when the identifier is invalid.
func FormatTimestamp(ts int64, tz string) string {
	loc, err := ParseTimezone(tz)
	if err != nil {
		loc = time.UTC
	}
	return time.Unix(ts, 0).In(loc).Format("2006-01-02 15:04")
}

// FormatRange formats an event's time range for display.
// Same-day ranges render as "2026-01-21 14:00 - 16:00".
func FormatRange(startTs, endTs int64, tz string) string {
	loc, err := ParseTimezone(tz)
	if err != nil {
		loc = time.UTC
	}
	start := time.Unix(startTs, 0).In(loc)
	end := time.Unix(endTs, 0).In(loc)

	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return fmt.Sprintf("%s - %s", start.Format("2006-01-02 15:04"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
}
