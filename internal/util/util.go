package util

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// TimestampLayout formats run timestamps used in archive and log file names.
const TimestampLayout = "2006-01-02_15-04-05"

// timeUnit represents a single unit of time (hours, minutes, or seconds) with its value and labels.
type timeUnit struct {
	value    int64  // The numeric value of the unit (e.g., 2 for 2 hours)
	singular string // The singular form of the unit (e.g., "hour")
	plural   string // The plural form of the unit (e.g., "hours")
}

// RunTimestamp formats t as a run timestamp in local time.
func RunTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// AppendUnique appends each non-empty item not already present, keeping order.
//
// Presence is exact, case-sensitive string equality.
//
// Parameters:
//   - list: Existing elements.
//   - items: Candidates to append.
//
// Returns:
//   - []string: list followed by the new items.
func AppendUnique(list []string, items ...string) []string {
	for _, item := range items {
		if item == "" || slices.Contains(list, item) {
			continue
		}

		list = append(list, item)
	}

	return list
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// SplitAny splits value on any of the separator runes and on whitespace, dropping empty tokens.
//
// Parameters:
//   - value: String to split.
//   - separators: Additional separator characters.
//
// Returns:
//   - []string: Non-empty tokens in order.
func SplitAny(value, separators string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return strings.ContainsRune(separators, r) || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// FormatDuration converts a time.Duration into a human-readable string.
//
// The result lists hours, minutes and seconds with singular or plural labels,
// e.g. "1 hour, 2 minutes, 3 seconds", and is "0 seconds" for a zero duration.
//
// Parameters:
//   - duration: The time.Duration to convert into a readable string.
//
// Returns:
//   - string: A formatted string representing the duration.
func FormatDuration(duration time.Duration) string {
	const (
		minutesPerHour   = 60
		secondsPerMinute = 60
		timeUnitCount    = 3
	)

	units := []timeUnit{
		{int64(duration.Hours()), "hour", "hours"},
		{int64(math.Mod(duration.Minutes(), minutesPerHour)), "minute", "minutes"},
		{int64(math.Mod(duration.Seconds(), secondsPerMinute)), "second", "seconds"},
	}

	parts := make([]string, 0, timeUnitCount)
	for i, unit := range units {
		parts = append(
			parts,
			FormatTimeUnit(unit.value, unit.singular, unit.plural, i == len(units)-1 && len(parts) == 0),
		)
	}

	joined := strings.Join(FilterEmpty(parts), ", ")
	if joined == "" {
		return "0 seconds"
	}

	return joined
}

// FormatTimeUnit formats a single time unit, returning "" for a zero value unless forceInclude is set.
func FormatTimeUnit(value int64, singular, plural string, forceInclude bool) string {
	switch {
	case value == 1:
		return "1 " + singular
	case value > 1 || forceInclude:
		return fmt.Sprintf("%d %s", value, plural)
	default:
		return ""
	}
}

// FilterEmpty removes empty strings from a slice.
func FilterEmpty(parts []string) []string {
	var filtered []string

	for _, part := range parts {
		if part != "" {
			filtered = append(filtered, part)
		}
	}

	return filtered
}
