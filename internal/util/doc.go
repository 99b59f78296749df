// Package util provides small helpers shared by n8n-backup commands and actions.
// It includes ordered de-duplication of names, separator splitting, run timestamps
// and human-readable durations.
//
// Usage example:
//
//	names := util.AppendUnique([]string{"a"}, "a", "b")
//	recipients := util.SplitAny("a@x;b@x, c@x", ";,")
//	until := util.FormatDuration(time.Until(next))
package util
