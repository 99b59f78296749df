package types

import "time"

// Category is one of the two kinds of data exported from each container.
type Category string

const (
	// Workflows is the workflow definitions export.
	Workflows Category = "workflows"
	// Credentials is the credential records export.
	Credentials Category = "credentials"
)

// Categories lists every export category in processing order.
var Categories = []Category{Workflows, Credentials}

// Title returns the display name of the category.
func (c Category) Title() string {
	switch c {
	case Workflows:
		return "Workflows"
	case Credentials:
		return "Credentials"
	default:
		return string(c)
	}
}

// Status is the terminal state of one export category for one container.
type Status string

const (
	StatusSuccess Status = "SUCCESS" // Export and copy both succeeded.
	StatusFailed  Status = "FAILED"  // Export or copy failed.
	StatusSkipped Status = "SKIPPED" // Container missing or not running.
)

// ExportResult records the outcome of one export category for one container.
type ExportResult struct {
	Status Status // Terminal status.
	Count  int    // Items exported, 0 when unknown.
}

// OverallStatus is the run-level classification derived from per-container results.
type OverallStatus string

const (
	OverallSuccess OverallStatus = "SUCCESS" // Every container succeeded.
	OverallWarning OverallStatus = "WARNING" // Some containers succeeded.
	OverallError   OverallStatus = "ERROR"   // No container succeeded.
)

// Report defines the results of a finished backup run.
type Report interface {
	Timestamp() string            // Run timestamp used in file names.
	StartedAt() time.Time         // Run start time.
	All() []ContainerReport       // Every selected container, in selection order.
	Succeeded() []ContainerReport // Containers with both categories successful.
	Failed() []ContainerReport    // Containers with at least one failed category.
	Skipped() []ContainerReport   // Containers skipped by the existence check.
	Status() OverallStatus        // Overall run status.
	ArchivePath() string          // Produced archive, empty if none.
	LogPath() string              // Run log file.
}

// ContainerReport defines one container's results within a run.
type ContainerReport interface {
	Name() string                          // Container name.
	Result(category Category) ExportResult // Result for a category.
	State() string                         // Human-readable state.
	Error() string                         // Skip or failure reason, if any.
}
