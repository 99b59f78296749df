package session

import (
	"time"

	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// RunInfo carries the run-level facts a report needs besides the tracked results.
type RunInfo struct {
	Timestamp   string    // Run timestamp used in file names.
	StartedAt   time.Time // Run start time.
	ArchivePath string    // Produced archive, empty if none.
	LogPath     string    // Run log file.
}

// report implements the Report interface for a finished run.
type report struct {
	info      RunInfo
	status    types.OverallStatus
	all       []types.ContainerReport
	succeeded []types.ContainerReport
	failed    []types.ContainerReport
	skipped   []types.ContainerReport
}

// Timestamp returns the run timestamp.
func (r *report) Timestamp() string { return r.info.Timestamp }

// StartedAt returns the run start time.
func (r *report) StartedAt() time.Time { return r.info.StartedAt }

// All returns every selected container in selection order.
func (r *report) All() []types.ContainerReport { return r.all }

// Succeeded returns containers with both categories successful.
func (r *report) Succeeded() []types.ContainerReport { return r.succeeded }

// Failed returns containers with at least one failed category.
func (r *report) Failed() []types.ContainerReport { return r.failed }

// Skipped returns containers skipped by the existence check.
func (r *report) Skipped() []types.ContainerReport { return r.skipped }

// Status returns the overall run status.
func (r *report) Status() types.OverallStatus { return r.status }

// ArchivePath returns the produced archive path, empty if none.
func (r *report) ArchivePath() string { return r.info.ArchivePath }

// LogPath returns the run log path.
func (r *report) LogPath() string { return r.info.LogPath }

// NewReport snapshots a tracker into a report.
//
// Parameters:
//   - tracker: Tracker holding the run's results.
//   - info: Run-level facts.
//
// Returns:
//   - types.Report: Categorized report in selection order.
func NewReport(tracker *Tracker, info RunInfo) types.Report {
	names := tracker.Names()

	report := &report{
		info:      info,
		status:    tracker.AggregateStatus(len(names), tracker.SuccessCount()),
		all:       make([]types.ContainerReport, 0, len(names)),
		succeeded: make([]types.ContainerReport, 0),
		failed:    make([]types.ContainerReport, 0),
		skipped:   make([]types.ContainerReport, 0),
	}

	for _, name := range names {
		categorizeContainer(report, tracker.Status(name))
	}

	return report
}

// categorizeContainer assigns a container status to report categories.
func categorizeContainer(report *report, status *ContainerStatus) {
	report.all = append(report.all, status)

	switch {
	case status.IsSkipped():
		report.skipped = append(report.skipped, status)
	case status.Succeeded():
		report.succeeded = append(report.succeeded, status)
	default:
		report.failed = append(report.failed, status)
	}
}
