// Package session tracks per-container export results during a backup run.
// It records a terminal status and item count for every (container, category) pair,
// classifies the run as a whole and snapshots the results into a report.
//
// Key components:
//   - ContainerStatus: Results of both export categories for one container.
//   - Tracker: Ordered, write-once-per-key store of container statuses for one run.
//   - AggregateStatus: Three-way SUCCESS/WARNING/ERROR classification of a run.
//   - Report: Read-only snapshot handed to notifications, metrics and the summary.
//
// Usage example:
//
//	tracker := session.NewTracker()
//	tracker.RecordSkippedContainer("n8n-worker", errContainerNotRunning)
//	tracker.Record("n8n", types.Workflows, types.ExportResult{Status: types.StatusSuccess, Count: 12})
//	status := tracker.AggregateStatus(len(tracker.Names()), tracker.SuccessCount())
//	report := session.NewReport(tracker, session.RunInfo{Timestamp: ts})
//
// The tracker is only ever touched by the single goroutine driving a run and needs no locking.
package session
