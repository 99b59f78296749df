package session

import (
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// Tracker records export results keyed by container name and category.
//
// Containers keep the order in which they were first recorded, which is the
// selection order of the run.
type Tracker struct {
	order    []string
	statuses map[string]*ContainerStatus
}

// NewTracker creates an empty tracker for one run.
func NewTracker() *Tracker {
	return &Tracker{
		order:    []string{},
		statuses: map[string]*ContainerStatus{},
	}
}

// status returns the status entry for a container, creating it on first use.
func (t *Tracker) status(name string) *ContainerStatus {
	if status, found := t.statuses[name]; found {
		return status
	}

	status := newContainerStatus(name)
	t.statuses[name] = status
	t.order = append(t.order, name)

	return status
}

// Record stores the result of one export category for a container.
//
// A later write for the same key overwrites the earlier one; the driver writes
// each key once per run.
//
// Parameters:
//   - name: Container name.
//   - category: Export category.
//   - result: Terminal result.
func (t *Tracker) Record(name string, category types.Category, result types.ExportResult) {
	if result.Count < 0 {
		result.Count = 0
	}

	t.status(name).results[category] = result

	logrus.WithFields(logrus.Fields{
		"container": name,
		"category":  category,
		"status":    result.Status,
		"count":     result.Count,
	}).Debug("Recorded export result")
}

// RecordSkippedContainer marks both categories of a container as SKIPPED with a zero count.
//
// Parameters:
//   - name: Container name.
//   - reason: Why the container was skipped, may be nil.
func (t *Tracker) RecordSkippedContainer(name string, reason error) {
	status := t.status(name)
	for _, category := range types.Categories {
		status.results[category] = types.ExportResult{Status: types.StatusSkipped, Count: 0}
	}

	status.containerError = reason

	logrus.WithField("container", name).WithError(reason).Debug("Recorded skipped container")
}

// Result returns the recorded result for a container and category.
//
// Returns:
//   - types.ExportResult: Recorded result.
//   - bool: False if the container was never recorded.
func (t *Tracker) Result(name string, category types.Category) (types.ExportResult, bool) {
	status, found := t.statuses[name]
	if !found {
		return types.ExportResult{}, false
	}

	result, found := status.results[category]

	return result, found
}

// Status returns the status entry of a container, or nil if it was never recorded.
func (t *Tracker) Status(name string) *ContainerStatus {
	return t.statuses[name]
}

// Names returns every recorded container in recording order.
func (t *Tracker) Names() []string {
	names := make([]string, len(t.order))
	copy(names, t.order)

	return names
}

// Succeeded reports whether both categories of a container finished with SUCCESS.
func (t *Tracker) Succeeded(name string) bool {
	status, found := t.statuses[name]

	return found && status.Succeeded()
}

// SuccessCount returns the number of containers whose categories all succeeded.
func (t *Tracker) SuccessCount() int {
	count := 0

	for _, name := range t.order {
		if t.statuses[name].Succeeded() {
			count++
		}
	}

	return count
}

// HasFailed reports whether any recorded result is FAILED.
func (t *Tracker) HasFailed() bool {
	for _, name := range t.order {
		if t.statuses[name].HasFailed() {
			return true
		}
	}

	return false
}

// AggregateStatus classifies a run from its container totals.
//
// Parameters:
//   - total: Containers that reached per-container processing.
//   - success: Containers whose categories all succeeded.
//
// Returns:
//   - types.OverallStatus: SUCCESS when every container succeeded and nothing failed,
//     ERROR when none succeeded, WARNING otherwise.
func (t *Tracker) AggregateStatus(total, success int) types.OverallStatus {
	switch {
	case success == total && !t.HasFailed():
		return types.OverallSuccess
	case success == 0:
		return types.OverallError
	default:
		return types.OverallWarning
	}
}
