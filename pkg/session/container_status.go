package session

import (
	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// ContainerStatus holds one container's export results during a run.
//
//nolint:errname // ContainerStatus is not an error type, it contains an error field.
type ContainerStatus struct {
	containerName  string                                // Container name.
	results        map[types.Category]types.ExportResult // Result per category.
	containerError error                                 // Skip reason, if any.
}

// newContainerStatus creates an empty status for a container.
func newContainerStatus(name string) *ContainerStatus {
	return &ContainerStatus{
		containerName: name,
		results:       make(map[types.Category]types.ExportResult, len(types.Categories)),
	}
}

// Name returns the container name.
//
// Returns:
//   - string: Container's name.
func (u *ContainerStatus) Name() string {
	return u.containerName
}

// Result returns the recorded result for a category.
//
// A category without a recorded result reports FAILED with a zero count, so a
// missing entry can never be mistaken for a successful export.
//
// Parameters:
//   - category: Export category.
//
// Returns:
//   - types.ExportResult: Recorded result.
func (u *ContainerStatus) Result(category types.Category) types.ExportResult {
	result, found := u.results[category]
	if !found {
		return types.ExportResult{Status: types.StatusFailed}
	}

	return result
}

// Error returns the skip reason, if any.
//
// Returns:
//   - string: Error message or empty if none.
func (u *ContainerStatus) Error() string {
	if u.containerError == nil {
		return ""
	}

	return u.containerError.Error()
}

// Succeeded reports whether every category finished with SUCCESS.
func (u *ContainerStatus) Succeeded() bool {
	for _, category := range types.Categories {
		if u.Result(category).Status != types.StatusSuccess {
			return false
		}
	}

	return true
}

// HasFailed reports whether any category finished with FAILED.
func (u *ContainerStatus) HasFailed() bool {
	for _, category := range types.Categories {
		if u.Result(category).Status == types.StatusFailed {
			return true
		}
	}

	return false
}

// IsSkipped reports whether the container was skipped by the existence check.
func (u *ContainerStatus) IsSkipped() bool {
	for _, category := range types.Categories {
		if u.Result(category).Status != types.StatusSkipped {
			return false
		}
	}

	return true
}

// State returns the human-readable state name.
//
// Returns:
//   - string: "Succeeded", "Failed", "Skipped" or "Partial".
func (u *ContainerStatus) State() string {
	switch {
	case u.IsSkipped():
		return "Skipped"
	case u.Succeeded():
		return "Succeeded"
	case u.HasFailed():
		return "Failed"
	default:
		return "Partial"
	}
}
