// Package mocks provides mock implementations for testing n8n-backup components.
package mocks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// Static errors returned by the mock client.
var (
	// ErrRuntimeUnavailable simulates a runtime that cannot be queried.
	ErrRuntimeUnavailable = errors.New("runtime unavailable")
	// ErrCopyFailed simulates a failed copy from a container.
	ErrCopyFailed = errors.New("copy failed")
)

// MockClient is a mock implementation of types.Client for testing purposes.
// It simulates n8n containers with configurable behavior defined by TestData.
type MockClient struct {
	TestData *TestData
}

// ExportBehavior configures how one category export behaves in a container.
type ExportBehavior struct {
	Output   string // Output printed by the export command.
	ExitCode int    // Exit code of the export command.
	CopyErr  error  // Error returned when copying the exported directory.
	Files    int    // Files written to the host on copy; defaults to 1.
}

// TestData holds configuration data for MockClient's test behavior.
type TestData struct {
	Running      []string                                         // Running containers in runtime order.
	ListErr      error                                            // Error returned when listing containers.
	Exports      map[string]map[types.Category]ExportBehavior     // Export behavior per container and category.
	MkdirFails   map[string]bool                                  // Containers where mkdir fails.
	Commands     []string                                         // Executed commands as "<container>: <cmd>".
	Copies       []string                                         // Copied paths as "<container>:<path>".
	CopyContents map[string]map[types.Category]map[string]string // Optional file contents per copy.
}

// CreateMockClient constructs a new MockClient instance for testing.
func CreateMockClient(data *TestData) MockClient {
	if data.Exports == nil {
		data.Exports = map[string]map[types.Category]ExportBehavior{}
	}

	return MockClient{TestData: data}
}

// SucceedingExport returns a behavior exporting count items successfully.
func SucceedingExport(category types.Category, count int) ExportBehavior {
	return ExportBehavior{
		Output: fmt.Sprintf("Successfully exported %d %s.", count, category),
	}
}

// FailingExport returns a behavior whose export command exits with code 1.
func FailingExport() ExportBehavior {
	return ExportBehavior{Output: "Error exporting", ExitCode: 1}
}

// ListRunningContainerNames returns TestData.Running or TestData.ListErr.
func (client MockClient) ListRunningContainerNames(_ context.Context) ([]string, error) {
	if client.TestData.ListErr != nil {
		return nil, client.TestData.ListErr
	}

	return slices.Clone(client.TestData.Running), nil
}

// IsContainerRunning reports whether name is listed in TestData.Running.
func (client MockClient) IsContainerRunning(_ context.Context, name string) (bool, error) {
	return slices.Contains(client.TestData.Running, name), nil
}

// ExecuteCommand simulates mkdir, rm and the n8n export commands.
//
// Exports without a configured behavior succeed with a count of 1.
func (client MockClient) ExecuteCommand(
	_ context.Context,
	name, _ string,
	cmd []string,
) (types.ExecResult, error) {
	client.TestData.Commands = append(client.TestData.Commands, name+": "+strings.Join(cmd, " "))

	switch {
	case len(cmd) > 0 && cmd[0] == "mkdir":
		if client.TestData.MkdirFails[name] {
			return types.ExecResult{Output: "mkdir: permission denied", ExitCode: 1}, nil
		}

		return types.ExecResult{}, nil
	case len(cmd) > 1 && cmd[1] == "export:workflow":
		behavior := client.behavior(name, types.Workflows)

		return types.ExecResult{Output: behavior.Output, ExitCode: behavior.ExitCode}, nil
	case len(cmd) > 1 && cmd[1] == "export:credentials":
		behavior := client.behavior(name, types.Credentials)

		return types.ExecResult{Output: behavior.Output, ExitCode: behavior.ExitCode}, nil
	default:
		return types.ExecResult{}, nil
	}
}

// CopyFromContainer writes placeholder files for the category found in srcPath into dstDir.
func (client MockClient) CopyFromContainer(_ context.Context, name, srcPath, dstDir string) error {
	client.TestData.Copies = append(client.TestData.Copies, name+":"+srcPath)

	category := types.Workflows
	if strings.Contains(srcPath, string(types.Credentials)) {
		category = types.Credentials
	}

	behavior := client.behavior(name, category)
	if behavior.CopyErr != nil {
		return behavior.CopyErr
	}

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return err
	}

	if contents, found := client.TestData.CopyContents[name][category]; found {
		for file, content := range contents {
			if err := os.WriteFile(filepath.Join(dstDir, file), []byte(content), 0o644); err != nil {
				return err
			}
		}

		return nil
	}

	files := behavior.Files
	if files == 0 {
		files = 1
	}

	for i := range files {
		file := filepath.Join(dstDir, fmt.Sprintf("%d.json", i+1))
		if err := os.WriteFile(file, []byte(`{"id":"`+name+`"}`), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// GetVersion returns a mock Docker API client version.
func (client MockClient) GetVersion() string {
	return "1.50"
}

// behavior returns the configured export behavior or a default success.
func (client MockClient) behavior(name string, category types.Category) ExportBehavior {
	if behavior, found := client.TestData.Exports[name][category]; found {
		return behavior
	}

	return SucceedingExport(category, 1)
}
