package types

import "context"

// Client is the container runtime interface used by a backup run.
//
// It covers exactly the operations the exporter depends on: discovering running
// containers, checking that a named container is running, executing commands inside
// it as a given user and copying a directory out of its filesystem.
type Client interface {
	// ListRunningContainerNames returns the names of all running containers in runtime order.
	//
	// Parameters:
	//   - ctx: Context for the runtime request.
	//
	// Returns:
	//   - []string: Container names without a leading slash.
	//   - error: Non-nil if the runtime could not be queried.
	ListRunningContainerNames(ctx context.Context) ([]string, error)

	// IsContainerRunning reports whether the named container exists and is running.
	//
	// Parameters:
	//   - ctx: Context for the runtime request.
	//   - name: Container name.
	//
	// Returns:
	//   - bool: True if the container exists and is running.
	//   - error: Non-nil if the runtime could not answer (a missing container is not an error).
	IsContainerRunning(ctx context.Context, name string) (bool, error)

	// ExecuteCommand runs a command inside the named container and captures its combined output.
	//
	// Parameters:
	//   - ctx: Context for the runtime request.
	//   - name: Container name.
	//   - user: Execution identity inside the container (empty for the image default).
	//   - cmd: Command and arguments.
	//
	// Returns:
	//   - ExecResult: Combined stdout/stderr text and exit code.
	//   - error: Non-nil if the command could not be run or its result could not be read.
	ExecuteCommand(ctx context.Context, name, user string, cmd []string) (ExecResult, error)

	// CopyFromContainer copies the contents of srcPath inside the container into dstDir on the host.
	//
	// Parameters:
	//   - ctx: Context for the runtime request.
	//   - name: Container name.
	//   - srcPath: Directory inside the container.
	//   - dstDir: Host directory receiving the directory's contents.
	//
	// Returns:
	//   - error: Non-nil if the copy failed.
	CopyFromContainer(ctx context.Context, name, srcPath, dstDir string) error

	// GetVersion returns the runtime API version in use.
	GetVersion() string
}

// ExecResult is the outcome of a command executed inside a container.
type ExecResult struct {
	Output   string // Combined stdout and stderr.
	ExitCode int    // Process exit code.
}

// Succeeded reports whether the command exited with status zero.
func (r ExecResult) Succeeded() bool {
	return r.ExitCode == 0
}
