package container

import (
	"errors"
)

// Errors for client creation in client.go.
var (
	// errCreateClientFailed indicates the Docker API client could not be initialized.
	errCreateClientFailed = errors.New("failed to initialize Docker client")
	// errLoadTLSConfigFailed indicates the TLS certificates for the daemon could not be loaded.
	errLoadTLSConfigFailed = errors.New("failed to load TLS configuration")
)

// Errors for container queries in client.go.
var (
	// errListContainersFailed indicates a failure to list containers from the Docker host.
	errListContainersFailed = errors.New("failed to list containers")
	// errInspectContainerFailed indicates a failure to inspect a container's details.
	errInspectContainerFailed = errors.New("failed to inspect container")
)

// Errors for exec operations in client.go.
var (
	// errCreateExecFailed indicates a failure to create an exec instance in a container.
	errCreateExecFailed = errors.New("failed to create exec instance")
	// errAttachExecFailed indicates a failure to attach to an exec instance for output capture.
	errAttachExecFailed = errors.New("failed to attach to exec instance")
	// errReadExecOutputFailed indicates a failure to read output from an exec instance.
	errReadExecOutputFailed = errors.New("failed to read exec output")
	// errInspectExecFailed indicates a failure to inspect an exec instance's status.
	errInspectExecFailed = errors.New("failed to inspect exec instance")
)

// Errors for copy operations in client.go and copy.go.
var (
	// errCopyFromContainerFailed indicates the daemon refused or failed the archive request.
	errCopyFromContainerFailed = errors.New("failed to copy from container")
	// errSourceNotDirectory indicates the copied path is not a directory.
	errSourceNotDirectory = errors.New("source path is not a directory")
	// errReadArchiveFailed indicates the tar stream from the daemon could not be read.
	errReadArchiveFailed = errors.New("failed to read archive stream")
	// errUnsafeArchivePath indicates an archive entry resolving outside the target directory.
	errUnsafeArchivePath = errors.New("archive entry escapes target directory")
	// errUnsupportedEntry indicates an archive entry that is neither a file nor a directory.
	errUnsupportedEntry = errors.New("unsupported archive entry type")
	// errWriteFileFailed indicates an extracted entry could not be written to the host.
	errWriteFileFailed = errors.New("failed to write extracted file")
)
