package actions

import "errors"

// Errors for a backup run.
var (
	// ErrNoContainers indicates the selection resolved to no containers.
	ErrNoContainers = errors.New("no containers selected for backup")
	// errContainerNotRunning marks a selected container that is missing or stopped.
	errContainerNotRunning = errors.New("container is not running")
	// errPrepareFilesFailed flags failures in preparing the host export tree.
	errPrepareFilesFailed = errors.New("failed to prepare backup directory")
)

// Errors for export steps.
var (
	// errCommandFailed indicates a helper command inside the container exited non-zero.
	errCommandFailed = errors.New("command exited non-zero")
	// errCreateExportDirFailed indicates the in-container export directory could not be created.
	errCreateExportDirFailed = errors.New("failed to create export directory in container")
	// errExportCommandFailed indicates the export command exited non-zero.
	errExportCommandFailed = errors.New("export command failed")
	// errCopyExportFailed indicates the exported files could not be copied to the host.
	errCopyExportFailed = errors.New("failed to copy export to host")
)

// Errors for retention.
var (
	// errListArchivesFailed indicates the archive directory could not be read.
	errListArchivesFailed = errors.New("failed to list archives")
)
