package archive

import "errors"

var (
	// ErrSourceUnavailable indicates the tree to archive is missing or unreadable.
	ErrSourceUnavailable = errors.New("archive source unavailable")
	// ErrArchiveFailed indicates the archive could not be created, written or closed.
	ErrArchiveFailed = errors.New("failed to write archive")
)
