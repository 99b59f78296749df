package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/n8n-backup/pkg/archive"
	"github.com/nicholas-fedor/n8n-backup/pkg/session"
	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// filesDirName is the host directory holding one run's exported files under the base directory.
const filesDirName = "files"

// Permissions for host directories created by a run.
const dirMode = 0o755

// Uploader copies a finished archive to offsite storage.
type Uploader interface {
	Upload(ctx context.Context, path string) error
}

// Backup performs one backup run.
//
// It clears <base>/files, resolves the container selection, exports both
// categories of every running container, drops the files of any container with
// a failed category, archives what remains when at least one container
// succeeded and clears <base>/files again. Per-category and per-container
// failures are recorded in the report, not returned.
//
// Parameters:
//   - ctx: Context for runtime requests.
//   - client: Runtime client.
//   - params: Backup parameters.
//   - run: Run timestamp and log path.
//   - uploader: Offsite uploader, nil to skip the upload.
//
// Returns:
//   - types.Report: Results of the run.
//   - error: ErrNoContainers for an empty selection, or a failure to prepare the host tree.
func Backup(
	ctx context.Context,
	client types.Client,
	params types.BackupParams,
	run session.RunInfo,
	uploader Uploader,
) (types.Report, error) {
	filesDir := filepath.Join(params.BaseDir, filesDirName)

	if err := resetDir(filesDir); err != nil {
		logrus.WithError(err).Error("Backup aborted")

		return nil, err
	}

	names := SelectContainers(ctx, client, params.Containers, params.AutoDetect, params.NameFilter, params.ExtraNames)
	if len(names) == 0 {
		logrus.WithError(ErrNoContainers).Error("Backup aborted")

		return nil, ErrNoContainers
	}

	logrus.WithField("containers", names).Info("Starting backup")

	tracker := session.NewTracker()
	exporter := NewExporter(client, params, nil)

	for _, name := range names {
		backupContainer(ctx, client, exporter, tracker, name, filesDir)
	}

	success := tracker.SuccessCount()
	logrus.WithFields(logrus.Fields{
		"selected":  len(names),
		"succeeded": success,
	}).Info("Export finished")

	if success > 0 {
		run.ArchivePath = createArchive(ctx, params, run.Timestamp, filesDir, uploader)
	} else {
		logrus.Error("No container was exported successfully, skipping archive")
	}

	if err := os.RemoveAll(filesDir); err != nil {
		logrus.WithError(err).Warn("Failed to clear backup files")
	}

	return session.NewReport(tracker, run), nil
}

// backupContainer checks that a container is running and exports both of its categories.
func backupContainer(
	ctx context.Context,
	client types.Client,
	exporter *Exporter,
	tracker *session.Tracker,
	name, filesDir string,
) {
	clog := logrus.WithField("container", name)

	running, err := client.IsContainerRunning(ctx, name)
	if err != nil || !running {
		reason := err
		if reason == nil {
			reason = errContainerNotRunning
		}

		clog.WithError(reason).Warn("Skipping container")
		tracker.RecordSkippedContainer(name, reason)

		return
	}

	containerDir := filepath.Join(filesDir, name)

	for _, category := range types.Categories {
		result := exporter.Export(ctx, name, category, filepath.Join(containerDir, string(category)))
		tracker.Record(name, category, result)
	}

	if tracker.Status(name).HasFailed() {
		clog.Warn("Discarding exported files of partially failed container")

		if err := os.RemoveAll(containerDir); err != nil {
			clog.WithError(err).Warn("Failed to remove exported files")
		}
	}
}

// createArchive archives filesDir, uploads it and prunes old archives.
//
// Returns the archive path, or "" when archiving failed.
func createArchive(
	ctx context.Context,
	params types.BackupParams,
	timestamp, filesDir string,
	uploader Uploader,
) string {
	encrypted := params.Password != ""
	path := filepath.Join(params.BaseDir, archive.ArchiveName(timestamp, encrypted))

	if !encrypted {
		logrus.Warn("No archive password set, writing an unprotected archive")
	}

	if err := archive.Archive(filesDir, path, params.Password); err != nil {
		logrus.WithError(err).WithField("file", path).Error("Failed to create archive")

		return ""
	}

	logrus.WithFields(logrus.Fields{
		"file":      path,
		"encrypted": encrypted,
	}).Info("Created archive")

	if uploader != nil {
		if err := uploader.Upload(ctx, path); err != nil {
			logrus.WithError(err).WithField("file", path).Error("Failed to upload archive")
		}
	}

	if params.KeepLast > 0 {
		if _, err := PruneArchives(params.BaseDir, params.KeepLast, path); err != nil {
			logrus.WithError(err).Warn("Failed to prune old archives")
		}
	}

	return path
}

// resetDir removes dir with its contents and creates it empty.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: %w", errPrepareFilesFailed, err)
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("%w: %w", errPrepareFilesFailed, err)
	}

	return nil
}
