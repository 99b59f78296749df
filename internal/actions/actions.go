package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/n8n-backup/internal/logging"
	"github.com/nicholas-fedor/n8n-backup/internal/util"
	"github.com/nicholas-fedor/n8n-backup/pkg/metrics"
	"github.com/nicholas-fedor/n8n-backup/pkg/session"
	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// logsDirName is the host directory holding run logs under the base directory.
const logsDirName = "logs"

// Process exit codes of a run.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// RunBackupWithNotifications performs one backup run with its run log, notification and summary.
//
// The run log at <base>/logs/<timestamp>.log records the whole run. An empty
// selection stops the run before anything is exported or notified. Otherwise the
// notifier receives the report and a summary is written to out.
//
// Parameters:
//   - ctx: Context for runtime requests.
//   - client: Runtime client.
//   - notifier: Notifier receiving the report, may be nil.
//   - params: Backup parameters.
//   - uploader: Offsite uploader, nil to skip the upload.
//   - out: Destination of the human-readable summary.
//
// Returns:
//   - *metrics.Metric: Metric summarizing the run, nil for an empty selection. A run
//     that could not prepare the host tree yields an ERROR metric with zero counts.
//   - int: Process exit code.
func RunBackupWithNotifications(
	ctx context.Context,
	client types.Client,
	notifier types.Notifier,
	params types.BackupParams,
	uploader Uploader,
	out io.Writer,
) (*metrics.Metric, int) {
	startedAt := time.Now()
	run := session.RunInfo{
		Timestamp: util.RunTimestamp(startedAt),
		StartedAt: startedAt,
	}

	runLog, err := logging.OpenRunLog(filepath.Join(params.BaseDir, logsDirName), run.Timestamp)
	if err != nil {
		logrus.WithError(err).Warn("Run log unavailable, logging to console only")
	} else {
		run.LogPath = runLog.Path()

		defer func() {
			if err := runLog.Close(); err != nil {
				logrus.WithError(err).Debug("Failed to close run log")
			}
		}()
	}

	report, err := Backup(ctx, client, params, run, uploader)
	if errors.Is(err, ErrNoContainers) {
		return nil, ExitFailure
	}

	if err != nil {
		return &metrics.Metric{Status: types.OverallError, FinishedAt: time.Now()}, ExitFailure
	}

	logrus.WithFields(logrus.Fields{
		"status":    report.Status(),
		"succeeded": len(report.Succeeded()),
		"failed":    len(report.Failed()),
		"skipped":   len(report.Skipped()),
		"archive":   report.ArchivePath(),
	}).Info("Backup finished")

	if notifier != nil {
		notifier.SendNotification(report)
	}

	PrintSummary(out, report)

	return metrics.NewMetric(report), ExitCode(report)
}

// ExitCode maps a finished run to the process exit code.
//
// A run fails when no container succeeded or when no archive was produced;
// partial success exits 0.
func ExitCode(report types.Report) int {
	if report == nil || len(report.Succeeded()) == 0 || report.ArchivePath() == "" {
		return ExitFailure
	}

	return ExitSuccess
}

// PrintSummary writes the per-container results, counts, archive path and log path to out.
func PrintSummary(out io.Writer, report types.Report) {
	writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(writer, "CONTAINER\tWORKFLOWS\tCREDENTIALS")

	for _, container := range report.All() {
		fmt.Fprintf(writer, "%s\t%s\t%s\n",
			container.Name(),
			formatResult(container.Result(types.Workflows)),
			formatResult(container.Result(types.Credentials)),
		)
	}

	_ = writer.Flush()

	archivePath := report.ArchivePath()
	if archivePath == "" {
		archivePath = "(none)"
	}

	fmt.Fprintf(out, "\nStatus:    %s\n", report.Status())
	fmt.Fprintf(out, "Selected:  %d\n", len(report.All()))
	fmt.Fprintf(out, "Succeeded: %d\n", len(report.Succeeded()))
	fmt.Fprintf(out, "Failed:    %d\n", len(report.Failed()))
	fmt.Fprintf(out, "Skipped:   %d\n", len(report.Skipped()))
	fmt.Fprintf(out, "Archive:   %s\n", archivePath)
	fmt.Fprintf(out, "Log:       %s\n", report.LogPath())
}

// formatResult renders a result as "STATUS (count)".
func formatResult(result types.ExportResult) string {
	return fmt.Sprintf("%s (%d)", result.Status, result.Count)
}
