package actions

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// exportedCountPattern matches the success line printed by the n8n export commands.
var exportedCountPattern = regexp.MustCompile(`Successfully exported (\d+)`)

// CountParser extracts the number of exported items from export command output.
type CountParser interface {
	// Count returns the item count found in output, or 0 when none is found.
	Count(output string) int
}

// PhraseCountParser reads the count from the first "Successfully exported <N>" phrase.
type PhraseCountParser struct{}

// Count implements CountParser.
func (PhraseCountParser) Count(output string) int {
	match := exportedCountPattern.FindStringSubmatch(output)
	if match == nil {
		return 0
	}

	count, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}

	return count
}

// Exporter exports one category of one container and copies the result to the host.
type Exporter struct {
	client types.Client
	params types.BackupParams
	parser CountParser
}

// NewExporter creates an exporter. A nil parser selects PhraseCountParser.
func NewExporter(client types.Client, params types.BackupParams, parser CountParser) *Exporter {
	if parser == nil {
		parser = PhraseCountParser{}
	}

	return &Exporter{client: client, params: params, parser: parser}
}

// ExportCategory runs one category export with the default count parser.
//
// Parameters:
//   - ctx: Context for runtime requests.
//   - client: Runtime client.
//   - params: Backup parameters holding paths, exec user and credential options.
//   - container: Container name.
//   - category: Category to export.
//   - hostDir: Host directory receiving the exported files.
//
// Returns:
//   - types.ExportResult: Terminal result for the category.
func ExportCategory(
	ctx context.Context,
	client types.Client,
	params types.BackupParams,
	container string,
	category types.Category,
	hostDir string,
) types.ExportResult {
	return NewExporter(client, params, nil).Export(ctx, container, category, hostDir)
}

// Export creates the in-container directory, runs the export, copies the files to
// hostDir and removes the in-container copy.
//
// Every failure yields FAILED with a zero count. The export output is logged and
// scanned for a count even when the command fails.
//
// Parameters:
//   - ctx: Context for runtime requests.
//   - container: Container name.
//   - category: Category to export.
//   - hostDir: Host directory receiving the exported files.
//
// Returns:
//   - types.ExportResult: Terminal result for the category.
func (e *Exporter) Export(
	ctx context.Context,
	container string,
	category types.Category,
	hostDir string,
) types.ExportResult {
	clog := logrus.WithFields(logrus.Fields{
		"container": container,
		"category":  category,
	})
	path := e.params.ContainerPath(category)
	failed := types.ExportResult{Status: types.StatusFailed, Count: 0}

	clog.Info("Exporting " + strings.ToLower(category.Title()))

	if err := e.run(ctx, container, []string{"mkdir", "-p", path}); err != nil {
		clog.WithError(fmt.Errorf("%w: %w", errCreateExportDirFailed, err)).Error("Export failed")

		return failed
	}

	result, err := e.client.ExecuteCommand(ctx, container, e.params.ExecUser, exportCommand(category, path, e.params.DecryptCredentials))
	if err != nil {
		clog.WithError(err).Error("Export failed")

		return failed
	}

	logOutput(clog, result.Output)

	count := e.parser.Count(result.Output)

	if !result.Succeeded() {
		clog.WithError(errExportCommandFailed).WithFields(logrus.Fields{
			"exit_code":    result.ExitCode,
			"parsed_count": count,
		}).Error("Export failed")

		return failed
	}

	if err := e.client.CopyFromContainer(ctx, container, path, hostDir); err != nil {
		clog.WithError(fmt.Errorf("%w: %w", errCopyExportFailed, err)).Error("Export failed")

		return failed
	}

	if err := e.run(ctx, container, []string{"rm", "-rf", path}); err != nil {
		clog.WithError(err).Debug("Failed to remove export directory in container")
	}

	clog.WithField("count", count).Info("Exported " + strings.ToLower(category.Title()))

	return types.ExportResult{Status: types.StatusSuccess, Count: count}
}

// run executes a command as the exec user and turns a non-zero exit into an error.
func (e *Exporter) run(ctx context.Context, container string, cmd []string) error {
	result, err := e.client.ExecuteCommand(ctx, container, e.params.ExecUser, cmd)
	if err != nil {
		return err
	}

	if !result.Succeeded() {
		return fmt.Errorf("%w: %q exited with %d: %s", errCommandFailed, strings.Join(cmd, " "), result.ExitCode, result.Output)
	}

	return nil
}

// exportCommand returns the n8n CLI invocation exporting category into path.
func exportCommand(category types.Category, path string, decrypt bool) []string {
	if category == types.Credentials {
		cmd := []string{"n8n", "export:credentials", "--all", "--separate", "--output=" + path}
		if decrypt {
			cmd = append(cmd, "--decrypted")
		}

		return cmd
	}

	return []string{"n8n", "export:workflow", "--all", "--separate", "--output=" + path}
}

// logOutput writes each non-empty output line to the log.
func logOutput(clog *logrus.Entry, output string) {
	for line := range strings.SplitSeq(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			clog.Info(line)
		}
	}
}
