package actions_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/yeka/zip"

	"github.com/nicholas-fedor/n8n-backup/internal/actions"
	"github.com/nicholas-fedor/n8n-backup/internal/actions/mocks"
	"github.com/nicholas-fedor/n8n-backup/pkg/session"
	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// recordingNotifier stores the reports it receives.
type recordingNotifier struct {
	reports []types.Report
}

func (n *recordingNotifier) GetNames() []string { return []string{"recording"} }

func (n *recordingNotifier) SendNotification(report types.Report) {
	n.reports = append(n.reports, report)
}

// recordingUploader stores uploaded paths.
type recordingUploader struct {
	paths []string
}

func (u *recordingUploader) Upload(_ context.Context, path string) error {
	u.paths = append(u.paths, path)

	return nil
}

// archiveEntries lists the file entries of a zip archive.
func archiveEntries(path string) []string {
	reader, err := zip.OpenReader(path)
	gomega.ExpectWithOffset(1, err).ToNot(gomega.HaveOccurred())

	defer reader.Close()

	names := []string{}

	for _, file := range reader.File {
		if !file.FileInfo().IsDir() {
			names = append(names, file.Name)
		}
	}

	sort.Strings(names)

	return names
}

var _ = ginkgo.Describe("Backup", func() {
	var (
		ctx     context.Context
		baseDir string
		params  types.BackupParams
		run     session.RunInfo
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		baseDir = ginkgo.GinkgoT().TempDir()
		params = defaultParams(baseDir)
		params.AutoDetect = false
		run = session.RunInfo{Timestamp: "2026-10-18_03-00-00"}
	})

	ginkgo.It("should fail with ErrNoContainers on an empty selection", func() {
		client := mocks.CreateMockClient(&mocks.TestData{})

		report, err := actions.Backup(ctx, client, params, run, nil)
		gomega.Expect(err).To(gomega.MatchError(actions.ErrNoContainers))
		gomega.Expect(report).To(gomega.BeNil())
		gomega.Expect(filepath.Join(baseDir, "2026-10-18_03-00-00.zip")).ToNot(gomega.BeAnExistingFile())
	})

	ginkgo.It("should archive every container when all succeed", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n-a", "n8n-b"}})
		params.Containers = []string{"n8n-a", "n8n-b"}

		report, err := actions.Backup(ctx, client, params, run, nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(report.Status()).To(gomega.Equal(types.OverallSuccess))
		gomega.Expect(report.ArchivePath()).To(gomega.Equal(filepath.Join(baseDir, "2026-10-18_03-00-00.zip")))
		gomega.Expect(archiveEntries(report.ArchivePath())).To(gomega.Equal([]string{
			"files/n8n-a/credentials/1.json",
			"files/n8n-a/workflows/1.json",
			"files/n8n-b/credentials/1.json",
			"files/n8n-b/workflows/1.json",
		}))
	})

	ginkgo.It("should record a missing container as skipped and leave it out of the archive", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n"}})
		params.Containers = []string{"ghost", "n8n"}

		report, err := actions.Backup(ctx, client, params, run, nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(report.Skipped()).To(gomega.HaveLen(1))

		ghost := report.Skipped()[0]
		gomega.Expect(ghost.Name()).To(gomega.Equal("ghost"))
		gomega.Expect(ghost.Result(types.Workflows)).To(gomega.Equal(types.ExportResult{Status: types.StatusSkipped}))
		gomega.Expect(ghost.Result(types.Credentials)).To(gomega.Equal(types.ExportResult{Status: types.StatusSkipped}))
		gomega.Expect(report.Status()).To(gomega.Equal(types.OverallWarning))

		for _, entry := range archiveEntries(report.ArchivePath()) {
			gomega.Expect(entry).ToNot(gomega.HavePrefix("files/ghost/"))
		}

		gomega.Expect(client.TestData.Commands).ToNot(gomega.ContainElement(gomega.HavePrefix("ghost:")))
	})

	ginkgo.It("should discard a container whose categories disagree", func() {
		client := mocks.CreateMockClient(&mocks.TestData{
			Running: []string{"n8n-a", "n8n-b"},
			Exports: map[string]map[types.Category]mocks.ExportBehavior{
				"n8n-a": {types.Workflows: mocks.FailingExport()},
			},
		})
		params.Containers = []string{"n8n-a", "n8n-b"}

		report, err := actions.Backup(ctx, client, params, run, nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(report.Failed()).To(gomega.HaveLen(1))
		gomega.Expect(report.Failed()[0].Result(types.Credentials).Status).To(gomega.Equal(types.StatusSuccess))
		gomega.Expect(report.Status()).To(gomega.Equal(types.OverallWarning))
		gomega.Expect(archiveEntries(report.ArchivePath())).To(gomega.Equal([]string{
			"files/n8n-b/credentials/1.json",
			"files/n8n-b/workflows/1.json",
		}))
	})

	ginkgo.It("should skip the archive when nothing succeeded", func() {
		client := mocks.CreateMockClient(&mocks.TestData{
			Running: []string{"n8n"},
			Exports: map[string]map[types.Category]mocks.ExportBehavior{
				"n8n": {types.Workflows: mocks.FailingExport(), types.Credentials: mocks.FailingExport()},
			},
		})
		params.Containers = []string{"n8n"}

		report, err := actions.Backup(ctx, client, params, run, nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(report.Status()).To(gomega.Equal(types.OverallError))
		gomega.Expect(report.ArchivePath()).To(gomega.BeEmpty())

		matches, _ := filepath.Glob(filepath.Join(baseDir, "*.zip"))
		gomega.Expect(matches).To(gomega.BeEmpty())
	})

	ginkgo.It("should mark an archive written without a password", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n"}})
		params.Containers = []string{"n8n"}
		params.Password = ""

		report, err := actions.Backup(ctx, client, params, run, nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(report.ArchivePath()).To(gomega.HaveSuffix("2026-10-18_03-00-00_unencrypted.zip"))
	})

	ginkgo.It("should encrypt the archive with the password", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n"}})
		params.Containers = []string{"n8n"}

		report, err := actions.Backup(ctx, client, params, run, nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		reader, err := zip.OpenReader(report.ArchivePath())
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		defer reader.Close()

		for _, file := range reader.File {
			if !file.FileInfo().IsDir() {
				gomega.Expect(file.IsEncrypted()).To(gomega.BeTrue())
			}
		}
	})

	ginkgo.It("should clear the files directory after the run", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n"}})
		params.Containers = []string{"n8n"}
		stale := filepath.Join(baseDir, "files", "old", "workflows")
		gomega.Expect(os.MkdirAll(stale, 0o755)).To(gomega.Succeed())

		report, err := actions.Backup(ctx, client, params, run, nil)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(filepath.Join(baseDir, "files")).ToNot(gomega.BeADirectory())

		for _, entry := range archiveEntries(report.ArchivePath()) {
			gomega.Expect(entry).ToNot(gomega.HavePrefix("files/old/"))
		}
	})

	ginkgo.It("should upload the archive and prune old ones", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n"}})
		params.Containers = []string{"n8n"}
		params.KeepLast = 1

		old := filepath.Join(baseDir, "2020-01-01_00-00-00.zip")
		gomega.Expect(os.WriteFile(old, []byte("old"), 0o644)).To(gomega.Succeed())

		uploader := &recordingUploader{}
		report, err := actions.Backup(ctx, client, params, run, uploader)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(uploader.paths).To(gomega.Equal([]string{report.ArchivePath()}))
		gomega.Expect(old).ToNot(gomega.BeAnExistingFile())
		gomega.Expect(report.ArchivePath()).To(gomega.BeAnExistingFile())
	})
})

var _ = ginkgo.Describe("RunBackupWithNotifications", func() {
	var (
		ctx     context.Context
		baseDir string
		params  types.BackupParams
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		baseDir = ginkgo.GinkgoT().TempDir()
		params = defaultParams(baseDir)
	})

	ginkgo.It("should notify, print the summary and exit 0 on success", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n"}})
		notifier := &recordingNotifier{}

		var out bytes.Buffer

		metric, code := actions.RunBackupWithNotifications(ctx, client, notifier, params, nil, &out)
		gomega.Expect(code).To(gomega.Equal(actions.ExitSuccess))
		gomega.Expect(metric.Succeeded).To(gomega.Equal(1))
		gomega.Expect(notifier.reports).To(gomega.HaveLen(1))

		report := notifier.reports[0]
		gomega.Expect(report.LogPath()).To(gomega.BeAnExistingFile())
		gomega.Expect(out.String()).To(gomega.ContainSubstring("n8n"))
		gomega.Expect(out.String()).To(gomega.ContainSubstring("SUCCESS (1)"))
		gomega.Expect(out.String()).To(gomega.ContainSubstring(report.ArchivePath()))
		gomega.Expect(out.String()).To(gomega.ContainSubstring(report.LogPath()))

		content, err := os.ReadFile(report.LogPath())
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(string(content)).To(gomega.ContainSubstring("Successfully exported 1 workflows."))
		gomega.Expect(string(content)).To(gomega.ContainSubstring("container=n8n"))
	})

	ginkgo.It("should exit 1 without notifying when nothing is selected", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"postgres"}})
		notifier := &recordingNotifier{}

		var out bytes.Buffer

		metric, code := actions.RunBackupWithNotifications(ctx, client, notifier, params, nil, &out)
		gomega.Expect(code).To(gomega.Equal(actions.ExitFailure))
		gomega.Expect(metric).To(gomega.BeNil())
		gomega.Expect(notifier.reports).To(gomega.BeEmpty())
		gomega.Expect(out.String()).To(gomega.BeEmpty())

		logs, err := filepath.Glob(filepath.Join(baseDir, "logs", "*.log"))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(logs).To(gomega.HaveLen(1))

		content, err := os.ReadFile(logs[0])
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		gomega.Expect(lines).To(gomega.HaveLen(1))
		gomega.Expect(lines[0]).To(gomega.ContainSubstring("level=error"))
		gomega.Expect(lines[0]).To(gomega.ContainSubstring("no containers selected for backup"))

		matches, _ := filepath.Glob(filepath.Join(baseDir, "*.zip"))
		gomega.Expect(matches).To(gomega.BeEmpty())
	})

	ginkgo.It("should report an error metric when the host tree cannot be prepared", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n"}})
		notifier := &recordingNotifier{}

		blocker := filepath.Join(baseDir, "blocker")
		gomega.Expect(os.WriteFile(blocker, []byte("x"), 0o644)).To(gomega.Succeed())

		params.BaseDir = blocker

		var out bytes.Buffer

		metric, code := actions.RunBackupWithNotifications(ctx, client, notifier, params, nil, &out)
		gomega.Expect(code).To(gomega.Equal(actions.ExitFailure))
		gomega.Expect(metric).ToNot(gomega.BeNil())
		gomega.Expect(metric.Status).To(gomega.Equal(types.OverallError))
		gomega.Expect(metric.Selected).To(gomega.BeZero())
		gomega.Expect(metric.Archived).To(gomega.BeFalse())
		gomega.Expect(notifier.reports).To(gomega.BeEmpty())
	})

	ginkgo.It("should notify and exit 1 when no container succeeded", func() {
		client := mocks.CreateMockClient(&mocks.TestData{
			Running: []string{"n8n"},
			Exports: map[string]map[types.Category]mocks.ExportBehavior{
				"n8n": {types.Credentials: mocks.FailingExport()},
			},
		})
		notifier := &recordingNotifier{}

		var out bytes.Buffer

		_, code := actions.RunBackupWithNotifications(ctx, client, notifier, params, nil, &out)
		gomega.Expect(code).To(gomega.Equal(actions.ExitFailure))
		gomega.Expect(notifier.reports).To(gomega.HaveLen(1))
		gomega.Expect(notifier.reports[0].Status()).To(gomega.Equal(types.OverallError))
		gomega.Expect(out.String()).To(gomega.ContainSubstring("Archive:   (none)"))
	})

	ginkgo.It("should exit 0 on partial success", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n-a", "n8n-b"}})
		params.Containers = []string{"n8n-missing"}

		var out bytes.Buffer

		_, code := actions.RunBackupWithNotifications(ctx, client, nil, params, nil, &out)
		gomega.Expect(code).To(gomega.Equal(actions.ExitSuccess))
		gomega.Expect(out.String()).To(gomega.ContainSubstring("Skipped:   1"))
	})
})
