package actions_test

import (
	"context"
	"path/filepath"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/n8n-backup/internal/actions"
	"github.com/nicholas-fedor/n8n-backup/internal/actions/mocks"
	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// fixedCountParser always reports the same count.
type fixedCountParser int

func (p fixedCountParser) Count(string) int { return int(p) }

func defaultParams(baseDir string) types.BackupParams {
	return types.BackupParams{
		AutoDetect:      true,
		NameFilter:      "n8n",
		WorkflowsPath:   "/tmp/n8n-backup/workflows",
		CredentialsPath: "/tmp/n8n-backup/credentials",
		ExecUser:        "node",
		BaseDir:         baseDir,
		Password:        "secret",
	}
}

var _ = ginkgo.Describe("PhraseCountParser", func() {
	parser := actions.PhraseCountParser{}

	ginkgo.It("should read the first success count", func() {
		output := "Loading\nSuccessfully exported 12 workflows.\nSuccessfully exported 3 workflows."
		gomega.Expect(parser.Count(output)).To(gomega.Equal(12))
	})
	ginkgo.It("should return 0 when no count is printed", func() {
		gomega.Expect(parser.Count("No workflows found")).To(gomega.Equal(0))
	})
	ginkgo.It("should return 0 for an empty output", func() {
		gomega.Expect(parser.Count("")).To(gomega.Equal(0))
	})
})

var _ = ginkgo.Describe("the exporter", func() {
	var (
		ctx     context.Context
		hostDir string
		params  types.BackupParams
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		hostDir = filepath.Join(ginkgo.GinkgoT().TempDir(), "n8n", "workflows")
		params = defaultParams(ginkgo.GinkgoT().TempDir())
	})

	ginkgo.It("should export, copy and clean up on success", func() {
		client := mocks.CreateMockClient(&mocks.TestData{
			Running: []string{"n8n"},
			Exports: map[string]map[types.Category]mocks.ExportBehavior{
				"n8n": {types.Workflows: mocks.SucceedingExport(types.Workflows, 7)},
			},
		})

		result := actions.ExportCategory(ctx, client, params, "n8n", types.Workflows, hostDir)
		gomega.Expect(result).To(gomega.Equal(types.ExportResult{Status: types.StatusSuccess, Count: 7}))
		gomega.Expect(client.TestData.Commands).To(gomega.Equal([]string{
			"n8n: mkdir -p /tmp/n8n-backup/workflows",
			"n8n: n8n export:workflow --all --separate --output=/tmp/n8n-backup/workflows",
			"n8n: rm -rf /tmp/n8n-backup/workflows",
		}))
		gomega.Expect(filepath.Join(hostDir, "1.json")).To(gomega.BeAnExistingFile())
	})

	ginkgo.It("should pass the decrypted flag for credentials when enabled", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n"}})
		params.DecryptCredentials = true

		actions.ExportCategory(ctx, client, params, "n8n", types.Credentials, hostDir)
		gomega.Expect(client.TestData.Commands).To(gomega.ContainElement(
			"n8n: n8n export:credentials --all --separate --output=/tmp/n8n-backup/credentials --decrypted",
		))
	})

	ginkgo.It("should fail with a zero count when the export exits non-zero", func() {
		client := mocks.CreateMockClient(&mocks.TestData{
			Running: []string{"n8n"},
			Exports: map[string]map[types.Category]mocks.ExportBehavior{
				"n8n": {types.Workflows: {Output: "Successfully exported 4 workflows.\nboom", ExitCode: 2}},
			},
		})

		result := actions.ExportCategory(ctx, client, params, "n8n", types.Workflows, hostDir)
		gomega.Expect(result).To(gomega.Equal(types.ExportResult{Status: types.StatusFailed, Count: 0}))
		gomega.Expect(client.TestData.Copies).To(gomega.BeEmpty())
	})

	ginkgo.It("should fail when the directory cannot be created", func() {
		client := mocks.CreateMockClient(&mocks.TestData{
			Running:    []string{"n8n"},
			MkdirFails: map[string]bool{"n8n": true},
		})

		result := actions.ExportCategory(ctx, client, params, "n8n", types.Workflows, hostDir)
		gomega.Expect(result.Status).To(gomega.Equal(types.StatusFailed))
		gomega.Expect(client.TestData.Commands).To(gomega.HaveLen(1))
	})

	ginkgo.It("should fail when the copy fails", func() {
		client := mocks.CreateMockClient(&mocks.TestData{
			Running: []string{"n8n"},
			Exports: map[string]map[types.Category]mocks.ExportBehavior{
				"n8n": {types.Workflows: {Output: "Successfully exported 2 workflows.", CopyErr: mocks.ErrCopyFailed}},
			},
		})

		result := actions.ExportCategory(ctx, client, params, "n8n", types.Workflows, hostDir)
		gomega.Expect(result).To(gomega.Equal(types.ExportResult{Status: types.StatusFailed, Count: 0}))
		gomega.Expect(client.TestData.Commands).ToNot(gomega.ContainElement(gomega.ContainSubstring("rm -rf")))
	})

	ginkgo.It("should succeed with a zero count when no count is printed", func() {
		client := mocks.CreateMockClient(&mocks.TestData{
			Running: []string{"n8n"},
			Exports: map[string]map[types.Category]mocks.ExportBehavior{
				"n8n": {types.Workflows: {Output: "done"}},
			},
		})

		result := actions.ExportCategory(ctx, client, params, "n8n", types.Workflows, hostDir)
		gomega.Expect(result).To(gomega.Equal(types.ExportResult{Status: types.StatusSuccess, Count: 0}))
	})

	ginkgo.It("should use a custom count parser", func() {
		client := mocks.CreateMockClient(&mocks.TestData{Running: []string{"n8n"}})

		result := actions.NewExporter(client, params, fixedCountParser(42)).Export(ctx, "n8n", types.Workflows, hostDir)
		gomega.Expect(result.Count).To(gomega.Equal(42))
	})
})
