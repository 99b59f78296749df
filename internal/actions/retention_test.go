package actions_test

import (
	"os"
	"path/filepath"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/n8n-backup/internal/actions"
)

var _ = ginkgo.Describe("PruneArchives", func() {
	var baseDir string

	touch := func(name string) string {
		path := filepath.Join(baseDir, name)
		gomega.Expect(os.WriteFile(path, []byte("x"), 0o644)).To(gomega.Succeed())

		return path
	}

	ginkgo.BeforeEach(func() {
		baseDir = ginkgo.GinkgoT().TempDir()
	})

	ginkgo.It("should keep the newest archives", func() {
		oldest := touch("2026-01-01_00-00-00.zip")
		older := touch("2026-02-01_00-00-00_unencrypted.zip")
		newer := touch("2026-03-01_00-00-00.zip")
		newest := touch("2026-04-01_00-00-00.zip")
		other := touch("notes.txt")

		removed, err := actions.PruneArchives(baseDir, 2, newest)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(removed).To(gomega.ConsistOf(oldest, older))
		gomega.Expect(newer).To(gomega.BeAnExistingFile())
		gomega.Expect(newest).To(gomega.BeAnExistingFile())
		gomega.Expect(other).To(gomega.BeAnExistingFile())
	})

	ginkgo.It("should ignore zip files that are not run archives", func() {
		current := touch("2026-10-18_03-00-00.zip")
		foreign := touch("manual-export.zip")
		renamed := touch("2026-10-18_backup.zip")

		removed, err := actions.PruneArchives(baseDir, 1, current)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(removed).To(gomega.BeEmpty())
		gomega.Expect(current).To(gomega.BeAnExistingFile())
		gomega.Expect(foreign).To(gomega.BeAnExistingFile())
		gomega.Expect(renamed).To(gomega.BeAnExistingFile())
	})

	ginkgo.It("should never remove the current archive", func() {
		current := touch("2026-01-01_00-00-00_unencrypted.zip")
		later := touch("2026-05-01_00-00-00.zip")

		removed, err := actions.PruneArchives(baseDir, 1, current)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(removed).To(gomega.ConsistOf(later))
		gomega.Expect(current).To(gomega.BeAnExistingFile())
	})

	ginkgo.It("should keep everything when keep is zero", func() {
		archive := touch("2026-01-01_00-00-00.zip")

		removed, err := actions.PruneArchives(baseDir, 0, "")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(removed).To(gomega.BeEmpty())
		gomega.Expect(archive).To(gomega.BeAnExistingFile())
	})

	ginkgo.It("should fail for a missing directory", func() {
		_, err := actions.PruneArchives(filepath.Join(baseDir, "missing"), 1, "")
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
