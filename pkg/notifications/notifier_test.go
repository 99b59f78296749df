package notifications_test

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/n8n-backup/internal/flags"
	"github.com/nicholas-fedor/n8n-backup/pkg/notifications"
	"github.com/nicholas-fedor/n8n-backup/pkg/session"
	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

func newCommand(args ...string) *cobra.Command {
	command := &cobra.Command{}
	flags.RegisterNotificationFlags(command)
	gomega.Expect(command.ParseFlags(args)).To(gomega.Succeed())

	return command
}

var _ = ginkgo.Describe("notifications", func() {
	ginkgo.Describe("the notifier", func() {
		ginkgo.When("no channel is enabled", func() {
			ginkgo.It("should have no names", func() {
				notifier := notifications.NewNotifier(newCommand())
				gomega.Expect(notifier.GetNames()).To(gomega.BeEmpty())
			})
		})

		ginkgo.When("email and webhook are enabled", func() {
			ginkgo.It("should list both channels", func() {
				notifier := notifications.NewNotifier(newCommand(
					"--email",
					"--email-to", "ops@example.com",
					"--webhook",
					"--webhook-url", "https://hooks.example.com",
				))
				gomega.Expect(notifier.GetNames()).To(gomega.Equal([]string{"email", "webhook"}))
			})
		})
	})

	ginkgo.Describe("ParseRecipients", func() {
		ginkgo.It("should split on semicolons, commas and whitespace", func() {
			gomega.Expect(notifications.ParseRecipients("a@x.com; b@y.com, c@z.com")).
				To(gomega.Equal([]string{"a@x.com", "b@y.com", "c@z.com"}))
		})

		ginkgo.It("should drop empty tokens", func() {
			gomega.Expect(notifications.ParseRecipients(";; ,a@x.com,,\n")).
				To(gomega.Equal([]string{"a@x.com"}))
		})

		ginkgo.It("should return nothing for a blank list", func() {
			gomega.Expect(notifications.ParseRecipients(" , ; ")).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("GetSubject", func() {
		ginkgo.It("should prefix the tag", func() {
			gomega.Expect(notifications.GetSubject("prod", types.OverallSuccess, "2026-10-18")).
				To(gomega.Equal("[prod] n8n backup SUCCESS - 2026-10-18"))
		})

		ginkgo.It("should omit an empty tag", func() {
			gomega.Expect(notifications.GetSubject("", types.OverallError, "2026-10-18")).
				To(gomega.Equal("n8n backup ERROR - 2026-10-18"))
		})
	})

	ginkgo.Describe("RenderEmail", func() {
		var report types.Report

		ginkgo.BeforeEach(func() {
			tracker := session.NewTracker()
			tracker.Record("n8n-main", types.Workflows, types.ExportResult{Status: types.StatusSuccess, Count: 12})
			tracker.Record("n8n-main", types.Credentials, types.ExportResult{Status: types.StatusSuccess, Count: 3})
			tracker.RecordSkippedContainer("n8n-<old>", nil)
			report = session.NewReport(tracker, session.RunInfo{
				Timestamp: "2026-10-18_03-00-00",
				StartedAt: time.Date(2026, 10, 18, 3, 0, 0, 0, time.UTC),
			})
		})

		ginkgo.It("should render one row per container with status cells", func() {
			body, err := notifications.RenderEmail(report)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(body).To(gomega.ContainSubstring(`<td class="success">SUCCESS (12)</td>`))
			gomega.Expect(body).To(gomega.ContainSubstring(`<td class="success">SUCCESS (3)</td>`))
			gomega.Expect(body).To(gomega.ContainSubstring(`<td class="skipped">SKIPPED (0)</td>`))
			gomega.Expect(body).To(gomega.ContainSubstring("<th>Workflows</th>"))
			gomega.Expect(body).To(gomega.ContainSubstring("Archive: none"))
		})

		ginkgo.It("should escape container names", func() {
			body, err := notifications.RenderEmail(report)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(body).To(gomega.ContainSubstring("n8n-&lt;old&gt;"))
		})
	})

	ginkgo.Describe("NewWebhookPayload", func() {
		ginkgo.It("should report completed unless status reporting is on", func() {
			tracker := session.NewTracker()
			tracker.Record("n8n", types.Workflows, types.ExportResult{Status: types.StatusFailed})
			tracker.Record("n8n", types.Credentials, types.ExportResult{Status: types.StatusFailed})
			report := session.NewReport(tracker, session.RunInfo{Timestamp: "ts"})

			gomega.Expect(notifications.NewWebhookPayload(report, false).Status).To(gomega.Equal("completed"))
			gomega.Expect(notifications.NewWebhookPayload(report, true).Status).To(gomega.Equal("error"))
		})
	})
})
