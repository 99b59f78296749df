package notifications

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

const (
	webhookType = "webhook"
	// completedStatus is the status sent unless the overall status is reported.
	completedStatus = "completed"
)

// WebhookConfig holds the webhook endpoint settings.
type WebhookConfig struct {
	URL string
	// ReportStatus sends the lowercased overall status instead of "completed"
	// and fires even when no archive was produced.
	ReportStatus bool
}

// WebhookPayload is the JSON body posted to the webhook.
type WebhookPayload struct {
	BackupFile string `json:"backup_file"`
	Timestamp  string `json:"timestamp"`
	Status     string `json:"status"`
}

// webhookChannel posts the run outcome to an HTTP endpoint.
type webhookChannel struct {
	config    WebhookConfig
	newRouter routerFactory
}

// NewWebhookPayload builds the payload for a finished run.
func NewWebhookPayload(report types.Report, reportStatus bool) WebhookPayload {
	status := completedStatus
	if reportStatus {
		status = strings.ToLower(string(report.Status()))
	}

	return WebhookPayload{
		BackupFile: report.ArchivePath(),
		Timestamp:  report.Timestamp(),
		Status:     status,
	}
}

// GetURL returns the Shoutrrr generic service URL for the configured endpoint.
func (w *webhookChannel) GetURL() (string, error) {
	if w.config.URL == "" {
		return "", errMissingWebhookURL
	}

	return "generic+" + w.config.URL, nil
}

func (w *webhookChannel) Name() string {
	return webhookType
}

// Send posts the payload when an archive exists, or always when reporting status.
func (w *webhookChannel) Send(report types.Report) error {
	if report.ArchivePath() == "" && !w.config.ReportStatus {
		logrus.Debug("No archive produced, skipping webhook")

		return nil
	}

	url, err := w.GetURL()
	if err != nil {
		return err
	}

	body, err := json.Marshal(NewWebhookPayload(report, w.config.ReportStatus))
	if err != nil {
		return fmt.Errorf("%w: %w", errRenderFailed, err)
	}

	logrus.WithField("backup_file", report.ArchivePath()).Debug("Sending webhook notification")

	return send(w.newRouter, url, string(body), nil)
}
