package notifications

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// Config selects and configures the notification channels. A nil channel config disables it.
type Config struct {
	Email   *EmailConfig
	Webhook *WebhookConfig
}

// channel is one enabled notification target.
type channel interface {
	Name() string
	Send(report types.Report) error
}

// nullNotifier is used when no channel is enabled.
type nullNotifier struct{}

func (nullNotifier) GetNames() []string { return nil }

func (nullNotifier) SendNotification(types.Report) {}

// compositeNotifier delivers the report to every enabled channel in turn.
type compositeNotifier struct {
	channels []channel
}

// GetNames returns the names of the enabled channels.
func (n *compositeNotifier) GetNames() []string {
	names := make([]string, 0, len(n.channels))
	for _, ch := range n.channels {
		names = append(names, ch.Name())
	}

	return names
}

// SendNotification sends the report through every channel. Failures are logged
// and never affect the backup outcome.
func (n *compositeNotifier) SendNotification(report types.Report) {
	for _, ch := range n.channels {
		clog := logrus.WithField("notifier", ch.Name())

		if err := ch.Send(report); err != nil {
			clog.WithError(err).Error("Failed to send notification")

			continue
		}

		clog.Info("Notification sent")
	}
}

// NewNotifier creates and returns a new Notifier from the command's flags.
func NewNotifier(c *cobra.Command) types.Notifier {
	flags := c.Flags()

	config := Config{}

	if enabled, _ := flags.GetBool("email"); enabled {
		email := &EmailConfig{}
		email.Server, _ = flags.GetString("email-server")
		email.Port, _ = flags.GetInt("email-server-port")
		email.User, _ = flags.GetString("email-server-user")
		email.Password, _ = flags.GetString("email-server-password")
		email.From, _ = flags.GetString("email-from")
		email.To, _ = flags.GetString("email-to")
		email.SubjectTag, _ = flags.GetString("email-subject-tag")
		email.Plaintext, _ = flags.GetBool("email-server-plaintext")
		config.Email = email
	}

	if enabled, _ := flags.GetBool("webhook"); enabled {
		webhook := &WebhookConfig{}
		webhook.URL, _ = flags.GetString("webhook-url")
		webhook.ReportStatus, _ = flags.GetBool("webhook-report-status")
		config.Webhook = webhook
	}

	return New(config)
}

// New creates a notifier for the enabled channels in config.
//
// Parameters:
//   - config: Channel settings.
//
// Returns:
//   - types.Notifier: A no-op notifier when no channel is enabled, otherwise one sending to each channel.
func New(config Config) types.Notifier {
	return newNotifier(config, newShoutrrrRouter)
}

func newNotifier(config Config, newRouter routerFactory) types.Notifier {
	channels := make([]channel, 0, 2) //nolint:mnd

	if config.Email != nil {
		channels = append(channels, &emailChannel{config: *config.Email, newRouter: newRouter})
	}

	if config.Webhook != nil {
		channels = append(channels, &webhookChannel{config: *config.Webhook, newRouter: newRouter})
	}

	if len(channels) == 0 {
		logrus.Debug("No notification channel enabled")

		return nullNotifier{}
	}

	notifier := &compositeNotifier{channels: channels}
	logrus.WithField("notifiers", notifier.GetNames()).Debug("Created notifier")

	return notifier
}
