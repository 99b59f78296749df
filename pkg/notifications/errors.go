package notifications

import "errors"

// Errors for notification configuration and delivery.
var (
	// ErrNoRecipients indicates the configured recipient list holds no address after parsing.
	ErrNoRecipients = errors.New("no valid email recipients configured")
	// errInvalidPortRange indicates that the specified SMTP port is outside the valid range (0-65535).
	errInvalidPortRange = errors.New("port out of valid range (0-65535)")
	// errMissingWebhookURL indicates the webhook channel is enabled without a URL.
	errMissingWebhookURL = errors.New("webhook URL is empty")
	// errCreateRouterFailed indicates the shoutrrr sender could not be created.
	errCreateRouterFailed = errors.New("failed to create notification sender")
	// errRenderFailed indicates the notification body could not be rendered.
	errRenderFailed = errors.New("failed to render notification")
	// errSendFailed indicates the notification service rejected the message.
	errSendFailed = errors.New("failed to send notification")
)
