// Package notifications delivers the outcome of a backup run.
//
// Two channels are supported, both sent through Shoutrrr:
//   - email: an HTML table with one row per container, submitted over SMTP.
//   - webhook: a JSON payload naming the archive, posted through the generic service.
//
// NewNotifier returns a no-op notifier when neither channel is enabled.
// Delivery errors are logged and never change the backup result.
package notifications
