package types

// Notifier defines the common interface for notification strategies.
type Notifier interface {
	GetNames() []string             // Enabled channel names.
	SendNotification(report Report) // Deliver a finished run's results; failures are only logged.
}
