// Package types defines core interfaces and structs for n8n-backup.
// It provides abstractions for the container runtime, export results, session reporting, and notifications.
//
// Key components:
//   - Client: Interface for the container runtime operations a backup run needs.
//   - Category: The two kinds of data exported per container (workflows, credentials).
//   - ExportResult: Per container and category outcome (status and item count).
//   - Report: Interface for a finished run (per-container results, overall status, archive).
//   - Notifier: Interface for notification strategies (null, email and webhook).
//   - BackupParams: Struct for configuring a backup run.
//
// Usage example:
//
//	var client types.Client
//	params := types.BackupParams{BaseDir: "./backups", AutoDetect: true, NameFilter: "n8n"}
//	report, err := actions.Backup(ctx, client, params)
//	notifier.SendNotification(report)
//
// The package integrates with container, session, archive and notifications packages,
// using logrus for logging where implemented.
package types
