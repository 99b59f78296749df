// Package actions provides the backup run of n8n-backup.
// It selects containers, exports their workflows and credentials, archives the
// results and reports the outcome.
//
// Key components:
//   - SelectContainers: Resolves the ordered, de-duplicated container list.
//   - Exporter: Exports one category of one container and copies it to the host.
//   - Backup: Runs the export loop, the archive step and cleanup, returning a report.
//   - RunBackupWithNotifications: Wraps Backup with the run log, notification and summary.
//   - PruneArchives: Keeps only the newest archives.
//
// Usage example:
//
//	metric, code := actions.RunBackupWithNotifications(ctx, client, notifier, params, nil, os.Stdout)
//	metrics.Default().RegisterRun(metric)
//	os.Exit(code)
//
// The package integrates with container, session, archive, notifications and metrics
// packages, using logrus for logging operations and errors.
package actions
