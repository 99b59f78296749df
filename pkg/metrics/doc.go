// Package metrics provides tracking and exposure of n8n-backup run metrics.
// It integrates with Prometheus to monitor run outcomes: selected, succeeded,
// failed and skipped containers, exported items and the last run's status.
//
// Key components:
//   - Metrics: Handles metric queuing, updates and textfile export.
//   - NewMetric: Creates metrics from run reports.
//
// Usage example:
//
//	m := metrics.Default()
//	m.RegisterRun(metrics.NewMetric(report))
//	if err := m.WriteTextfile("/var/lib/node_exporter/n8n_backup.prom"); err != nil {
//	    logrus.WithError(err).Warn("Failed to write metrics")
//	}
//
// The package uses Prometheus for metrics exposure and integrates with types.Report.
package metrics
