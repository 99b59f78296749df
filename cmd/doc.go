// Package cmd contains the command-line interface (CLI) definitions and execution logic for n8n-backup.
//
// Key components:
//   - rootCmd: Root command performing one backup run, or running on a cron schedule.
//   - RunConfig: Struct for configuring execution.
//
// Usage example:
//   - Run the CLI from main.go:
//     cmd.Execute()
//
// The package integrates with the actions, container, notifications, offsite and flags packages,
// using Cobra for CLI parsing and logrus for logging. The process exits 1 when no container was
// selected, no container succeeded or no archive was produced.
package cmd
