// Package logging provides the startup message and the per-run log file of n8n-backup.
// It reports version, runtime, notifier and schedule information at startup and copies
// every entry of a backup run into <base>/logs/<timestamp>.log.
package logging

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/n8n-backup/internal/util"
	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// WriteStartupMessage logs startup information based on configuration flags.
//
// It reports the version, the Docker API version, notification setup, container
// selection, scheduling information and HTTP API status.
//
// Parameters:
//   - c: The cobra.Command instance, providing access to flags like --no-startup-message.
//   - sched: The time.Time of the first scheduled run, or zero if no schedule is set.
//   - client: The runtime client used to retrieve API version information.
//   - notifier: The configured notifier.
//   - version: The version string to include in the message.
func WriteStartupMessage(
	c *cobra.Command,
	sched time.Time,
	client types.Client,
	notifier types.Notifier,
	version string,
) {
	noStartupMessage, _ := c.PersistentFlags().GetBool("no-startup-message")
	if noStartupMessage {
		return
	}

	log := logrus.NewEntry(logrus.StandardLogger())

	var apiVersion string
	if client != nil {
		apiVersion = client.GetVersion()
	}

	log.Info("n8n-backup ", version, " using Docker API v", apiVersion)

	var notifierNames []string
	if notifier != nil {
		notifierNames = notifier.GetNames()
	}

	LogNotifierInfo(log, notifierNames)
	LogSelectionInfo(log, c)
	LogScheduleInfo(log, sched)

	if enableMetricsAPI, _ := c.PersistentFlags().GetBool("http-api-metrics"); enableMetricsAPI {
		host, _ := c.PersistentFlags().GetString("http-api-host")
		port, _ := c.PersistentFlags().GetString("http-api-port")

		log.Info(fmt.Sprintf("The metrics API is enabled at %s:%s.", host, port))
	}

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		log.Warn("Trace level enabled: log will include sensitive information as credentials and tokens")
	}
}

// LogNotifierInfo logs the configured notification channels.
//
// Parameters:
//   - log: The logrus.Entry used to write the notification information.
//   - notifierNames: Names of the enabled channels.
func LogNotifierInfo(log *logrus.Entry, notifierNames []string) {
	if len(notifierNames) > 0 {
		log.Info("Using notifications: " + strings.Join(notifierNames, ", "))
	} else {
		log.Info("Using no notifications")
	}
}

// LogSelectionInfo logs how containers will be selected.
func LogSelectionInfo(log *logrus.Entry, c *cobra.Command) {
	manual, _ := c.PersistentFlags().GetStringSlice("containers")
	autoDetect, _ := c.PersistentFlags().GetBool("auto-detect")
	nameFilter, _ := c.PersistentFlags().GetString("name-filter")

	fields := logrus.Fields{"containers": manual}

	if autoDetect {
		fields["name_filter"] = nameFilter
		log.WithFields(fields).Debug("Backing up configured containers and auto-detected matches")

		return
	}

	log.WithFields(fields).Debug("Backing up configured containers only")
}

// LogScheduleInfo logs information about the scheduling or run mode configuration.
//
// Parameters:
//   - log: The logrus.Entry used to write the schedule information.
//   - sched: The time.Time of the first scheduled run, or zero for a single run.
func LogScheduleInfo(log *logrus.Entry, sched time.Time) {
	if sched.IsZero() {
		log.Info("Running a one time backup.")

		return
	}

	until := util.FormatDuration(time.Until(sched))
	log.Info("Scheduling first backup: " + sched.Format("2006-01-02 15:04:05 -0700 MST"))
	log.Info("Note that the first backup will be performed in " + until)
}
