// Package scheduling runs n8n-backup on a cron schedule.
// It guards runs with a single-slot lock so they never overlap, and stops on
// interrupt signals or context cancellation once the in-flight run has finished.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// cancelGracePeriod bounds the wait for a run interrupted by context cancellation.
const cancelGracePeriod = 60 * time.Second

// errEmptySchedule indicates scheduled mode was requested without a cron expression.
var errEmptySchedule = errors.New("schedule is empty")

// NewLock returns an available single-run lock.
func NewLock() chan bool {
	lock := make(chan bool, 1)
	lock <- true

	return lock
}

// WaitForRunningBackup blocks until a backup holding the lock has finished.
//
// When ctx is cancelled the running backup is expected to stop early, so the
// wait is then bounded by a grace period.
//
// Parameters:
//   - ctx: Context whose cancellation bounds the wait.
//   - lock: The channel used to synchronize runs, holding a value when no run is active.
func WaitForRunningBackup(ctx context.Context, lock chan bool) {
	if len(lock) > 0 {
		logrus.Debug("No backup running, lock available.")

		return
	}

	logrus.Info("Waiting for the running backup to finish")

	select {
	case v := <-lock:
		lock <- v
	case <-ctx.Done():
		select {
		case v := <-lock:
			lock <- v
		case <-time.After(cancelGracePeriod):
			logrus.Warn("Timeout waiting for running backup to finish, proceeding with shutdown.")

			return
		}
	}

	logrus.Debug("Running backup finished.")
}

// TryRun executes run if no other run holds the lock.
//
// Parameters:
//   - ctx: Context passed to run.
//   - lock: Single-run lock.
//   - run: The backup run.
//
// Returns:
//   - bool: False if another run was in progress and this one was skipped.
func TryRun(ctx context.Context, lock chan bool, run func(context.Context)) bool {
	select {
	case v := <-lock:
		defer func() { lock <- v }()

		run(ctx)

		return true
	default:
		logrus.Warn("Skipped backup, another backup is still running.")

		return false
	}
}

// RunBackupsOnSchedule schedules and executes periodic backups according to a cron expression.
//
// It blocks until SIGINT, SIGTERM or ctx cancellation, then stops the scheduler
// and waits for the in-flight run.
//
// Parameters:
//   - ctx: The context controlling the scheduler's lifecycle.
//   - c: The cobra.Command instance, providing access to flags for startup messaging.
//   - lock: A channel ensuring only one run executes at a time, or nil to create a new one.
//   - scheduleSpec: The cron expression deciding when backups run.
//   - writeStartupMessage: Function writing the startup message with the first run time.
//   - runBackup: Function performing one backup run.
//   - client: The runtime client, used in startup messaging.
//   - notifier: The notifier, used in startup messaging.
//   - version: The version string, used in startup messaging.
//
// Returns:
//   - error: An error if the schedule is empty or invalid, nil on shutdown.
func RunBackupsOnSchedule(
	ctx context.Context,
	c *cobra.Command,
	lock chan bool,
	scheduleSpec string,
	writeStartupMessage func(*cobra.Command, time.Time, types.Client, types.Notifier, string),
	runBackup func(context.Context),
	client types.Client,
	notifier types.Notifier,
	version string,
) error {
	if scheduleSpec == "" {
		return errEmptySchedule
	}

	if lock == nil {
		lock = NewLock()
	}

	scheduler := cron.New()

	err := scheduler.AddFunc(scheduleSpec, func() {
		TryRun(ctx, lock, runBackup)

		if nextRuns := scheduler.Entries(); len(nextRuns) > 0 {
			logrus.Debug("Scheduled next run: " + nextRuns[0].Next.String())
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backups: %w", err)
	}

	nextRun := scheduler.Entries()[0].Schedule.Next(time.Now())
	writeStartupMessage(c, nextRun, client, notifier, version)

	scheduler.Start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	defer signal.Stop(interrupt)

	select {
	case <-ctx.Done():
		logrus.Debug("Context canceled, stopping scheduler...")
	case sig := <-interrupt:
		logrus.WithField("signal", sig.String()).Info("Received signal, stopping scheduler...")
	}

	scheduler.Stop()
	WaitForRunningBackup(ctx, lock)

	logrus.Debug("Scheduler stopped.")

	return nil
}
