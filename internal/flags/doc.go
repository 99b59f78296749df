// Package flags manages command-line flags and environment variables for n8n-backup configuration.
// It configures the Docker connection, the backup run, scheduling, offsite upload and notifications
// via Cobra and Viper.
//
// Key components:
//   - RegisterDockerFlags: Adds Docker API client flags.
//   - RegisterSystemFlags: Adds backup, scheduling, API, storage and logging flags.
//   - RegisterNotificationFlags: Adds email and webhook settings.
//   - ReadBackupParams: Collects the run settings into types.BackupParams.
//   - SetupLogging: Configures logrus based on flags.
//
// Usage example:
//
//	cmd := &cobra.Command{}
//	flags.SetDefaults()
//	flags.RegisterSystemFlags(cmd)
//	err := flags.SetupLogging(cmd.PersistentFlags())
//	if err != nil {
//	    logrus.WithError(err).Fatal("Logging setup failed")
//	}
//
// Every flag defaults to an N8N_BACKUP_ environment variable bound through Viper.
package flags
