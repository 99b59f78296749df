package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/nicholas-fedor/n8n-backup/internal/actions"
	internalAPI "github.com/nicholas-fedor/n8n-backup/internal/api"
	"github.com/nicholas-fedor/n8n-backup/internal/flags"
	"github.com/nicholas-fedor/n8n-backup/internal/logging"
	"github.com/nicholas-fedor/n8n-backup/internal/meta"
	"github.com/nicholas-fedor/n8n-backup/internal/scheduling"
	"github.com/nicholas-fedor/n8n-backup/pkg/container"
	"github.com/nicholas-fedor/n8n-backup/pkg/metrics"
	"github.com/nicholas-fedor/n8n-backup/pkg/notifications"
	"github.com/nicholas-fedor/n8n-backup/pkg/offsite"
	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// defaultAPIPort is used when --http-api-port is empty.
const defaultAPIPort = "8080"

// errNoTerminal indicates the password prompt was requested without an interactive terminal.
var errNoTerminal = errors.New("standard input is not a terminal")

// client is the Docker client used for every container operation.
//
// It is initialized during preRun from DOCKER_HOST, DOCKER_TLS_VERIFY,
// DOCKER_CERT_PATH and DOCKER_API_VERSION.
var client types.Client

// notifier delivers run reports to the enabled email and webhook channels.
var notifier types.Notifier

// scheduleSpec holds the cron expression for scheduled mode, empty for a single run.
var scheduleSpec string

// rootCmd represents the root command for the n8n-backup CLI.
var rootCmd = NewRootCommand()

// RunConfig encapsulates the configuration parameters for the runMain function.
type RunConfig struct {
	// Command is the cobra.Command instance representing the executed command.
	Command *cobra.Command
	// Params holds the backup run settings.
	Params types.BackupParams
	// Uploader copies archives offsite, nil when no bucket is configured.
	Uploader actions.Uploader
	// Schedule is the cron expression, empty for a single run.
	Schedule string
	// MetricsTextfile receives the metrics after each run when set.
	MetricsTextfile string
	// EnableMetricsAPI serves metrics over HTTP in scheduled mode.
	EnableMetricsAPI bool
	// APIToken is the authentication token for HTTP API access.
	APIToken string
	// APIHost is the host to bind the HTTP API to.
	APIHost string
	// APIPort is the port for the HTTP API server.
	APIPort string
}

// NewRootCommand creates and configures the root command for the n8n-backup CLI.
//
// Positional arguments are additional container names appended to the selection.
//
// Returns:
//   - *cobra.Command: The root command, ready for flag registration and execution.
func NewRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "n8n-backup [container...]",
		Short:  "Backs up workflows and credentials of running n8n containers",
		Long:   "\nn8n-backup exports workflows and credentials from running n8n containers,\ncollects them on the host and packs them into a password-protected archive.",
		Run:    run,
		PreRun: preRun,
		Args:   cobra.ArbitraryArgs,
	}
}

// init registers command-line flags for the root command during package initialization.
func init() {
	flags.SetDefaults()
	flags.RegisterDockerFlags(rootCmd)
	flags.RegisterSystemFlags(rootCmd)
	flags.RegisterNotificationFlags(rootCmd)
}

// Execute runs the root command and manages any errors encountered during its execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("Failed to execute root command")
	}
}

// preRun prepares logging, secrets, the Docker client and the notifier.
func preRun(cmd *cobra.Command, _ []string) {
	flagsSet := cmd.PersistentFlags()
	flags.ProcessFlagAliases(flagsSet)

	if err := flags.SetupLogging(flagsSet); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logging")
	}

	scheduleSpec, _ = flagsSet.GetString("schedule")
	logrus.WithField("scheduleSpec", scheduleSpec).Debug("Retrieved cron schedule specification from flags")

	flags.GetSecretsFromFiles(cmd)

	if err := flags.EnvConfig(cmd); err != nil {
		logrus.WithError(err).Fatal("Failed to configure Docker environment")
	}

	tlsVerify, _ := flagsSet.GetBool("tlsverify")

	var err error

	client, err = container.NewClient(container.ClientOptions{
		TLSVerify: tlsVerify,
		CertPath:  os.Getenv("DOCKER_CERT_PATH"),
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create Docker client")
	}

	notifier = notifications.NewNotifier(cmd)
}

// run reads the run configuration and exits with the outcome of runMain.
func run(c *cobra.Command, names []string) {
	flagsSet := c.PersistentFlags()

	params, err := flags.ReadBackupParams(c, names)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid backup configuration")
	}

	params.Password, err = resolvePassword(flagsSet, readTerminalPassword)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to read archive password")
	}

	uploader, err := newUploader(c.Context(), flagsSet)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure offsite upload")
	}

	enableMetricsAPI, _ := flagsSet.GetBool("http-api-metrics")
	apiToken, _ := flagsSet.GetString("http-api-token")
	apiHost, _ := flagsSet.GetString("http-api-host")
	apiPort, _ := flagsSet.GetString("http-api-port")
	metricsTextfile, _ := flagsSet.GetString("metrics-textfile")

	if apiHost != "" && net.ParseIP(apiHost) == nil {
		logrus.Fatalf(
			"invalid http-api-host '%s': must be empty or a valid IP address (IPv4 or IPv6)",
			apiHost,
		)
	}

	if apiPort == "" {
		apiPort = defaultAPIPort
	}

	cfg := RunConfig{
		Command:          c,
		Params:           params,
		Uploader:         uploader,
		Schedule:         scheduleSpec,
		MetricsTextfile:  metricsTextfile,
		EnableMetricsAPI: enableMetricsAPI,
		APIToken:         apiToken,
		APIHost:          apiHost,
		APIPort:          apiPort,
	}

	if exitCode := runMain(cfg); exitCode != actions.ExitSuccess {
		logrus.WithField("exit_code", exitCode).Debug("Exiting with non-zero status")
		os.Exit(exitCode)
	}
}

// runMain performs a single run, or runs on the configured schedule until interrupted.
//
// Parameters:
//   - cfg: The RunConfig struct containing all necessary configuration parameters for execution.
//
// Returns:
//   - int: The exit code of the single run, or 0 after a clean scheduler shutdown.
func runMain(cfg RunConfig) int {
	if cfg.Schedule == "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logging.WriteStartupMessage(cfg.Command, time.Time{}, client, notifier, meta.Version)

		return runBackup(ctx, cfg)
	}

	// The scheduler handles signals itself so an in-flight run can finish.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.EnableMetricsAPI {
		if _, err := internalAPI.SetupAndStartAPI(ctx, cfg.APIHost, cfg.APIPort, cfg.APIToken, true); err != nil {
			return actions.ExitFailure
		}
	}

	err := scheduling.RunBackupsOnSchedule(
		ctx,
		cfg.Command,
		nil,
		cfg.Schedule,
		logging.WriteStartupMessage,
		func(ctx context.Context) { runBackup(ctx, cfg) },
		client,
		notifier,
		meta.Version,
	)
	if err != nil {
		logrus.WithError(err).Error("Failed to run scheduled backups")

		return actions.ExitFailure
	}

	metrics.Default().Shutdown()

	return actions.ExitSuccess
}

// runBackup performs one backup run and records its metrics.
func runBackup(ctx context.Context, cfg RunConfig) int {
	metric, exitCode := actions.RunBackupWithNotifications(ctx, client, notifier, cfg.Params, cfg.Uploader, os.Stdout)

	recordMetrics(metrics.Default(), metric, cfg.MetricsTextfile)

	return exitCode
}

// recordMetrics registers a run's metric and writes the textfile when configured.
func recordMetrics(m *metrics.Metrics, metric *metrics.Metric, textfile string) {
	m.RegisterRun(metric)

	if textfile == "" {
		return
	}

	if err := m.WriteTextfile(textfile); err != nil {
		logrus.WithError(err).WithField("path", textfile).Warn("Failed to write metrics textfile")
	}
}

// passwordReader reads the archive password interactively.
type passwordReader func() (string, error)

// resolvePassword decides the archive password from the encryption flags.
//
// Encryption disabled yields no password. With --password-prompt the password
// is read interactively, falling back to --password when no terminal is
// available or the answer is empty.
//
// Parameters:
//   - flagSet: Flags holding encrypt, password-prompt and password.
//   - read: Interactive password source.
//
// Returns:
//   - string: The password, empty for an unprotected archive.
//   - error: Non-nil if a flag is missing or the prompt fails.
func resolvePassword(flagSet *pflag.FlagSet, read passwordReader) (string, error) {
	encrypt, err := flagSet.GetBool("encrypt")
	if err != nil {
		return "", fmt.Errorf("failed to read encrypt flag: %w", err)
	}

	if !encrypt {
		return "", nil
	}

	password, err := flagSet.GetString("password")
	if err != nil {
		return "", fmt.Errorf("failed to read password flag: %w", err)
	}

	if prompt, _ := flagSet.GetBool("password-prompt"); prompt {
		entered, err := read()

		switch {
		case errors.Is(err, errNoTerminal):
			logrus.Warn("Password prompt requested without a terminal, using the configured password")
		case err != nil:
			return "", err
		case entered != "":
			return entered, nil
		}
	}

	if password == "" {
		logrus.Warn("Encryption is enabled but no password is configured")
	}

	return password, nil
}

// readTerminalPassword prompts on stderr and reads a password from stdin without echo.
func readTerminalPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errNoTerminal
	}

	fmt.Fprint(os.Stderr, "Archive password: ")

	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

// newUploader creates the S3 uploader when a bucket is configured.
//
// Returns:
//   - actions.Uploader: The uploader, or nil when no bucket is set.
//   - error: Non-nil if the AWS configuration cannot be loaded.
func newUploader(ctx context.Context, flagSet *pflag.FlagSet) (actions.Uploader, error) {
	bucket, _ := flagSet.GetString("s3-bucket")
	if bucket == "" {
		return nil, nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	opts := offsite.S3Options{Bucket: bucket}
	opts.Prefix, _ = flagSet.GetString("s3-prefix")
	opts.Region, _ = flagSet.GetString("s3-region")
	opts.Endpoint, _ = flagSet.GetString("s3-endpoint")

	uploader, err := offsite.NewS3Uploader(ctx, opts)
	if err != nil {
		return nil, err
	}

	return uploader, nil
}
