// Package flags manages command-line flags and environment variables for n8n-backup configuration.
package flags

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// DockerAPIMinVersion specifies the minimum Docker API version required by n8n-backup.
const DockerAPIMinVersion string = "1.44"

// Defaults for the export and storage settings.
const (
	defaultNameFilter      = "n8n"
	defaultWorkflowsPath   = "/tmp/n8n-backup/workflows"
	defaultCredentialsPath = "/tmp/n8n-backup/credentials"
	defaultExecUser        = "node"
	defaultBaseDir         = "./backups"
	defaultAPIPort         = "8080"
)

// defaultEmailServerPort defines the default SMTP submission port (587).
const defaultEmailServerPort = 587

// listSeparator splits comma or space separated environment lists.
var listSeparator = regexp.MustCompile("[, ]+")

// errInvalidLogFormat indicates an invalid log format was specified.
// It is used in SetupLogging to report configuration errors.
var errInvalidLogFormat = errors.New("invalid log format specified")

// errInvalidLogLevel indicates an invalid log level was specified.
// It is used in SetupLogging to report configuration errors.
var errInvalidLogLevel = errors.New("invalid log level specified")

// errSetEnvFailed indicates a failure to set an environment variable.
var errSetEnvFailed = errors.New("failed to set environment variable")

// errOpenFileFailed indicates a failure to open a file for reading secrets.
var errOpenFileFailed = errors.New("failed to open secret file")

// errCloseFileFailed indicates a failure to close a file after reading secrets.
var errCloseFileFailed = errors.New("failed to close secret file")

// errReplaceSliceFailed indicates a failure to replace a slice value in a flag.
var errReplaceSliceFailed = errors.New("failed to replace slice value in flag")

// errReadFileFailed indicates a failure to read a file’s contents.
var errReadFileFailed = errors.New("failed to read secret file")

// errSetFlagFailed indicates a failure to read or set a flag’s value.
var errSetFlagFailed = errors.New("failed to set flag value")

// errUnknownFlag indicates a secret flag name that is not registered.
var errUnknownFlag = errors.New("flag is not defined")

// errNegativeKeepLast indicates a negative retention count.
var errNegativeKeepLast = errors.New("keep-last must not be negative")

// RegisterDockerFlags adds flags used directly by the Docker API client to the root command.
// These flags configure the Docker connection settings.
func RegisterDockerFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.StringP("host", "H", envString("DOCKER_HOST"), "daemon socket to connect to")
	flags.BoolP("tlsverify", "v", envBool("DOCKER_TLS_VERIFY"), "use TLS and verify the remote")
	flags.StringP(
		"api-version",
		"a",
		envString("DOCKER_API_VERSION"),
		"api version to use by docker client",
	)
}

// RegisterSystemFlags adds flags that modify the backup run and program flow to the root command.
func RegisterSystemFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringSliceP(
		"containers",
		"c",
		// Due to issue spf13/viper#380, can't use viper.GetStringSlice:
		splitList(envString("N8N_BACKUP_CONTAINERS")),
		"Comma-separated list of containers to back up before auto-detected ones")

	flags.Bool(
		"auto-detect",
		envBool("N8N_BACKUP_AUTO_DETECT"),
		"Back up running containers whose name contains the name filter")

	flags.StringP(
		"name-filter",
		"f",
		envString("N8N_BACKUP_NAME_FILTER"),
		"Case-insensitive substring matched against running container names")

	flags.String(
		"workflows-path",
		envString("N8N_BACKUP_WORKFLOWS_PATH"),
		"Temporary directory for the workflow export inside each container")

	flags.String(
		"credentials-path",
		envString("N8N_BACKUP_CREDENTIALS_PATH"),
		"Temporary directory for the credential export inside each container")

	flags.StringP(
		"exec-user",
		"u",
		envString("N8N_BACKUP_EXEC_USER"),
		"User the export commands run as inside each container")

	flags.Bool(
		"decrypt-credentials",
		envBool("N8N_BACKUP_DECRYPT_CREDENTIALS"),
		"Export credentials in decrypted form - caution, the archive then holds plain secrets")

	flags.StringP(
		"base-dir",
		"b",
		envString("N8N_BACKUP_BASE_DIR"),
		"Host directory receiving exports, run logs and archives")

	flags.Bool(
		"encrypt",
		envBool("N8N_BACKUP_ENCRYPT"),
		"Protect the archive with a password")

	flags.Bool(
		"password-prompt",
		envBool("N8N_BACKUP_PASSWORD_PROMPT"),
		"Ask for the archive password on the terminal")

	flags.StringP(
		"password",
		"p",
		envString("N8N_BACKUP_PASSWORD"),
		"Archive password, or a file containing it")

	flags.IntP(
		"keep-last",
		"k",
		envInt("N8N_BACKUP_KEEP_LAST"),
		"Number of archives to keep in the base directory, 0 keeps all")

	flags.StringP(
		"schedule",
		"s",
		envString("N8N_BACKUP_SCHEDULE"),
		"The cron expression which defines when to back up, empty runs once")

	flags.BoolP(
		"no-startup-message",
		"",
		envBool("N8N_BACKUP_NO_STARTUP_MESSAGE"),
		"Prevents n8n-backup from logging a startup message")

	flags.String(
		"metrics-textfile",
		envString("N8N_BACKUP_METRICS_TEXTFILE"),
		"Write run metrics in the Prometheus text format to this file after each run")

	flags.Bool(
		"http-api-metrics",
		envBool("N8N_BACKUP_HTTP_API_METRICS"),
		"Runs Prometheus metrics via HTTP API in scheduled mode")

	flags.String(
		"http-api-host",
		envString("N8N_BACKUP_HTTP_API_HOST"),
		"Host to bind the HTTP API to")

	flags.String(
		"http-api-port",
		envString("N8N_BACKUP_HTTP_API_PORT"),
		"Port for the HTTP API server")

	flags.String(
		"http-api-token",
		envString("N8N_BACKUP_HTTP_API_TOKEN"),
		"Sets an authentication token to HTTP API requests")

	flags.String(
		"s3-bucket",
		envString("N8N_BACKUP_S3_BUCKET"),
		"Upload each archive to this S3 bucket")

	flags.String(
		"s3-prefix",
		envString("N8N_BACKUP_S3_PREFIX"),
		"Key prefix for uploaded archives")

	flags.String(
		"s3-region",
		envString("N8N_BACKUP_S3_REGION"),
		"Region of the S3 bucket, defaults to the AWS configuration")

	flags.String(
		"s3-endpoint",
		envString("N8N_BACKUP_S3_ENDPOINT"),
		"Custom S3-compatible endpoint URL")

	flags.StringP(
		"log-format",
		"l",
		viper.GetString("N8N_BACKUP_LOG_FORMAT"),
		"Sets what logging format to use for console output. Possible values: Auto, LogFmt, Pretty, JSON",
	)

	flags.BoolP(
		"debug",
		"d",
		envBool("N8N_BACKUP_DEBUG"),
		"Enable debug mode with verbose logging")

	flags.BoolP(
		"trace",
		"",
		envBool("N8N_BACKUP_TRACE"),
		"Enable trace mode with very verbose logging - caution, exposes credentials")

	flags.String(
		"log-level",
		envString("N8N_BACKUP_LOG_LEVEL"),
		"The maximum log level that will be written to STDERR. Possible values: panic, fatal, error, warn, info, debug or trace")

	// https://no-color.org/
	flags.BoolP(
		"no-color",
		"",
		viper.IsSet("NO_COLOR"),
		"Disable ANSI color escape codes in log output")
}

// RegisterNotificationFlags adds notification-related flags to the root command.
func RegisterNotificationFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.Bool(
		"email",
		envBool("N8N_BACKUP_EMAIL"),
		"Send an HTML summary of each run by email")

	flags.String(
		"email-server",
		envString("N8N_BACKUP_EMAIL_SERVER"),
		"SMTP server to send notification emails through")

	flags.Int(
		"email-server-port",
		envInt("N8N_BACKUP_EMAIL_SERVER_PORT"),
		"SMTP server port to send notification emails through")

	flags.String(
		"email-server-user",
		envString("N8N_BACKUP_EMAIL_SERVER_USER"),
		"SMTP server user for sending notifications")

	flags.String(
		"email-server-password",
		envString("N8N_BACKUP_EMAIL_SERVER_PASSWORD"),
		"SMTP server password for sending notifications")

	flags.Bool(
		"email-server-plaintext",
		envBool("N8N_BACKUP_EMAIL_SERVER_PLAINTEXT"),
		"Send email without TLS or STARTTLS (unencrypted, for local relays only)")

	flags.String(
		"email-from",
		envString("N8N_BACKUP_EMAIL_FROM"),
		"Address to send notification emails from")

	flags.String(
		"email-to",
		envString("N8N_BACKUP_EMAIL_TO"),
		"Recipients of notification emails, separated by ';', ',' or spaces")

	flags.String(
		"email-subject-tag",
		envString("N8N_BACKUP_EMAIL_SUBJECT_TAG"),
		"Subject prefix tag for notification emails")

	flags.Bool(
		"webhook",
		envBool("N8N_BACKUP_WEBHOOK"),
		"Post the archive name to a webhook after each run")

	flags.String(
		"webhook-url",
		envString("N8N_BACKUP_WEBHOOK_URL"),
		"The webhook URL")

	flags.Bool(
		"webhook-report-status",
		envBool("N8N_BACKUP_WEBHOOK_REPORT_STATUS"),
		"Send the run status instead of \"completed\" and post even without an archive")
}

// envString retrieves a string value from an environment variable via Viper.
// It binds the key to the environment and returns its value.
func envString(key string) string {
	viper.MustBindEnv(key)

	return viper.GetString(key)
}

// envInt retrieves an integer value from an environment variable via Viper.
// It binds the key to the environment and returns its value.
func envInt(key string) int {
	viper.MustBindEnv(key)

	return viper.GetInt(key)
}

// envBool retrieves a boolean value from an environment variable via Viper.
// It binds the key to the environment and returns its value.
func envBool(key string) bool {
	viper.MustBindEnv(key)

	return viper.GetBool(key)
}

// splitList splits a comma or space separated list, dropping empty entries.
func splitList(value string) []string {
	items := []string{}

	for _, item := range listSeparator.Split(value, -1) {
		if item != "" {
			items = append(items, item)
		}
	}

	return items
}

// SetDefaults configures default values for environment variables.
// It ensures consistent fallback behavior when flags or environment variables are unset.
func SetDefaults() {
	viper.AutomaticEnv()
	viper.SetDefault("DOCKER_HOST", "unix:///var/run/docker.sock")
	viper.SetDefault("DOCKER_API_VERSION", DockerAPIMinVersion)
	viper.SetDefault("N8N_BACKUP_AUTO_DETECT", true)
	viper.SetDefault("N8N_BACKUP_NAME_FILTER", defaultNameFilter)
	viper.SetDefault("N8N_BACKUP_WORKFLOWS_PATH", defaultWorkflowsPath)
	viper.SetDefault("N8N_BACKUP_CREDENTIALS_PATH", defaultCredentialsPath)
	viper.SetDefault("N8N_BACKUP_EXEC_USER", defaultExecUser)
	viper.SetDefault("N8N_BACKUP_BASE_DIR", defaultBaseDir)
	viper.SetDefault("N8N_BACKUP_ENCRYPT", true)
	viper.SetDefault("N8N_BACKUP_HTTP_API_PORT", defaultAPIPort)
	viper.SetDefault("N8N_BACKUP_EMAIL_SERVER_PORT", defaultEmailServerPort)
	viper.SetDefault("N8N_BACKUP_LOG_LEVEL", "info")
	viper.SetDefault("N8N_BACKUP_LOG_FORMAT", "auto")
}

// EnvConfig sets environment variables based on Docker-related flags.
// It configures the Docker client’s environment, returning an error if flag retrieval fails.
func EnvConfig(cmd *cobra.Command) error {
	var err error

	var host string

	var tls bool

	var version string

	flags := cmd.PersistentFlags()

	if host, err = flags.GetString("host"); err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if tls, err = flags.GetBool("tlsverify"); err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if version, err = flags.GetString("api-version"); err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if err = setEnvOptStr("DOCKER_HOST", host); err != nil {
		return err
	}

	if err = setEnvOptBool("DOCKER_TLS_VERIFY", tls); err != nil {
		return err
	}

	if err = setEnvOptStr("DOCKER_API_VERSION", version); err != nil {
		return err
	}

	return nil
}

// ReadBackupParams collects the backup run settings from the command's flags.
//
// The archive password is left empty; callers resolve it from the encryption
// flags.
//
// Parameters:
//   - cmd: Command holding the registered flags.
//   - args: Positional container names.
//
// Returns:
//   - types.BackupParams: Run settings.
//   - error: Non-nil if a flag is missing or holds an invalid value.
func ReadBackupParams(cmd *cobra.Command, args []string) (types.BackupParams, error) {
	flags := cmd.PersistentFlags()
	params := types.BackupParams{ExtraNames: args}

	var err error

	if params.Containers, err = flags.GetStringSlice("containers"); err != nil {
		return params, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if params.AutoDetect, err = flags.GetBool("auto-detect"); err != nil {
		return params, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	stringFlags := map[string]*string{
		"name-filter":      &params.NameFilter,
		"workflows-path":   &params.WorkflowsPath,
		"credentials-path": &params.CredentialsPath,
		"exec-user":        &params.ExecUser,
		"base-dir":         &params.BaseDir,
	}
	for name, target := range stringFlags {
		if *target, err = flags.GetString(name); err != nil {
			return params, fmt.Errorf("%w: %w", errSetFlagFailed, err)
		}
	}

	if params.DecryptCredentials, err = flags.GetBool("decrypt-credentials"); err != nil {
		return params, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if params.KeepLast, err = flags.GetInt("keep-last"); err != nil {
		return params, fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if params.KeepLast < 0 {
		return params, fmt.Errorf("%w: %d", errNegativeKeepLast, params.KeepLast)
	}

	return params, nil
}

// setEnvOptStr sets an environment variable to a specified string value if needed.
// It skips setting if the value is empty or matches the current environment, returning an error if the set fails.
func setEnvOptStr(env string, opt string) error {
	if opt == "" || opt == os.Getenv(env) {
		return nil
	}

	if err := os.Setenv(env, opt); err != nil {
		return fmt.Errorf("%w: %s: %w", errSetEnvFailed, env, err)
	}

	return nil
}

// setEnvOptBool sets an environment variable to "1" if the boolean is true.
// It returns an error if the set operation fails, otherwise nil.
func setEnvOptBool(env string, opt bool) error {
	if opt {
		return setEnvOptStr(env, "1")
	}

	return nil
}

// secretFlags lists the flags whose value may name a file holding the secret.
var secretFlags = []string{
	"password",
	"email-server-password",
	"webhook-url",
	"http-api-token",
}

// GetSecretsFromFiles replaces flag values with file contents if they reference files.
// It processes the secret-related flags, updating their values accordingly.
func GetSecretsFromFiles(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	for _, secret := range secretFlags {
		if err := getSecretFromFile(flags, secret); err != nil {
			logrus.Fatalf("failed to get secret from flag %v: %s", secret, err)
		}
	}
}

// getSecretFromFile updates a flag’s value with file contents if it references a file.
// It handles both string and slice flags, returning an error if file operations fail.
func getSecretFromFile(flags *pflag.FlagSet, secret string) error {
	flag := flags.Lookup(secret)
	if flag == nil {
		return fmt.Errorf("%w: %q", errUnknownFlag, secret)
	}

	if sliceValue, ok := flag.Value.(pflag.SliceValue); ok {
		oldValues := sliceValue.GetSlice()
		values := make([]string, 0, len(oldValues))

		for _, value := range oldValues {
			if value != "" && isFilePath(value) {
				file, err := os.Open(value)
				if err != nil {
					return fmt.Errorf("%w: %w", errOpenFileFailed, err)
				}

				scanner := bufio.NewScanner(file)
				for scanner.Scan() {
					line := scanner.Text()
					if line == "" {
						continue
					}

					values = append(values, line)
				}

				if err := file.Close(); err != nil {
					return fmt.Errorf("%w: %w", errCloseFileFailed, err)
				}
			} else {
				values = append(values, value)
			}
		}

		if err := sliceValue.Replace(values); err != nil {
			return fmt.Errorf("%w: %w", errReplaceSliceFailed, err)
		}

		return nil
	}

	value := flag.Value.String()
	if value != "" && isFilePath(value) {
		content, err := os.ReadFile(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errReadFileFailed, err)
		}

		if err := flags.Set(secret, strings.TrimSpace(string(content))); err != nil {
			return fmt.Errorf("%w: %w", errSetFlagFailed, err)
		}
	}

	return nil
}

// isFilePath determines if a string likely represents a file path.
// It checks for file existence, avoiding false positives from URLs or invalid Windows paths.
func isFilePath(path string) bool {
	firstColon := strings.IndexRune(path, ':')
	if firstColon != 1 && firstColon != -1 {
		// If ':' exists but isn’t the second character, it’s likely not a file path (e.g., URLs).
		return false
	}

	_, err := os.Stat(path)

	return !errors.Is(err, os.ErrNotExist)
}

// ProcessFlagAliases synchronizes the log level with the debug and trace helper flags.
func ProcessFlagAliases(flags *pflag.FlagSet) {
	if flagIsEnabled(flags, "debug") {
		if err := flags.Set("log-level", "debug"); err != nil {
			logrus.Errorf("Failed to set log-level flag: %v", err)
		}
	}

	if flagIsEnabled(flags, "trace") {
		if err := flags.Set("log-level", "trace"); err != nil {
			logrus.Errorf("Failed to set log-level flag: %v", err)
		}
	}
}

// SetupLogging configures the global logger based on log-related flags.
// It sets the log format and level, returning an error for invalid configurations.
func SetupLogging(flags *pflag.FlagSet) error {
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if err := configureLogFormat(logFormat, noColor); err != nil {
		return err
	}

	rawLogLevel, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	logLevel, err := logrus.ParseLevel(rawLogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	logrus.SetLevel(logLevel)

	return nil
}

// configureLogFormat sets the logrus formatter based on the specified format and color preference.
// It returns an error if the format is invalid.
func configureLogFormat(logFormat string, noColor bool) error {
	switch strings.ToLower(logFormat) {
	case "auto":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors:             noColor,
			EnvironmentOverrideColors: true,
		})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "logfmt":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	case "pretty":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !noColor,
			FullTimestamp: false,
		})
	default:
		return fmt.Errorf("%w: %s", errInvalidLogFormat, logFormat)
	}

	return nil
}

// flagIsEnabled checks if a boolean flag is set to true.
// It exits with a fatal error if the flag is not defined.
func flagIsEnabled(flags *pflag.FlagSet, name string) bool {
	value, err := flags.GetBool(name)
	if err != nil {
		logrus.Fatalf("The flag %q is not defined", name)
	}

	return value
}
