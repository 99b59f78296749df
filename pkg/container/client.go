package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/go-connections/tlsconfig"
	"github.com/sirupsen/logrus"

	cerrdefs "github.com/containerd/errdefs"
	dockerTypes "github.com/docker/docker/api/types"
	dockerContainer "github.com/docker/docker/api/types/container"
	dockerFilters "github.com/docker/docker/api/types/filters"
	dockerClient "github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// dockerAPI is the subset of the Docker Engine API used by a backup run.
type dockerAPI interface {
	ContainerList(ctx context.Context, options dockerContainer.ListOptions) ([]dockerContainer.Summary, error)
	ContainerInspect(ctx context.Context, container string) (dockerContainer.InspectResponse, error)
	ContainerExecCreate(
		ctx context.Context,
		container string,
		options dockerContainer.ExecOptions,
	) (dockerContainer.ExecCreateResponse, error)
	ContainerExecAttach(
		ctx context.Context,
		execID string,
		options dockerContainer.ExecAttachOptions,
	) (dockerTypes.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (dockerContainer.ExecInspect, error)
	CopyFromContainer(
		ctx context.Context,
		container, srcPath string,
	) (io.ReadCloser, dockerContainer.PathStat, error)
	ClientVersion() string
}

// client is the concrete implementation of the types.Client interface.
//
// It wraps the Docker API client and applies custom behavior via ClientOptions.
type client struct {
	api dockerAPI
	ClientOptions
}

// ClientOptions configures how the Docker API client is created.
type ClientOptions struct {
	TLSVerify bool   // Use TLS and verify the remote daemon.
	CertPath  string // Directory holding ca.pem, cert.pem and key.pem; DOCKER_CERT_PATH when empty.
}

// NewClient initializes a new Client instance for Docker API interactions.
//
// It configures the client using environment variables (DOCKER_HOST, DOCKER_API_VERSION)
// and negotiates the API version with the daemon.
//
// Parameters:
//   - opts: Options to customize the connection.
//
// Returns:
//   - types.Client: Initialized client instance.
//   - error: Non-nil if the client could not be created.
func NewClient(opts ClientOptions) (types.Client, error) {
	clientOpts := []dockerClient.Opt{
		dockerClient.FromEnv,
		dockerClient.WithAPIVersionNegotiation(),
	}

	if opts.TLSVerify {
		httpClient, err := newTLSHTTPClient(opts.CertPath)
		if err != nil {
			return nil, err
		}

		clientOpts = append(clientOpts, dockerClient.WithHTTPClient(httpClient))
	}

	cli, err := dockerClient.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCreateClientFailed, err)
	}

	ctx := context.Background()
	cli.NegotiateAPIVersion(ctx)

	if serverVersion, err := cli.ServerVersion(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"error":    err,
			"endpoint": "/version",
		}).Warn("Failed to retrieve server version")
	} else {
		logrus.WithFields(logrus.Fields{
			"client_version": cli.ClientVersion(),
			"server_version": serverVersion.APIVersion,
		}).Debug("Initialized Docker client")
	}

	return &client{
		api:           cli,
		ClientOptions: opts,
	}, nil
}

// newTLSHTTPClient builds an HTTP client that verifies the daemon with the certificates in certPath.
func newTLSHTTPClient(certPath string) (*http.Client, error) {
	if certPath == "" {
		certPath = os.Getenv("DOCKER_CERT_PATH")
	}

	tlsConfig, err := tlsconfig.Client(tlsconfig.Options{
		CAFile:             filepath.Join(certPath, "ca.pem"),
		CertFile:           filepath.Join(certPath, "cert.pem"),
		KeyFile:            filepath.Join(certPath, "key.pem"),
		ExclusiveRootPools: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errLoadTLSConfigFailed, err)
	}

	return &http.Client{
		Transport:     &http.Transport{TLSClientConfig: tlsConfig},
		CheckRedirect: dockerClient.CheckRedirect,
	}, nil
}

// ListRunningContainerNames returns the names of all running containers in runtime order.
//
// Parameters:
//   - ctx: Context for the request.
//
// Returns:
//   - []string: Container names without the leading slash.
//   - error: Non-nil if listing fails, nil on success.
func (c *client) ListRunningContainerNames(ctx context.Context) ([]string, error) {
	filter := dockerFilters.NewArgs(dockerFilters.Arg("status", "running"))

	containers, err := c.api.ContainerList(ctx, dockerContainer.ListOptions{Filters: filter})
	if err != nil {
		logrus.WithError(err).Debug("Failed to list running containers")

		return nil, fmt.Errorf("%w: %w", errListContainersFailed, err)
	}

	names := make([]string, 0, len(containers))

	for _, summary := range containers {
		if len(summary.Names) == 0 {
			continue
		}

		names = append(names, strings.TrimPrefix(summary.Names[0], "/"))
	}

	logrus.WithField("count", len(names)).Debug("Listed running containers")

	return names, nil
}

// IsContainerRunning reports whether the named container exists and is running.
//
// A container the daemon does not know is reported as not running without an error.
//
// Parameters:
//   - ctx: Context for the request.
//   - name: Container name.
//
// Returns:
//   - bool: True if the container exists and is running.
//   - error: Non-nil if the daemon could not be queried.
func (c *client) IsContainerRunning(ctx context.Context, name string) (bool, error) {
	info, err := c.api.ContainerInspect(ctx, name)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			logrus.WithField("container", name).Debug("Container not found")

			return false, nil
		}

		return false, fmt.Errorf("%w: %w", errInspectContainerFailed, err)
	}

	running := info.ContainerJSONBase != nil && info.State != nil && info.State.Running

	logrus.WithFields(logrus.Fields{
		"container": name,
		"running":   running,
	}).Debug("Inspected container")

	return running, nil
}

// ExecuteCommand runs a command inside a container and captures its combined output.
//
// Parameters:
//   - ctx: Context for the request.
//   - name: Container name.
//   - user: Execution identity, empty for the image default.
//   - cmd: Command and arguments.
//
// Returns:
//   - types.ExecResult: Combined output and exit code.
//   - error: Non-nil if the exec instance could not be created, attached or inspected.
func (c *client) ExecuteCommand(
	ctx context.Context,
	name, user string,
	cmd []string,
) (types.ExecResult, error) {
	clog := logrus.WithFields(logrus.Fields{
		"container": name,
		"command":   strings.Join(cmd, " "),
	})

	if user != "" {
		clog = clog.WithField("user", user)
	}

	clog.Debug("Creating exec instance")

	exec, err := c.api.ContainerExecCreate(ctx, name, dockerContainer.ExecOptions{
		User:         user,
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          cmd,
	})
	if err != nil {
		clog.WithError(err).Debug("Failed to create exec instance")

		return types.ExecResult{}, fmt.Errorf("%w: %w", errCreateExecFailed, err)
	}

	output, err := c.captureExecOutput(ctx, exec.ID)
	if err != nil {
		return types.ExecResult{}, err
	}

	inspect, err := c.api.ContainerExecInspect(ctx, exec.ID)
	if err != nil {
		clog.WithError(err).Debug("Failed to inspect exec instance")

		return types.ExecResult{Output: output}, fmt.Errorf("%w: %w", errInspectExecFailed, err)
	}

	clog.WithFields(logrus.Fields{
		"exit_code": inspect.ExitCode,
		"output":    output,
	}).Debug("Executed command")

	return types.ExecResult{Output: output, ExitCode: inspect.ExitCode}, nil
}

// captureExecOutput attaches to an exec instance and reads its output until the process exits.
//
// Stdout and stderr arrive multiplexed and are written into one buffer in arrival order.
//
// Parameters:
//   - ctx: Context for the request.
//   - execID: Exec instance ID.
//
// Returns:
//   - string: Trimmed combined output.
//   - error: Non-nil if attaching or reading fails.
func (c *client) captureExecOutput(ctx context.Context, execID string) (string, error) {
	clog := logrus.WithField("exec_id", execID)

	clog.Debug("Attaching to exec instance")

	response, err := c.api.ContainerExecAttach(ctx, execID, dockerContainer.ExecAttachOptions{})
	if err != nil {
		clog.WithError(err).Debug("Failed to attach to exec instance")

		return "", fmt.Errorf("%w: %w", errAttachExecFailed, err)
	}

	defer response.Close()

	var combined bytes.Buffer

	if _, err := stdcopy.StdCopy(&combined, &combined, response.Reader); err != nil {
		clog.WithError(err).Debug("Failed to read exec output")

		return "", fmt.Errorf("%w: %w", errReadExecOutputFailed, err)
	}

	return strings.TrimSpace(combined.String()), nil
}

// CopyFromContainer copies the contents of a directory inside a container into a host directory.
//
// Parameters:
//   - ctx: Context for the request.
//   - name: Container name.
//   - srcPath: Directory inside the container.
//   - dstDir: Host directory receiving the directory's contents; created if missing.
//
// Returns:
//   - error: Non-nil if the copy failed.
func (c *client) CopyFromContainer(ctx context.Context, name, srcPath, dstDir string) error {
	clog := logrus.WithFields(logrus.Fields{
		"container": name,
		"source":    srcPath,
		"target":    dstDir,
	})

	reader, stat, err := c.api.CopyFromContainer(ctx, name, srcPath)
	if err != nil {
		clog.WithError(err).Debug("Failed to copy from container")

		return fmt.Errorf("%w: %w", errCopyFromContainerFailed, err)
	}

	defer reader.Close()

	if !stat.Mode.IsDir() {
		return fmt.Errorf("%w: %s", errSourceNotDirectory, srcPath)
	}

	files, err := extractTar(reader, stat.Name, dstDir)
	if err != nil {
		clog.WithError(err).Debug("Failed to extract copied directory")

		return err
	}

	clog.WithField("files", files).Debug("Copied directory from container")

	return nil
}

// GetVersion returns the client's API version.
//
// Returns:
//   - string: Trimmed API version string.
func (c *client) GetVersion() string {
	return strings.Trim(c.api.ClientVersion(), "\"")
}
