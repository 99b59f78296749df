package container

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	dockerTypes "github.com/docker/docker/api/types"
	dockerContainer "github.com/docker/docker/api/types/container"
	dockerClient "github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/nicholas-fedor/n8n-backup/pkg/container/mocks"
)

var errDaemonGone = errors.New("daemon gone")

// fakeExecAPI serves exec requests from canned output; other calls are not expected.
type fakeExecAPI struct {
	dockerAPI

	stdout     string
	stderr     string
	exitCode   int
	createErr  error
	attachErr  error
	inspectErr error

	created dockerContainer.ExecOptions
	target  string
}

func (f *fakeExecAPI) ContainerExecCreate(
	_ context.Context,
	container string,
	options dockerContainer.ExecOptions,
) (dockerContainer.ExecCreateResponse, error) {
	f.target = container
	f.created = options

	if f.createErr != nil {
		return dockerContainer.ExecCreateResponse{}, f.createErr
	}

	return dockerContainer.ExecCreateResponse{ID: "exec-1"}, nil
}

func (f *fakeExecAPI) ContainerExecAttach(
	_ context.Context,
	_ string,
	_ dockerContainer.ExecAttachOptions,
) (dockerTypes.HijackedResponse, error) {
	if f.attachErr != nil {
		return dockerTypes.HijackedResponse{}, f.attachErr
	}

	var stream bytes.Buffer

	if f.stdout != "" {
		_, _ = stdcopy.NewStdWriter(&stream, stdcopy.Stdout).Write([]byte(f.stdout))
	}

	if f.stderr != "" {
		_, _ = stdcopy.NewStdWriter(&stream, stdcopy.Stderr).Write([]byte(f.stderr))
	}

	local, remote := net.Pipe()
	_ = remote.Close()

	return dockerTypes.HijackedResponse{
		Conn:   local,
		Reader: bufio.NewReader(&stream),
	}, nil
}

func (f *fakeExecAPI) ContainerExecInspect(
	_ context.Context,
	_ string,
) (dockerContainer.ExecInspect, error) {
	if f.inspectErr != nil {
		return dockerContainer.ExecInspect{}, f.inspectErr
	}

	return dockerContainer.ExecInspect{ExecID: "exec-1", ExitCode: f.exitCode}, nil
}

var _ = ginkgo.Describe("the client", func() {
	var docker *dockerClient.Client
	var mockServer *ghttp.Server
	ctx := context.Background()

	ginkgo.BeforeEach(func() {
		mockServer = ghttp.NewServer()
		docker, _ = dockerClient.NewClientWithOpts(
			dockerClient.WithHost(mockServer.URL()),
			dockerClient.WithHTTPClient(mockServer.HTTPTestServer.Client()))
	})
	ginkgo.AfterEach(func() {
		mockServer.Close()
	})

	ginkgo.Describe("ListRunningContainerNames", func() {
		ginkgo.It("should return running container names without the leading slash", func() {
			mockServer.AppendHandlers(mocks.ListContainersHandler("n8n-main", "postgres", "N8N-Worker"))
			names, err := (&client{api: docker}).ListRunningContainerNames(ctx)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(names).To(gomega.Equal([]string{"n8n-main", "postgres", "N8N-Worker"}))
		})
		ginkgo.It("should wrap daemon errors", func() {
			mockServer.AppendHandlers(mocks.ServerErrorHandler())
			_, err := (&client{api: docker}).ListRunningContainerNames(ctx)
			gomega.Expect(err).To(gomega.MatchError(errListContainersFailed))
		})
	})

	ginkgo.Describe("IsContainerRunning", func() {
		ginkgo.It("should report a running container", func() {
			mockServer.AppendHandlers(mocks.InspectContainerHandler("n8n", true))
			running, err := (&client{api: docker}).IsContainerRunning(ctx, "n8n")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(running).To(gomega.BeTrue())
		})
		ginkgo.It("should report a stopped container as not running", func() {
			mockServer.AppendHandlers(mocks.InspectContainerHandler("n8n", false))
			running, err := (&client{api: docker}).IsContainerRunning(ctx, "n8n")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(running).To(gomega.BeFalse())
		})
		ginkgo.It("should treat a missing container as not running without an error", func() {
			mockServer.AppendHandlers(mocks.MissingContainerHandler("ghost"))
			running, err := (&client{api: docker}).IsContainerRunning(ctx, "ghost")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(running).To(gomega.BeFalse())
		})
		ginkgo.It("should return other daemon errors", func() {
			mockServer.AppendHandlers(mocks.ServerErrorHandler())
			_, err := (&client{api: docker}).IsContainerRunning(ctx, "n8n")
			gomega.Expect(err).To(gomega.MatchError(errInspectContainerFailed))
		})
	})

	ginkgo.Describe("CopyFromContainer", func() {
		ginkgo.It("should extract the directory contents into the target", func() {
			target := filepath.Join(ginkgo.GinkgoT().TempDir(), "workflows")
			mockServer.AppendHandlers(mocks.ArchiveHandler("n8n", "/tmp/n8n-backup/workflows", map[string]string{
				"1.json":        `{"id":"1"}`,
				"nested/2.json": `{"id":"2"}`,
			}))

			err := (&client{api: docker}).CopyFromContainer(ctx, "n8n", "/tmp/n8n-backup/workflows", target)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			content, err := os.ReadFile(filepath.Join(target, "1.json"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(string(content)).To(gomega.Equal(`{"id":"1"}`))
			gomega.Expect(filepath.Join(target, "nested", "2.json")).To(gomega.BeAnExistingFile())
			gomega.Expect(filepath.Join(target, "workflows")).ToNot(gomega.BeAnExistingFile())
		})
		ginkgo.It("should create the target even when the directory is empty", func() {
			target := filepath.Join(ginkgo.GinkgoT().TempDir(), "credentials")
			mockServer.AppendHandlers(mocks.ArchiveHandler("n8n", "/tmp/creds", map[string]string{}))

			err := (&client{api: docker}).CopyFromContainer(ctx, "n8n", "/tmp/creds", target)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(target).To(gomega.BeADirectory())
		})
		ginkgo.It("should fail when the daemon cannot serve the path", func() {
			mockServer.AppendHandlers(mocks.ServerErrorHandler())
			err := (&client{api: docker}).CopyFromContainer(ctx, "n8n", "/tmp/x", ginkgo.GinkgoT().TempDir())
			gomega.Expect(err).To(gomega.MatchError(errCopyFromContainerFailed))
		})
	})

	ginkgo.Describe("ExecuteCommand", func() {
		ginkgo.It("should combine stdout and stderr and report the exit code", func() {
			api := &fakeExecAPI{
				stdout:   "Successfully exported 3 workflows.\n",
				stderr:   "deprecation warning\n",
				exitCode: 0,
			}
			result, err := (&client{api: api}).ExecuteCommand(ctx, "n8n", "node", []string{"n8n", "export:workflow"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Output).To(gomega.ContainSubstring("Successfully exported 3 workflows."))
			gomega.Expect(result.Output).To(gomega.ContainSubstring("deprecation warning"))
			gomega.Expect(result.Succeeded()).To(gomega.BeTrue())
			gomega.Expect(api.target).To(gomega.Equal("n8n"))
			gomega.Expect(api.created.User).To(gomega.Equal("node"))
			gomega.Expect(api.created.Cmd).To(gomega.Equal([]string{"n8n", "export:workflow"}))
			gomega.Expect(api.created.Tty).To(gomega.BeFalse())
		})
		ginkgo.It("should report a non-zero exit through the result", func() {
			api := &fakeExecAPI{stderr: "Error: no workflows", exitCode: 1}
			result, err := (&client{api: api}).ExecuteCommand(ctx, "n8n", "", []string{"false"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.ExitCode).To(gomega.Equal(1))
			gomega.Expect(result.Output).To(gomega.Equal("Error: no workflows"))
		})
		ginkgo.It("should fail when the exec instance cannot be created", func() {
			api := &fakeExecAPI{createErr: errDaemonGone}
			_, err := (&client{api: api}).ExecuteCommand(ctx, "n8n", "", []string{"true"})
			gomega.Expect(err).To(gomega.MatchError(errCreateExecFailed))
			gomega.Expect(err).To(gomega.MatchError(errDaemonGone))
		})
		ginkgo.It("should fail when attaching fails", func() {
			api := &fakeExecAPI{attachErr: errDaemonGone}
			_, err := (&client{api: api}).ExecuteCommand(ctx, "n8n", "", []string{"true"})
			gomega.Expect(err).To(gomega.MatchError(errAttachExecFailed))
		})
		ginkgo.It("should fail when the exit code cannot be read", func() {
			api := &fakeExecAPI{stdout: "ok", inspectErr: errDaemonGone}
			result, err := (&client{api: api}).ExecuteCommand(ctx, "n8n", "", []string{"true"})
			gomega.Expect(err).To(gomega.MatchError(errInspectExecFailed))
			gomega.Expect(result.Output).To(gomega.Equal("ok"))
		})
	})

	ginkgo.Describe("GetVersion", func() {
		ginkgo.It("should return the client API version", func() {
			cli, err := dockerClient.NewClientWithOpts(
				dockerClient.WithHost(mockServer.URL()),
				dockerClient.WithVersion("1.47"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect((&client{api: cli}).GetVersion()).To(gomega.Equal("1.47"))
		})
	})
})
