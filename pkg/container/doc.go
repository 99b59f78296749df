// Package container provides the Docker implementation of the runtime client used by n8n-backup.
// It wraps the Docker Engine API to discover running containers, check that a named container
// is running, run commands inside it and copy directories out of its filesystem.
//
// Key components:
//   - NewClient: Creates a types.Client from the environment (DOCKER_HOST, DOCKER_API_VERSION)
//     with optional TLS verification.
//   - ExecuteCommand: Runs a command through an exec instance, returning combined output and exit code.
//   - CopyFromContainer: Streams a directory through the archive endpoint and extracts it on the host.
//
// Usage example:
//
//	cli, err := container.NewClient(container.ClientOptions{})
//	if err != nil {
//	    logrus.Fatal(err)
//	}
//	names, _ := cli.ListRunningContainerNames(ctx)
//	result, _ := cli.ExecuteCommand(ctx, names[0], "node", []string{"n8n", "--version"})
//
// The package integrates with Docker's API via docker/docker client libraries.
package container
