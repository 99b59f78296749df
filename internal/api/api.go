// Package api wires the n8n-backup HTTP endpoints into the API server for scheduled mode.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/n8n-backup/pkg/api"
	metricsAPI "github.com/nicholas-fedor/n8n-backup/pkg/api/metrics"
)

// GetAPIAddr formats the API address string based on host and port.
func GetAPIAddr(host, port string) string {
	address := host + ":" + port
	if host != "" && strings.Contains(host, ":") && net.ParseIP(host) != nil {
		address = "[" + host + "]:" + port
	}

	return address
}

// SetupAndStartAPI configures and launches the HTTP API if enabled by configuration flags.
//
// The API serves in the background and stops when ctx is cancelled.
//
// Parameters:
//   - ctx: The context controlling the API's lifecycle.
//   - apiHost: The host to bind the HTTP API to.
//   - apiPort: The port for the HTTP API server.
//   - apiToken: The authentication token for HTTP API access.
//   - enableMetricsAPI: Enables the HTTP metrics API endpoint.
//   - server: Optional server replacing the default http.Server.
//
// Returns:
//   - *metricsAPI.Handler: The registered metrics handler, nil when disabled.
//   - error: An error if the API fails to start, nil otherwise.
func SetupAndStartAPI(
	ctx context.Context,
	apiHost, apiPort, apiToken string,
	enableMetricsAPI bool,
	server ...api.HTTPServer,
) (*metricsAPI.Handler, error) {
	if !enableMetricsAPI {
		return nil, nil
	}

	httpAPI := api.New(apiToken, GetAPIAddr(apiHost, apiPort), server...)

	metricsHandler := metricsAPI.New()
	httpAPI.RegisterHandler(metricsHandler.Path, metricsHandler.Handle)

	if err := httpAPI.Start(ctx, false); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Error("Failed to start API")

		return nil, fmt.Errorf("failed to start HTTP API: %w", err)
	}

	return metricsHandler, nil
}
