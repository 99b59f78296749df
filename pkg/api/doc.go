// Package api provides a token-protected HTTP server for n8n-backup endpoints.
//
// Key components:
//   - API: Manages server setup and endpoint registration.
//   - RequireToken: Wraps HTTP handlers with bearer token validation.
//
// Usage example:
//
//	api := api.New("secure-token", ":8080")
//	api.RegisterHandler("/v1/metrics", promhttp.Handler())
//	if err := api.Start(ctx, false); err != nil {
//	    logrus.WithError(err).Error("API start failed")
//	}
//
// The package uses a custom ServeMux for routing, supports graceful shutdown,
// and integrates with logrus for logging server operations.
package api
