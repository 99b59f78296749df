// Package meta holds build information injected at link time.
package meta

// Version is the n8n-backup version, set with -ldflags "-X github.com/nicholas-fedor/n8n-backup/internal/meta.Version=...".
var Version = "v0.0.0-unknown"
