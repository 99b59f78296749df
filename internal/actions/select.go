package actions

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/n8n-backup/internal/util"
	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

// SelectContainers resolves the ordered, de-duplicated list of containers to back up.
//
// The manual list comes first in its given order. With auto-detection, running
// containers whose name contains nameFilter (ignoring case) follow in runtime order.
// Extra names from the command line come last. A name already present is not
// added again; presence is exact and case-sensitive. A runtime listing error is
// logged and auto-detection then contributes nothing.
//
// Parameters:
//   - ctx: Context for the runtime request.
//   - client: Runtime client used for auto-detection.
//   - manual: Configured container names.
//   - autoDetect: Whether to query the runtime for running containers.
//   - nameFilter: Case-insensitive substring auto-detected names must contain.
//   - extraArgs: Additional names from the command line.
//
// Returns:
//   - []string: Selected names, empty when no source yields a name.
func SelectContainers(
	ctx context.Context,
	client types.Client,
	manual []string,
	autoDetect bool,
	nameFilter string,
	extraArgs []string,
) []string {
	selected := util.AppendUnique([]string{}, manual...)

	if autoDetect {
		selected = util.AppendUnique(selected, detectContainers(ctx, client, nameFilter)...)
	}

	selected = util.AppendUnique(selected, extraArgs...)

	logrus.WithFields(logrus.Fields{
		"count":      len(selected),
		"containers": selected,
	}).Debug("Resolved container selection")

	return selected
}

// detectContainers lists running containers whose name contains nameFilter, ignoring case.
func detectContainers(ctx context.Context, client types.Client, nameFilter string) []string {
	running, err := client.ListRunningContainerNames(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to list running containers for auto-detection")

		return nil
	}

	matched := make([]string, 0, len(running))

	for _, name := range running {
		if util.ContainsFold(name, nameFilter) {
			matched = append(matched, name)
		}
	}

	logrus.WithFields(logrus.Fields{
		"name_filter": nameFilter,
		"running":     len(running),
		"matched":     matched,
	}).Debug("Auto-detected containers")

	return matched
}
