package actions

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/n8n-backup/internal/util"
	"github.com/nicholas-fedor/n8n-backup/pkg/archive"
)

// PruneArchives removes all but the newest keep archives in baseDir.
//
// Only files named "<timestamp>.zip" or "<timestamp>_unencrypted.zip" count as
// archives, so name order is creation order. Other files are never touched.
// The current archive is always retained and counts toward keep.
//
// Parameters:
//   - baseDir: Directory holding the archives.
//   - keep: Number of archives to retain; values below 1 keep everything.
//   - current: Path of the archive just written, empty if none.
//
// Returns:
//   - []string: Paths of removed archives.
//   - error: Non-nil if the directory cannot be read; failed removals are only logged.
func PruneArchives(baseDir string, keep int, current string) ([]string, error) {
	if keep < 1 {
		return nil, nil
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errListArchivesFailed, err)
	}

	currentName := ""
	if current != "" {
		currentName = filepath.Base(current)
	}

	retain := keep
	archives := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isRunArchive(entry.Name()) {
			continue
		}

		if entry.Name() == currentName {
			retain--

			continue
		}

		archives = append(archives, entry.Name())
	}

	if len(archives) <= retain {
		return nil, nil
	}

	slices.Sort(archives)

	removed := make([]string, 0, len(archives)-retain)

	for _, name := range archives[:len(archives)-retain] {
		path := filepath.Join(baseDir, name)
		if err := os.Remove(path); err != nil {
			logrus.WithError(err).WithField("file", path).Warn("Failed to remove old archive")

			continue
		}

		removed = append(removed, path)
	}

	logrus.WithFields(logrus.Fields{
		"kept":    keep,
		"removed": len(removed),
	}).Info("Pruned old archives")

	return removed, nil
}

// isRunArchive reports whether name is "<timestamp>[_unencrypted].zip".
func isRunArchive(name string) bool {
	stem, ok := strings.CutSuffix(name, archive.Extension)
	if !ok {
		return false
	}

	stem = strings.TrimSuffix(stem, archive.UnencryptedSuffix)

	_, err := time.Parse(util.TimestampLayout, stem)

	return err == nil
}
