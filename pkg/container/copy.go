package container

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Permissions used for extracted entries when the archive carries none.
const (
	defaultDirMode  = 0o755
	defaultFileMode = 0o644
)

// extractTar writes the entries of a Docker archive stream into dstDir.
//
// The daemon roots every entry at the copied directory's own name; that
// leading component is stripped so dstDir receives the directory's contents.
// Entries resolving outside dstDir and non-regular files other than
// directories are rejected.
//
// Parameters:
//   - reader: Tar stream returned by the daemon.
//   - rootName: Base name of the copied directory.
//   - dstDir: Host directory receiving the contents.
//
// Returns:
//   - int: Number of regular files written.
//   - error: Non-nil if the stream is malformed or a file cannot be written.
func extractTar(reader io.Reader, rootName, dstDir string) (int, error) {
	if err := os.MkdirAll(dstDir, defaultDirMode); err != nil {
		return 0, fmt.Errorf("%w: %w", errWriteFileFailed, err)
	}

	tarReader := tar.NewReader(reader)
	files := 0

	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return files, nil
		}

		if err != nil {
			return files, fmt.Errorf("%w: %w", errReadArchiveFailed, err)
		}

		relative, ok := stripRoot(header.Name, rootName)
		if !ok {
			continue
		}

		target := filepath.Join(dstDir, filepath.FromSlash(relative))
		if !withinDir(dstDir, target) {
			return files, fmt.Errorf("%w: %s", errUnsafeArchivePath, header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, defaultDirMode); err != nil {
				return files, fmt.Errorf("%w: %w", errWriteFileFailed, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tarReader, header.FileInfo().Mode().Perm()); err != nil {
				return files, err
			}

			files++
		default:
			return files, fmt.Errorf("%w: %s", errUnsupportedEntry, header.Name)
		}
	}
}

// stripRoot removes the copied directory's name from an entry path.
//
// Returns false for the root entry itself, which has nothing left to extract.
func stripRoot(name, rootName string) (string, bool) {
	cleaned := path.Clean(strings.TrimPrefix(name, "./"))

	if cleaned == rootName || cleaned == "." {
		return "", false
	}

	if rest, found := strings.CutPrefix(cleaned, rootName+"/"); found {
		return rest, true
	}

	return cleaned, true
}

// withinDir reports whether target resolves inside dir.
func withinDir(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// writeFile creates target with the contents of reader.
func writeFile(target string, reader io.Reader, mode os.FileMode) error {
	if mode == 0 {
		mode = defaultFileMode
	}

	if err := os.MkdirAll(filepath.Dir(target), defaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", errWriteFileFailed, err)
	}

	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("%w: %w", errWriteFileFailed, err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()

		return fmt.Errorf("%w: %w", errWriteFileFailed, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %w", errWriteFileFailed, err)
	}

	return nil
}
