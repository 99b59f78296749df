package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/yeka/zip"
)

// Extension of produced archives.
const Extension = ".zip"

// UnencryptedSuffix marks archives written without a password.
const UnencryptedSuffix = "_unencrypted"

// ArchiveName returns the file name of a run's archive.
//
// Parameters:
//   - timestamp: Run timestamp.
//   - encrypted: Whether a password is applied to the archive.
//
// Returns:
//   - string: "<timestamp>.zip", or "<timestamp>_unencrypted.zip" without a password.
func ArchiveName(timestamp string, encrypted bool) string {
	if encrypted {
		return timestamp + Extension
	}

	return timestamp + UnencryptedSuffix + Extension
}

// Archive writes sourceTree into destinationFile as a zip.
//
// Entries are rooted at the base name of sourceTree, so archiving "<base>/files"
// yields "files/<container>/<category>/...". A non-empty password encrypts every
// file entry with AES-256. A partially written destination is removed on failure.
//
// Parameters:
//   - sourceTree: Directory to archive.
//   - destinationFile: Zip file to create.
//   - password: Archive password, empty for an unprotected archive.
//
// Returns:
//   - error: ErrSourceUnavailable or ErrArchiveFailed, wrapped with the cause.
func Archive(sourceTree, destinationFile, password string) error {
	info, err := os.Stat(sourceTree)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrSourceUnavailable, sourceTree)
	}

	output, err := os.Create(destinationFile)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	entries, writeErr := writeTree(output, sourceTree, password)
	closeErr := output.Close()

	if writeErr == nil && closeErr != nil {
		writeErr = fmt.Errorf("%w: %w", ErrArchiveFailed, closeErr)
	}

	if writeErr != nil {
		if err := os.Remove(destinationFile); err != nil && !os.IsNotExist(err) {
			logrus.WithError(err).WithField("file", destinationFile).Debug("Failed to remove partial archive")
		}

		return writeErr
	}

	logrus.WithFields(logrus.Fields{
		"file":      destinationFile,
		"entries":   entries,
		"encrypted": password != "",
	}).Debug("Wrote archive")

	return nil
}

// writeTree walks sourceTree and writes every directory and file into a zip stream.
func writeTree(output io.Writer, sourceTree, password string) (int, error) {
	writer := zip.NewWriter(output)
	parent := filepath.Dir(filepath.Clean(sourceTree))
	entries := 0

	walkErr := filepath.WalkDir(sourceTree, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}

		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}

		name := filepath.ToSlash(rel)

		if entry.IsDir() {
			if _, err := writer.CreateHeader(&zip.FileHeader{Name: name + "/", Method: zip.Store}); err != nil {
				return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
			}

			entries++

			return nil
		}

		if !entry.Type().IsRegular() {
			logrus.WithField("path", path).Debug("Skipping non-regular file")

			return nil
		}

		if err := addFile(writer, path, name, password); err != nil {
			return err
		}

		entries++

		return nil
	})
	if walkErr != nil {
		_ = writer.Close()

		return entries, walkErr
	}

	if err := writer.Close(); err != nil {
		return entries, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	return entries, nil
}

// addFile copies one file into the zip stream, encrypted when a password is set.
func addFile(writer *zip.Writer, path, name, password string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer file.Close()

	var entry io.Writer

	if password != "" {
		entry, err = writer.Encrypt(name, password, zip.AES256Encryption)
	} else {
		entry, err = writer.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	if _, err := io.Copy(entry, file); err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	return nil
}
