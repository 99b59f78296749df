package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Permissions for the log directory and run log files.
const (
	logDirMode  = 0o755
	logFileMode = 0o644
)

// Errors for run log operations.
var (
	// errCreateLogDirFailed indicates the log directory could not be created.
	errCreateLogDirFailed = errors.New("failed to create log directory")
	// errCreateLogFileFailed indicates the run log file could not be created.
	errCreateLogFileFailed = errors.New("failed to create run log file")
)

// RunLog copies every log entry of one backup run into a timestamped file.
//
// It is a logrus hook on the standard logger, attached by OpenRunLog and detached by Close.
type RunLog struct {
	mu        sync.Mutex
	file      *os.File
	path      string
	formatter logrus.Formatter
	logger    *logrus.Logger
}

// OpenRunLog creates <dir>/<timestamp>.log and attaches it to the standard logger.
//
// Parameters:
//   - dir: Log directory, created if missing.
//   - timestamp: Run timestamp used as the file name.
//
// Returns:
//   - *RunLog: Attached run log.
//   - error: Non-nil if the directory or file cannot be created.
func OpenRunLog(dir, timestamp string) (*RunLog, error) {
	return openRunLog(logrus.StandardLogger(), dir, timestamp)
}

func openRunLog(logger *logrus.Logger, dir, timestamp string) (*RunLog, error) {
	if err := os.MkdirAll(dir, logDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", errCreateLogDirFailed, err)
	}

	path := filepath.Join(dir, timestamp+".log")

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCreateLogFileFailed, err)
	}

	runLog := &RunLog{
		file: file,
		path: path,
		formatter: &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		},
		logger: logger,
	}

	logger.AddHook(runLog)

	return runLog, nil
}

// Path returns the run log file path.
func (r *RunLog) Path() string {
	return r.path
}

// Levels returns the levels the hook receives. Debug and trace output stays on the console.
func (r *RunLog) Levels() []logrus.Level {
	return logrus.AllLevels[:logrus.InfoLevel+1]
}

// Fire appends a formatted entry to the run log file.
func (r *RunLog) Fire(entry *logrus.Entry) error {
	line, err := r.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("failed to format run log entry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}

	if _, err := r.file.Write(line); err != nil {
		return fmt.Errorf("failed to write run log entry: %w", err)
	}

	return nil
}

// Close detaches the hook and closes the file. It is safe to call more than once.
func (r *RunLog) Close() error {
	hooks := make(logrus.LevelHooks)

	for level, levelHooks := range r.logger.Hooks {
		for _, hook := range levelHooks {
			if hook != r {
				hooks[level] = append(hooks[level], hook)
			}
		}
	}

	r.logger.ReplaceHooks(hooks)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}

	err := r.file.Close()
	r.file = nil

	if err != nil {
		return fmt.Errorf("failed to close run log: %w", err)
	}

	return nil
}
