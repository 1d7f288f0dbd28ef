package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileLogger writes pipeline progress to a timestamped per-run log file in
// the log directory and maintains a latest.log symlink pointing to the
// most recent run. It is thread-safe and supports the same level filtering
// as the console logger.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger that writes under logDir, creating
// the directory if needed. The run log file is named run-YYYYMMDD-HHMMSS.log.
func NewFileLogger(logDir, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", timestamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	// Best-effort latest.log symlink; unsupported filesystems just skip it
	symlinkPath := filepath.Join(logDir, "latest.log")
	_ = os.Remove(symlinkPath)
	_ = os.Symlink(filepath.Base(runFile), symlinkPath)

	return &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}, nil
}

// RunFile returns the path of the current run log file.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.runLog != nil {
		err := fl.runLog.Close()
		fl.runLog = nil
		return err
	}
	return nil
}

// logWithLevel writes a single formatted line to the run log.
// Format: "[2006-01-02 15:04:05] [LEVEL] <message>"
func (fl *FileLogger) logWithLevel(level, message string) {
	if logLevelToInt(normalizeLogLevel(level)) < logLevelToInt(fl.logLevel) {
		return
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.runLog == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(fl.runLog, "[%s] [%s] %s\n", timestamp, level, message)
}

// Tracef logs a formatted trace-level message.
func (fl *FileLogger) Tracef(format string, args ...interface{}) {
	fl.logWithLevel("TRACE", fmt.Sprintf(format, args...))
}

// Debugf logs a formatted debug-level message.
func (fl *FileLogger) Debugf(format string, args ...interface{}) {
	fl.logWithLevel("DEBUG", fmt.Sprintf(format, args...))
}

// Infof logs a formatted info-level message.
func (fl *FileLogger) Infof(format string, args ...interface{}) {
	fl.logWithLevel("INFO", fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warning-level message.
func (fl *FileLogger) Warnf(format string, args ...interface{}) {
	fl.logWithLevel("WARN", fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error-level message.
func (fl *FileLogger) Errorf(format string, args ...interface{}) {
	fl.logWithLevel("ERROR", fmt.Sprintf(format, args...))
}
