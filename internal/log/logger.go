package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options configures NewLogger.
type Options struct {
	// Console receives warnings, or everything in verbose mode.
	// Nil disables console logging.
	Console io.Writer

	// File receives every record at debug level. Nil disables it.
	File io.Writer

	// Verbose lowers the console level to Debug.
	Verbose bool
}

// NewLogger returns a logger writing to the console and the log file.
// Both outputs are sanitized.
func NewLogger(opts Options) *slog.Logger {
	var handlers []slog.Handler
	if opts.File != nil {
		handlers = append(handlers, NewSecureHandler(slog.NewTextHandler(opts.File, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if opts.Console != nil {
		handlers = append(handlers, NewSecureHandler(slog.NewTextHandler(opts.Console, &slog.HandlerOptions{
			Level: consoleLevel(opts.Verbose),
		})))
	}
	if len(handlers) == 0 {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(NewFanoutHandler(handlers...))
}

// OpenLogFile opens path for appending, creating it and its parent
// directory when missing.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // User-provided log path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
