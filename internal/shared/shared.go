// Package shared holds configuration, storage setup, logging and browser helpers used across playster.
package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a timestamped [log.Logger] prefixed with "playster". A nil writer means [os.Stderr].
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true, Prefix: "playster"})
}

// NewFileLogger creates a debug-level logger that appends to path, creating parent directories as needed.
//
// The TUI logs here so log lines do not interfere with rendering.
func NewFileLogger(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l := NewLogger(f)
	SetDebug(l, true)
	return l, nil
}

// WithLogger creates a child [log.Logger] that adds kv to every entry.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetDebug switches l between debug output with caller reporting and the default info level.
func SetDebug(l *log.Logger, on bool) {
	l.SetReportCaller(on)
	if on {
		l.SetLevel(log.DebugLevel)
		return
	}
	l.SetLevel(log.InfoLevel)
}

// GenerateID returns a random v4 UUID, used for OAuth state values.
func GenerateID() string {
	return uuid.New().String()
}
