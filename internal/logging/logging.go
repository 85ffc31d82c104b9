// Package logging sets up the editor's file logger. The terminal belongs to
// the UI, so nothing is ever written to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// FileName is the log file used when no explicit path is configured.
const FileName = "mapmark.log"

// LogFilePath builds the default log file path inside dir.
func LogFilePath(dir string) string {
	return filepath.Join(dir, FileName)
}

// ParseLevel maps a config value to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Setup opens (appending) the log file at path and returns a logger writing
// to it. The returned closer must be closed on exit.
func Setup(path, level string) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(f).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("app", "mapmark").
		Logger()
	return logger, f, nil
}

func Nop() zerolog.Logger {
	return zerolog.Nop()
}
