// Package logging builds the logrus logger shared by the server and CLI.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Standard field names for structured logging.
const (
	FieldEmployee = "employee"
	FieldPlant    = "plant"
	FieldCount    = "count"
	FieldPeriod   = "period"
	FieldFile     = "file_path"
	FieldFormat   = "format"
	FieldReason   = "reason"
	FieldDuration = "duration_ms"
)

// New creates a logger with the given level ("debug", "info", "warn",
// "error") and format ("json" or "text"). An unknown level falls back to
// info with a warning.
func New(level, format string) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// Discard returns a logger that writes nothing, for tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
