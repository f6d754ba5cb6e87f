package logger

import (
	"github.com/charmbracelet/log"
)

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(output, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// JSON creates a logger emitting JSON lines, used by the HTTP server.
func JSON(prefix string) *log.Logger {
	return NewWithConfig(prefix, log.GetLevel(), false, true, log.JSONFormatter)
}
