// Package logger builds charmbracelet/log loggers for the fmindex drivers.
// Loggers write to stderr so that stdout stays free for query output and
// the IPC stream.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a new default charm log that respects the global log level.
func New(prefix string) *log.Logger {
	return NewWithWriter(os.Stderr, prefix)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// NewDebug builds the logger of a driver run with -d: debug level, caller
// locations, and logfmt lines that can be grepped out of long benchmark runs.
func NewDebug(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           log.DebugLevel,
		ReportCaller:    true,
		ReportTimestamp: true,
		Formatter:       log.LogfmtFormatter,
	})
}
