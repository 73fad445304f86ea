package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output so audit-style
// key/value events stay machine readable.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
