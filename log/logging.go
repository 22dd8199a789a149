// Package log provides the public logging interface for traceprof.
package log // import "github.com/kevleyski/traceprof/log"

import (
	"log/slog"

	"github.com/kevleyski/traceprof/internal/log"
)

// SetLevel configures the log level of traceprof's internal logger.
func SetLevel(level slog.Level) {
	log.SetLevelLogger(level)
}

// SetLogger replaces traceprof's internal logger outright, letting a host
// application route engine logs through its own handler.
func SetLogger(l slog.Logger) {
	log.SetLogger(l)
}
