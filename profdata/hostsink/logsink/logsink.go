// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package logsink provides a reference profdata.ProgressListener that
// logs part-loaded and cycle-detected events through the ambient
// logger (§6.3), the way the teacher provides a default TraceReporter
// alongside its reporter.Reporter interface.
package logsink // import "github.com/kevleyski/traceprof/profdata/hostsink/logsink"

import (
	"github.com/google/uuid"

	"github.com/kevleyski/traceprof/internal/log"
	"github.com/kevleyski/traceprof/profdata"
)

// Listener logs ingestion and cycle-detection progress. It never
// cancels: callers wanting cancellation should compose their own
// profdata.ProgressListener around this one.
type Listener struct {
	batch uuid.UUID
}

// New returns a Listener, stamping a fresh batch UUID for this
// listener's lifetime (§9 "session identity" convention, applied here
// to one progress-reporting session rather than the whole Data).
func New() *Listener {
	return &Listener{batch: uuid.New()}
}

func (l *Listener) OnPartLoaded(part *profdata.Part) (cancel bool) {
	log.Infof("batch %s: loaded part %q (number=%d thread=%d pid=%d)",
		l.batch, part.Filename, part.Number, part.ThreadID, part.PID)
	return false
}

func (l *Listener) OnCycleDetected(cycle *profdata.FunctionCycle) (cancel bool) {
	log.Infof("batch %s: detected call cycle #%d with %d members",
		l.batch, cycle.Number, len(cycle.Members))
	return false
}

var _ profdata.ProgressListener = (*Listener)(nil)
