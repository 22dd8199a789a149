// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import "github.com/kevleyski/traceprof/costval"

// Part is one on-disk profiling trace file covering one time slice or
// process/thread subset of a command invocation (§4.3). Its only
// mutable field after ingest is Active, and setting it is idempotent.
type Part struct {
	// Directory and Filename record provenance; Description, Trigger,
	// Timeframe, Version come from the part's header key/value lines.
	Directory   string
	Filename    string
	Description string
	Trigger     string
	Timeframe   string
	Version     string

	Number   int
	ThreadID int
	PID      int

	// Totals is the part's pre-computed totals vector, taken from the
	// header's `totals` line rather than recomputed from the body.
	Totals costval.CostVector

	// Active gates whether this part's leaves contribute to dynamic
	// (global) aggregates. Defaults to true.
	Active bool
}

// newPart constructs a Part with Active defaulted to true.
func newPart(dir, filename string) *Part {
	return &Part{Directory: dir, Filename: filename, Active: true}
}

// SetActive idempotently sets the active flag, returning whether the
// flag actually changed. Callers must follow a true return (if they
// care about dynamic aggregates) with Data.InvalidateDynamicCost.
func (p *Part) SetActive(active bool) bool {
	if p.Active == active {
		return false
	}
	p.Active = active
	return true
}
