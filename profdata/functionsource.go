// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"context"

	"github.com/kevleyski/traceprof/costval"
)

// FunctionSource is a (Function, File) pair: inlining means one
// Function may have source lines spread across several files, so each
// such file gets its own FunctionSource owning a lineno→Line map
// (§3.4).
type FunctionSource struct {
	fn   *Function
	file *File

	lines map[int]*Line
}

func (fs *FunctionSource) Kind() Kind          { return KindFunctionSource }
func (fs *FunctionSource) Function() *Function { return fs.fn }
func (fs *FunctionSource) File() *File         { return fs.file }

// Lines returns the owned lineno→Line map. Callers must not mutate it.
func (fs *FunctionSource) Lines() map[int]*Line { return fs.lines }

// Cost is the sum of owned Lines' dynamic self cost.
func (fs *FunctionSource) Cost(ctx context.Context) costval.CostVector {
	var total costval.CostVector
	for _, ln := range fs.lines {
		total.AddVector(ln.Cost(ctx))
	}
	return total
}

// FirstLineno and LastLineno are the min/max of the owned line
// numbers, or (0, false) if none are owned.
func (fs *FunctionSource) FirstLineno() (int, bool) {
	if len(fs.lines) == 0 {
		return 0, false
	}
	first := int(^uint(0) >> 1)
	for ln := range fs.lines {
		if ln < first {
			first = ln
		}
	}
	return first, true
}

func (fs *FunctionSource) LastLineno() (int, bool) {
	if len(fs.lines) == 0 {
		return 0, false
	}
	var last int
	for ln := range fs.lines {
		if ln > last {
			last = ln
		}
	}
	return last, true
}
