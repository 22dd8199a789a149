// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"context"

	"github.com/kevleyski/traceprof/costval"
)

// Instr is the global, lazily-aggregated cost at one instruction
// address within a Function (§4.6).
type Instr struct {
	lazyCostList[*PartInstr]
	Addr  uint64
	fn    *Function
	jumps []*InstrJump
	calls []*InstrCall
}

func (i *Instr) Kind() Kind          { return KindInstr }
func (i *Instr) Function() *Function { return i.fn }

func (i *Instr) EnsureClean(ctx context.Context) {
	if !i.dirty {
		return
	}
	i.recomputeSelf(ctx, "instr")
	i.dirty = false
}

func (i *Instr) Cost(ctx context.Context) *costval.CostVector {
	i.EnsureClean(ctx)
	return i.selfLocked()
}

// Line is the global, lazily-aggregated cost at one source line within
// a FunctionSource.
type Line struct {
	lazyCostList[*PartLine]
	Lineno int
	source *FunctionSource
	jumps  []*LineJump
	calls  []*LineCall
}

func (l *Line) Kind() Kind              { return KindLine }
func (l *Line) Source() *FunctionSource { return l.source }

func (l *Line) EnsureClean(ctx context.Context) {
	if !l.dirty {
		return
	}
	l.recomputeSelf(ctx, "line")
	l.dirty = false
}

func (l *Line) Cost(ctx context.Context) *costval.CostVector {
	l.EnsureClean(ctx)
	return l.selfLocked()
}
