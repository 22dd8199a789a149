// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"context"

	"github.com/kevleyski/traceprof/costval"
)

// Call is the global aggregate of one caller→called Function edge
// (§4.5): a cumulative cost plus a call count, summed over the
// per-part PartCall leaves, and owning the finer InstrCall/LineCall
// breakdowns.
type Call struct {
	lazyCostList[*PartCall]
	Caller, Called *Function

	calls      costval.SubCost
	lineCalls  []*LineCall
	instrCalls []*InstrCall
}

func (c *Call) Kind() Kind { return KindCall }

// Recursive reports whether this call's caller and called Function are
// the same (§3.4 invariant: still retained, just flagged).
func (c *Call) Recursive() bool { return c.Caller == c.Called }

func (c *Call) EnsureClean(ctx context.Context) {
	if !c.dirty {
		return
	}
	c.self.Zero()
	var calls costval.SubCost
	for _, d := range c.deps {
		if !d.leafPart().Active {
			continue
		}
		c.self.AddVector(d.leafCost())
		calls = calls.Add(d.calls)
	}
	c.calls = calls
	c.dirty = false
}

// Cost returns the clean dynamic cumulative cost attributed to this
// call edge.
func (c *Call) Cost(ctx context.Context) *costval.CostVector {
	c.EnsureClean(ctx)
	return c.selfLocked()
}

// Calls returns the clean dynamic call count.
func (c *Call) Calls(ctx context.Context) costval.SubCost {
	c.EnsureClean(ctx)
	return c.calls
}

// InCycle returns the cycle number of Caller if Caller and Called
// belong to the same FunctionCycle and Caller is not the cycle's base
// function; otherwise 0 (§4.5).
func (c *Call) InCycle() int {
	if c.Caller == nil || c.Called == nil {
		return 0
	}
	cycle := c.Caller.cycle
	if cycle == nil || cycle != c.Called.cycle {
		return 0
	}
	if cycle.base == c.Caller {
		return 0
	}
	return cycle.Number
}

// InstrCall and LineCall are the address/line-scoped breakdown of a
// Call's cost within a part (§3.4 ownership: Call → LineCall, InstrCall).
type InstrCall struct {
	lazyCostList[*PartInstrCall]
	call  *Call
	instr *Instr
}

func (c *InstrCall) Kind() Kind { return KindInstrCall }

func (c *InstrCall) EnsureClean(ctx context.Context) {
	if !c.dirty {
		return
	}
	c.recomputeSelf(ctx, "instrcall")
	c.dirty = false
}

func (c *InstrCall) Cost(ctx context.Context) *costval.CostVector {
	c.EnsureClean(ctx)
	return c.selfLocked()
}

type LineCall struct {
	lazyCostList[*PartLineCall]
	call *Call
	line *Line
}

func (c *LineCall) Kind() Kind { return KindLineCall }

func (c *LineCall) EnsureClean(ctx context.Context) {
	if !c.dirty {
		return
	}
	c.recomputeSelf(ctx, "linecall")
	c.dirty = false
}

func (c *LineCall) Cost(ctx context.Context) *costval.CostVector {
	c.EnsureClean(ctx)
	return c.selfLocked()
}
