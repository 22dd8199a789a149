// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"context"

	"github.com/kevleyski/traceprof/costval"
)

// Function is the global aggregate of one (name, class, file, object)
// identity (§3.4, §4.6). It owns its outgoing Call list, its
// FunctionSource list, and an address→Instr map; invalidating it
// cascades into its cycle, Class, File, Object, and Data.
type Function struct {
	lazyCostList[*PartFunction]
	Name string

	class  *Class
	file   *File
	object *Object
	data   *Data

	sources []*FunctionSource
	instrs  map[uint64]*Instr

	outgoing []*Call // calls made by this function (Caller == f)
	incoming []*Call // calls made to this function (Called == f)

	cycle *FunctionCycle
}

func (f *Function) Kind() Kind { return KindFunction }

// Class, File, Object return the declaring containers.
func (f *Function) Class() *Class         { return f.class }
func (f *Function) File() *File           { return f.file }
func (f *Function) Object() *Object       { return f.object }
func (f *Function) Cycle() *FunctionCycle { return f.cycle }

// markDirty shadows the embedded lazyBase.markDirty to additionally
// cascade into this function's cycle entry and containers (§4.6).
func (f *Function) markDirty() {
	f.dirty = true
	if f.cycle != nil {
		f.cycle.markDirty()
	}
	if f.class != nil {
		f.class.markDirty()
	}
	if f.file != nil {
		f.file.markDirty()
	}
	if f.object != nil {
		f.object.markDirty()
	}
	if f.data != nil {
		f.data.markDirty()
	}
}

func (f *Function) EnsureClean(ctx context.Context) {
	if !f.dirty {
		return
	}
	f.recomputeSelf(ctx, "function")
	f.dirty = false
}

// Cost returns the clean dynamic self cost.
func (f *Function) Cost(ctx context.Context) *costval.CostVector {
	f.EnsureClean(ctx)
	return f.selfLocked()
}

// CumulativeCost returns self cost plus the cumulative cost of every
// outgoing call edge, excluding edges for which Call.InCycle is nonzero
// (cycle-internal edges whose caller is not the cycle's base), which
// would double count the cycle's own synthesized cumulative cost (§4.5).
func (f *Function) CumulativeCost(ctx context.Context) costval.CostVector {
	var cum costval.CostVector
	cum.AddVector(f.Cost(ctx))
	for _, call := range f.outgoing {
		if call.InCycle() != 0 {
			continue
		}
		cum.AddVector(call.Cost(ctx))
	}
	return cum
}

// CalledCount is the sum of call counts across all incoming edges.
func (f *Function) CalledCount(ctx context.Context) costval.SubCost {
	var n costval.SubCost
	for _, call := range f.incoming {
		n = n.Add(call.Calls(ctx))
	}
	return n
}

// CallingCount is the sum of call counts across all outgoing edges.
func (f *Function) CallingCount(ctx context.Context) costval.SubCost {
	var n costval.SubCost
	for _, call := range f.outgoing {
		n = n.Add(call.Calls(ctx))
	}
	return n
}

// CalledContexts is the number of distinct callers.
func (f *Function) CalledContexts() int { return len(f.incoming) }

// CallingContexts is the number of distinct callees.
func (f *Function) CallingContexts() int { return len(f.outgoing) }

// FirstAddress and LastAddress are the min/max of this function's
// owned instruction addresses, or (0, false) if it owns none.
func (f *Function) FirstAddress() (uint64, bool) {
	if len(f.instrs) == 0 {
		return 0, false
	}
	first := ^uint64(0)
	for addr := range f.instrs {
		if addr < first {
			first = addr
		}
	}
	return first, true
}

func (f *Function) LastAddress() (uint64, bool) {
	if len(f.instrs) == 0 {
		return 0, false
	}
	var last uint64
	for addr := range f.instrs {
		if addr > last {
			last = addr
		}
	}
	return last, true
}

// Outgoing and Incoming expose the caller/callee edge lists.
func (f *Function) Outgoing() []*Call { return f.outgoing }
func (f *Function) Incoming() []*Call { return f.incoming }

// Sources returns the owned FunctionSource list (one per file this
// function has inlined code from).
func (f *Function) Sources() []*FunctionSource { return f.sources }

// FirstLineno and LastLineno are the min/max source line owned across
// all of this function's FunctionSources, or (0, false) if it owns no
// lines at all.
func (f *Function) FirstLineno() (int, bool) {
	found := false
	first := int(^uint(0) >> 1)
	for _, src := range f.sources {
		if ln, ok := src.FirstLineno(); ok {
			found = true
			if ln < first {
				first = ln
			}
		}
	}
	if !found {
		return 0, false
	}
	return first, true
}

func (f *Function) LastLineno() (int, bool) {
	found := false
	var last int
	for _, src := range f.sources {
		if ln, ok := src.LastLineno(); ok {
			found = true
			if ln > last {
				last = ln
			}
		}
	}
	if !found {
		return 0, false
	}
	return last, true
}

// FunctionCycle is a strongly-connected component of the call graph,
// exposed as a synthesized Function (§4.9): its aggregated cost
// excludes cycle-internal edges, and its caller/callee lists are the
// union of edges crossing the cycle boundary.
type FunctionCycle struct {
	Function
	Number  int
	Members []*Function
	base    *Function
}

func (fc *FunctionCycle) Kind() Kind { return KindFunctionCycle }

// Base returns the member function nominated as the cycle's
// representative (greatest inclusive cost in the primary metric, tied
// broken lexicographically by name).
func (fc *FunctionCycle) Base() *Function { return fc.base }

func (fc *FunctionCycle) EnsureClean(ctx context.Context) {
	if !fc.dirty {
		return
	}
	fc.self.Zero()
	for _, m := range fc.Members {
		fc.self.AddVector(m.Cost(ctx))
	}
	fc.dirty = false
}

func (fc *FunctionCycle) Cost(ctx context.Context) *costval.CostVector {
	fc.EnsureClean(ctx)
	return fc.selfLocked()
}

// CumulativeCost overrides Function.CumulativeCost (Go has no virtual
// dispatch through an embedded struct, so this must be a distinct
// method rather than relying on the promoted one, which would sum the
// embedded, always-empty Function fields instead of Members/outgoing):
// self cost plus every call edge crossing the cycle boundary outward.
func (fc *FunctionCycle) CumulativeCost(ctx context.Context) costval.CostVector {
	var cum costval.CostVector
	cum.AddVector(fc.Cost(ctx))
	for _, call := range fc.outgoing {
		cum.AddVector(call.Cost(ctx))
	}
	return cum
}
