// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"context"

	"github.com/kevleyski/traceprof/costval"
	"github.com/kevleyski/traceprof/internal/telemetry"
)

// lazyBase is the dirty-flag half of the lazy recomputation protocol
// shared by every global aggregate. It intentionally carries no
// knowledge of what "clean" means for a given entity — each entity
// type implements its own EnsureClean that clears dirty after summing
// its own deps. Propagation to containing aggregates (§4.4/§9's
// "dependant" cascade) is done imperatively by each entity's own
// markDirty override (Function.markDirty's cascade into its cycle,
// Class, File, Object, Data; Data.InvalidateDynamicCost's top-down
// walk) rather than through a generic back-edge list, since the
// container relationships are fixed at construction and known to every
// entity type already.
type lazyBase struct {
	dirty bool
}

func newLazyBase() lazyBase {
	return lazyBase{dirty: true}
}

// markDirty sets dirty. Idempotent: if already dirty, the cascade into
// containers has already run and stops here (this is what keeps
// activation-toggle invalidation from being quadratic in the container
// depth).
func (l *lazyBase) markDirty() {
	l.dirty = true
}

// costLeaf is a part-scoped leaf (or finer global aggregate) that a
// lazyCostList sums over. Pointer receivers satisfy this, so the zero
// value of a costLeaf type parameter (nil) is a safe "no lastDep yet"
// sentinel.
type costLeaf interface {
	comparable
	leafPart() *Part
	leafCost() *costval.CostVector
}

// lazyCostList is the common shape of every global aggregate whose
// dynamic self cost is the sum, over active parts, of a flat list of
// part-scoped cost-vector leaves: Instr, Line, Function, Class, File,
// Object all embed one of these, parameterized by their leaf type.
type lazyCostList[L costLeaf] struct {
	lazyBase
	deps    []L
	lastDep L // fast path for "still appending to the same part"
	self    costval.CostVector
}

func newLazyCostList[L costLeaf]() lazyCostList[L] {
	return lazyCostList[L]{lazyBase: newLazyBase()}
}

// addDep appends a new part-scoped child and marks this aggregate
// dirty. Containing aggregates are not marked.
func (c *lazyCostList[L]) addDep(leaf L) {
	c.deps = append(c.deps, leaf)
	c.lastDep = leaf
	c.markDirty()
}

// findForPart returns the dep belonging to part p, using lastDep as an
// O(1) fast path for the common "continue adding to the same part"
// ingest pattern (§4.4).
func (c *lazyCostList[L]) findForPart(p *Part) (L, bool) {
	var zero L
	if c.lastDep != zero && c.lastDep.leafPart() == p {
		return c.lastDep, true
	}
	for _, d := range c.deps {
		if d.leafPart() == p {
			c.lastDep = d
			return d, true
		}
	}
	return zero, false
}

// recomputeSelf re-sums deps filtered to active parts. Callers must
// clear dirty themselves after calling this (kept separate so entity
// types can fold additional bookkeeping into the same EnsureClean pass
// without a second walk over deps).
func (c *lazyCostList[L]) recomputeSelf(ctx context.Context, kind string) {
	c.self.Zero()
	for _, d := range c.deps {
		if !d.leafPart().Active {
			continue
		}
		c.self.AddVector(d.leafCost())
	}
	telemetry.RecordRecompute(ctx, kind)
}

// selfLocked returns the self-cost vector as last computed. It does not
// recompute; callers run EnsureClean first.
func (c *lazyCostList[L]) selfLocked() *costval.CostVector {
	return &c.self
}
