// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"context"

	"github.com/kevleyski/traceprof/costval"
	"github.com/kevleyski/traceprof/internal/telemetry"
)

// InstrJump and LineJump are global aggregates of a jump edge between
// two instructions/lines (§4.5): two endpoints, a conditional flag, and
// the executed/followed counts summed over active part-scoped leaves.
type InstrJump struct {
	lazyBase
	From, To      *Instr
	IsConditional bool

	deps     []*PartInstrJump
	lastDep  *PartInstrJump
	executed costval.SubCost
	followed costval.SubCost
}

func (j *InstrJump) Kind() Kind { return KindInstrJump }

func (j *InstrJump) addDep(leaf *PartInstrJump) {
	j.deps = append(j.deps, leaf)
	j.lastDep = leaf
	j.markDirty()
}

func (j *InstrJump) findForPart(p *Part) (*PartInstrJump, bool) {
	if j.lastDep != nil && j.lastDep.leafPart() == p {
		return j.lastDep, true
	}
	for _, d := range j.deps {
		if d.leafPart() == p {
			j.lastDep = d
			return d, true
		}
	}
	return nil, false
}

func (j *InstrJump) EnsureClean(ctx context.Context) {
	if !j.dirty {
		return
	}
	var executed, followed costval.SubCost
	for _, d := range j.deps {
		if !d.leafPart().Active {
			continue
		}
		executed = executed.Add(d.executed)
		followed = followed.Add(d.followed)
	}
	j.executed, j.followed = executed, followed
	j.dirty = false
	telemetry.RecordRecompute(ctx, "instrjump")
}

// ExecutedCount and FollowedCount return the clean dynamic counts.
func (j *InstrJump) ExecutedCount(ctx context.Context) costval.SubCost {
	j.EnsureClean(ctx)
	return j.executed
}

func (j *InstrJump) FollowedCount(ctx context.Context) costval.SubCost {
	j.EnsureClean(ctx)
	return j.followed
}

type LineJump struct {
	lazyBase
	From, To      *Line
	IsConditional bool

	deps     []*PartLineJump
	lastDep  *PartLineJump
	executed costval.SubCost
	followed costval.SubCost
}

func (j *LineJump) Kind() Kind { return KindLineJump }

func (j *LineJump) addDep(leaf *PartLineJump) {
	j.deps = append(j.deps, leaf)
	j.lastDep = leaf
	j.markDirty()
}

func (j *LineJump) findForPart(p *Part) (*PartLineJump, bool) {
	if j.lastDep != nil && j.lastDep.leafPart() == p {
		return j.lastDep, true
	}
	for _, d := range j.deps {
		if d.leafPart() == p {
			j.lastDep = d
			return d, true
		}
	}
	return nil, false
}

func (j *LineJump) EnsureClean(ctx context.Context) {
	if !j.dirty {
		return
	}
	var executed, followed costval.SubCost
	for _, d := range j.deps {
		if !d.leafPart().Active {
			continue
		}
		executed = executed.Add(d.executed)
		followed = followed.Add(d.followed)
	}
	j.executed, j.followed = executed, followed
	j.dirty = false
	telemetry.RecordRecompute(ctx, "linejump")
}

func (j *LineJump) ExecutedCount(ctx context.Context) costval.SubCost {
	j.EnsureClean(ctx)
	return j.executed
}

func (j *LineJump) FollowedCount(ctx context.Context) costval.SubCost {
	j.EnsureClean(ctx)
	return j.followed
}
