// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"context"

	"github.com/kevleyski/traceprof/costval"
)

// Object, File, and Class are the three name-keyed global containers
// (§3.4). Each lazily sums its part-scoped leaves and keeps a
// non-owning back-reference list of the Functions it contains.
type Object struct {
	lazyCostList[*PartObject]
	Name      string
	functions []*Function
	cycle     *ObjectCycle
}

func (o *Object) Kind() Kind { return KindObject }

// EnsureClean recomputes o's self cost if dirty.
func (o *Object) EnsureClean(ctx context.Context) {
	if !o.dirty {
		return
	}
	o.recomputeSelf(ctx, "object")
	o.dirty = false
}

// Cost returns the clean dynamic self cost.
func (o *Object) Cost(ctx context.Context) *costval.CostVector {
	o.EnsureClean(ctx)
	return o.selfLocked()
}

// Functions returns the back-reference list of Functions declared in
// this object.
func (o *Object) Functions() []*Function { return o.functions }

type File struct {
	lazyCostList[*PartFile]
	Name      string
	functions []*Function
	cycle     *FileCycle
}

func (f *File) Kind() Kind { return KindFile }

func (f *File) EnsureClean(ctx context.Context) {
	if !f.dirty {
		return
	}
	f.recomputeSelf(ctx, "file")
	f.dirty = false
}

func (f *File) Cost(ctx context.Context) *costval.CostVector {
	f.EnsureClean(ctx)
	return f.selfLocked()
}

func (f *File) Functions() []*Function { return f.functions }

type Class struct {
	lazyCostList[*PartClass]
	Name      string
	functions []*Function
	cycle     *ClassCycle
}

func (c *Class) Kind() Kind { return KindClass }

func (c *Class) EnsureClean(ctx context.Context) {
	if !c.dirty {
		return
	}
	c.recomputeSelf(ctx, "class")
	c.dirty = false
}

func (c *Class) Cost(ctx context.Context) *costval.CostVector {
	c.EnsureClean(ctx)
	return c.selfLocked()
}

func (c *Class) Functions() []*Function { return c.functions }
