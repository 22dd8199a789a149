// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metric

import "github.com/kevleyski/traceprof/costval"

// SubMapping is a fixed-order list of catalogue real-indexes describing
// how one part file's column order lands in a Catalogue's real-type
// slots. It implements costval.FieldMapping so a CostVector can consume
// an ASCII row directly through it.
type SubMapping struct {
	cat      *Catalogue
	order    []int // order[column] = real index
	identity bool
}

// NewSubMapping builds a sub-mapping for the given ordered column names,
// interning any name not already known to the catalogue as a new
// primitive metric type (short name doubles as long name in that case —
// callers that have a nicer long name should AddReal it first).
func NewSubMapping(cat *Catalogue, columns []string) (*SubMapping, error) {
	sm := &SubMapping{cat: cat, order: make([]int, len(columns))}
	identity := true
	for i, short := range columns {
		mt, ok := cat.Type(short)
		if !ok {
			var err error
			mt, err = cat.AddReal(short, short)
			if err != nil {
				return nil, err
			}
		}
		sm.order[i] = mt.RealIndex()
		if mt.RealIndex() != i {
			identity = false
		}
	}
	sm.identity = identity
	return sm, nil
}

// Len implements costval.FieldMapping.
func (sm *SubMapping) Len() int { return len(sm.order) }

// RealIndex implements costval.FieldMapping: returns the catalogue real
// index column i maps to, or -1 if i is out of range.
func (sm *SubMapping) RealIndex(i int) int {
	if i < 0 || i >= len(sm.order) {
		return -1
	}
	return sm.order[i]
}

// IsIdentity implements costval.FieldMapping: true if column i always
// maps to real index i (the common case, allowing callers to skip the
// permutation step entirely).
func (sm *SubMapping) IsIdentity() bool { return sm.identity }

// FirstUnused returns the lowest catalogue real index this sub-mapping
// does not reference, or -1 if none.
func (sm *SubMapping) FirstUnused() int {
	used := make([]bool, costval.MaxReal)
	for _, idx := range sm.order {
		used[idx] = true
	}
	n := costval.MaxReal
	if sm.cat != nil {
		n = sm.cat.RealCount()
	}
	for i := 0; i < n; i++ {
		if !used[i] {
			return i
		}
	}
	return -1
}

// NextUnused returns the next catalogue real index after i that this
// sub-mapping does not reference, or -1 if none remain.
func (sm *SubMapping) NextUnused(i int) int {
	if i < -1 || i >= costval.MaxReal {
		return -1
	}
	used := make([]bool, costval.MaxReal)
	for _, idx := range sm.order {
		used[idx] = true
	}
	n := costval.MaxReal
	if sm.cat != nil {
		n = sm.cat.RealCount()
	}
	for j := i + 1; j < n; j++ {
		if !used[j] {
			return j
		}
	}
	return -1
}
