// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package costval

import "strings"

// MaxReal is the number of primitive metric slots a CostVector carries.
// This is a fixed, compile-time bound (10 in the reference implementation)
// rather than a dynamic one: real-world part files carry a handful of
// event counters and a fixed array avoids a map lookup on every cost read.
const MaxReal = 10

// CostVector is a dense array of MaxReal SubCosts, plus a used-count
// tracking how many leading slots are actually populated. Indices at or
// beyond the used-count read as zero; writing to an index grows the
// used-count to cover it.
type CostVector struct {
	values [MaxReal]SubCost
	used   int
}

// Zero clears every slot and resets the used-count.
func (v *CostVector) Zero() {
	for i := range v.values {
		v.values[i] = 0
	}
	v.used = 0
}

// Used reports how many leading slots are populated.
func (v *CostVector) Used() int { return v.used }

// Get reads slot i, returning zero for any index at or beyond the
// used-count (including out-of-range indices).
func (v *CostVector) Get(i int) SubCost {
	if i < 0 || i >= v.used {
		return 0
	}
	return v.values[i]
}

// Set writes slot i, growing the used-count if needed. It panics if i is
// outside [0, MaxReal), since that would indicate a catalogue bug rather
// than bad input data.
func (v *CostVector) Set(i int, c SubCost) {
	v.values[i] = c
	if i+1 > v.used {
		v.used = i + 1
	}
}

// Add accumulates c into slot i (addCost(index, value) in the original).
func (v *CostVector) Add(i int, c SubCost) {
	v.Set(i, v.Get(i).Add(c))
}

// AddVector adds every populated slot of other into v.
func (v *CostVector) AddVector(other *CostVector) {
	if other == nil {
		return
	}
	for i := 0; i < other.used; i++ {
		v.Add(i, other.values[i])
	}
}

// Diff returns a new vector holding v minus other, slot by slot. Since
// SubCost never goes negative, any slot where other exceeds v reads zero.
func (v *CostVector) Diff(other *CostVector) CostVector {
	var d CostVector
	n := v.used
	if other.used > n {
		n = other.used
	}
	for i := 0; i < n; i++ {
		a, b := v.Get(i), other.Get(i)
		if a < b {
			d.Set(i, 0)
			continue
		}
		d.Set(i, a-b)
	}
	return d
}

// FieldMapping names the slot order a row of ASCII fields should land in:
// FieldMapping[column] is the CostVector slot that column maps to, or -1
// if the column has no slot (skip it). An identity mapping (0,1,2,...)
// can be applied without touching this indirection at all.
type FieldMapping interface {
	Len() int
	RealIndex(column int) int
	IsIdentity() bool
}

// SetRow zeroes v, then fills it by parsing fields as ASCII decimal
// integers routed through mapping. A row shorter than mapping's length
// terminates cleanly, leaving the remaining slots at zero. The first
// unparseable field aborts the row (the caller is expected to discard the
// whole record per the MalformedRecord recovery policy).
func (v *CostVector) SetRow(mapping FieldMapping, fields []string) error {
	v.Zero()
	return v.addRow(mapping, fields)
}

// AddRow parses fields the same way as SetRow, but accumulates into the
// existing contents instead of clearing first.
func (v *CostVector) AddRow(mapping FieldMapping, fields []string) error {
	return v.addRow(mapping, fields)
}

func (v *CostVector) addRow(mapping FieldMapping, fields []string) error {
	n := mapping.Len()
	if len(fields) < n {
		n = len(fields)
	}
	identity := mapping.IsIdentity()
	for col := 0; col < n; col++ {
		c, err := ParseSubCost(strings.TrimSpace(fields[col]))
		if err != nil {
			return err
		}
		idx := col
		if !identity {
			idx = mapping.RealIndex(col)
		}
		if idx < 0 {
			continue
		}
		v.Add(idx, c)
	}
	return nil
}
