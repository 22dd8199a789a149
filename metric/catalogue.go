// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package metric implements the cost-metric catalogue: primitive metric
// types read directly from a part file's columns, and derived metric
// types computed as a linear combination of primitive ones.
package metric // import "github.com/kevleyski/traceprof/metric"

import (
	"errors"
	"fmt"

	"github.com/kevleyski/traceprof/costval"
)

// ErrUnknownMetric is returned when a derived metric's formula names a
// short name that is not in the catalogue.
var ErrUnknownMetric = errors.New("metric: unknown metric name in formula")

// ErrCyclicFormula is returned when a derived metric's formula refers,
// transitively, to itself.
var ErrCyclicFormula = errors.New("metric: cyclic formula")

// TypeID identifies a MetricType within a Catalogue. Real (primitive)
// ids occupy [0, costval.MaxReal); derived ids occupy
// [costval.MaxReal, costval.MaxReal+MaxVirtual).
type TypeID int

// MaxVirtual bounds how many derived metric types a Catalogue can hold.
const MaxVirtual = costval.MaxReal

// MetricType is either a primitive metric (a direct read of one
// CostVector slot) or a derived one (a linear combination of slots plus
// a constant, described by a formula string over other metrics' short
// names).
type MetricType struct {
	id   TypeID
	cat  *Catalogue
	Short string
	Long  string

	// Formula is empty for primitive metric types.
	Formula string

	realIndex int // valid only if Formula == ""
	coeff     [costval.MaxReal]int64
	constant  int64

	parsed  bool
	parsing bool // guards against self-referential formulas

	// color is cached the way the original caches a QColor per type;
	// this engine does not assign colors itself (that is a GUI
	// concern, §1), so it is just an opaque slot callers may set.
	color string
}

// ID returns the metric's catalogue-wide id.
func (mt *MetricType) ID() TypeID { return mt.id }

// IsReal reports whether this is a primitive (real) metric type.
func (mt *MetricType) IsReal() bool { return mt.Formula == "" }

// RealIndex returns the CostVector slot a primitive metric reads. It is
// only meaningful when IsReal() is true.
func (mt *MetricType) RealIndex() int { return mt.realIndex }

// Color returns the cached display color, or "" if none has been set.
func (mt *MetricType) Color() string { return mt.color }

// SetColor caches a display color for this metric type. Color
// *assignment* policy lives outside the core (§1); this is just storage.
func (mt *MetricType) SetColor(c string) { mt.color = c }

// Catalogue is the per-Data set of metric types: an ordered list of
// primitive types and an ordered list of derived types, each with unique
// short names within its own scope. AddDerived does not check the
// primitive scope, so a derived type may share a primitive type's short
// name; Type then resolves that name to the primitive type.
type Catalogue struct {
	real          []*MetricType
	derived       []*MetricType
	realByShort    map[string]*MetricType
	derivedByShort map[string]*MetricType
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{
		realByShort:    make(map[string]*MetricType),
		derivedByShort: make(map[string]*MetricType),
	}
}

// AddReal interns (or returns the existing) primitive metric type named
// short. Re-adding an existing short name returns the original type
// unchanged, matching TraceCostMapping::addReal's idempotent lookup.
func (c *Catalogue) AddReal(short, long string) (*MetricType, error) {
	if mt, ok := c.realByShort[short]; ok {
		return mt, nil
	}
	if len(c.real) >= costval.MaxReal {
		return nil, fmt.Errorf("metric: catalogue real-type capacity (%d) exceeded", costval.MaxReal)
	}
	mt := &MetricType{
		id:        TypeID(len(c.real)),
		cat:       c,
		Short:     short,
		Long:      long,
		realIndex: len(c.real),
	}
	c.real = append(c.real, mt)
	c.realByShort[short] = mt
	return mt, nil
}

// AddDerived interns a derived metric type with the given formula. The
// formula is parsed (and validated for unknown names / cycles)
// immediately; per §7, a formula error marks the metric "unparseable"
// (it is still added, but Value/Histogram calls on it read as zero) and
// the error is returned to the caller for reporting.
func (c *Catalogue) AddDerived(short, long, formula string) (*MetricType, error) {
	if mt, ok := c.derivedByShort[short]; ok {
		return mt, nil
	}
	if len(c.derived) >= MaxVirtual {
		return nil, fmt.Errorf("metric: catalogue derived-type capacity (%d) exceeded", MaxVirtual)
	}
	mt := &MetricType{
		id:      TypeID(costval.MaxReal + len(c.derived)),
		cat:     c,
		Short:   short,
		Long:    long,
		Formula: formula,
	}
	c.derived = append(c.derived, mt)
	c.derivedByShort[short] = mt

	if err := c.parseFormula(mt); err != nil {
		return mt, err
	}
	return mt, nil
}

// RealCount returns the number of primitive metric types.
func (c *Catalogue) RealCount() int { return len(c.real) }

// DerivedCount returns the number of derived metric types.
func (c *Catalogue) DerivedCount() int { return len(c.derived) }

// RealType returns the i-th primitive metric type, or nil if out of range.
func (c *Catalogue) RealType(i int) *MetricType {
	if i < 0 || i >= len(c.real) {
		return nil
	}
	return c.real[i]
}

// DerivedType returns the i-th derived metric type, or nil if out of range.
func (c *Catalogue) DerivedType(i int) *MetricType {
	if i < 0 || i >= len(c.derived) {
		return nil
	}
	return c.derived[i]
}

// Type looks up a metric type by short name, checking the primitive
// scope before the derived scope (primitive-first matches
// TraceCostMapping::type()). A short name present in both scopes
// resolves to the primitive type.
func (c *Catalogue) Type(short string) (*MetricType, bool) {
	if mt, ok := c.realByShort[short]; ok {
		return mt, true
	}
	if mt, ok := c.derivedByShort[short]; ok {
		return mt, true
	}
	return nil, false
}

// UnusedReal calls fn for every primitive index in [0, costval.MaxReal)
// that this catalogue has not assigned to a real type, in ascending
// order. This backs the sub-mapping "enumerate unused primitive slots"
// requirement (§3.3) for a catalogue-wide view rather than a single
// sub-mapping's view.
func (c *Catalogue) UnusedReal(fn func(index int)) {
	used := make([]bool, costval.MaxReal)
	for _, mt := range c.real {
		used[mt.realIndex] = true
	}
	for i, u := range used {
		if !u {
			fn(i)
		}
	}
}
