// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metric

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kevleyski/traceprof/costval"
)

// parseFormula resolves mt.Formula into a dense coefficient vector plus a
// constant term. Grammar (spec §3.3):
//
//	formula := term (('+'|'-') term)*
//	term     := [coefficient '*'] short-name
//
// This is a hand-written recursive-descent / token-scan parser per the
// design note that a library is unwarranted for a grammar this small.
func (c *Catalogue) parseFormula(mt *MetricType) error {
	if mt.parsed {
		return nil
	}
	if mt.parsing {
		return fmt.Errorf("%w: %q", ErrCyclicFormula, mt.Short)
	}
	mt.parsing = true
	defer func() { mt.parsing = false }()

	terms, err := tokenizeFormula(mt.Formula)
	if err != nil {
		return err
	}

	for _, t := range terms {
		ref, ok := c.Type(t.name)
		if !ok {
			return fmt.Errorf("%w: %q (in formula for %q)", ErrUnknownMetric, t.name, mt.Short)
		}
		if ref.IsReal() {
			mt.coeff[ref.realIndex] += t.sign * t.coefficient
			continue
		}
		// Derived metric referencing another derived metric: resolve
		// the referenced one first (recursively), then fold its
		// coefficients in scaled by this term's sign/coefficient.
		// parsing flag on ref catches self/mutual cycles.
		if err := c.parseFormula(ref); err != nil {
			return err
		}
		for i := 0; i < costval.MaxReal; i++ {
			mt.coeff[i] += t.sign * t.coefficient * ref.coeff[i]
		}
		mt.constant += t.sign * t.coefficient * ref.constant
	}

	mt.parsed = true
	return nil
}

type formulaTerm struct {
	sign        int64
	coefficient int64
	name        string
}

// tokenizeFormula splits "a + 2*b - c" into signed, coefficient-scaled
// name references.
func tokenizeFormula(formula string) ([]formulaTerm, error) {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return nil, nil
	}

	var terms []formulaTerm
	sign := int64(1)
	for _, raw := range splitOnSignedBoundaries(formula) {
		part := strings.TrimSpace(raw)
		if part == "" {
			continue
		}
		switch part[0] {
		case '+':
			sign = 1
			part = strings.TrimSpace(part[1:])
		case '-':
			sign = -1
			part = strings.TrimSpace(part[1:])
		}
		if part == "" {
			return nil, fmt.Errorf("metric: malformed formula %q: dangling operator", formula)
		}

		coeff := int64(1)
		name := part
		if i := strings.IndexByte(part, '*'); i >= 0 {
			coeffStr := strings.TrimSpace(part[:i])
			name = strings.TrimSpace(part[i+1:])
			v, err := strconv.ParseInt(coeffStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("metric: malformed coefficient %q in formula %q: %w", coeffStr, formula, err)
			}
			coeff = v
		}
		if name == "" {
			return nil, fmt.Errorf("metric: malformed formula %q: missing metric name", formula)
		}
		terms = append(terms, formulaTerm{sign: sign, coefficient: coeff, name: name})
		sign = 1
	}
	return terms, nil
}

// splitOnSignedBoundaries splits "a+2*b-c" into ["a", "+2*b", "-c"],
// keeping the leading sign attached to each subsequent term.
func splitOnSignedBoundaries(formula string) []string {
	var parts []string
	start := 0
	for i := 1; i < len(formula); i++ {
		if (formula[i] == '+' || formula[i] == '-') && formula[i-1] != '*' {
			parts = append(parts, formula[start:i])
			start = i
		}
	}
	parts = append(parts, formula[start:])
	return parts
}

// Value evaluates mt against v: a direct slot read for a primitive
// metric, or the coefficient dot-product plus constant for a derived
// one. A derived metric whose formula failed to parse reads as zero
// (§7's metric-fatal policy).
func Value(mt *MetricType, v *costval.CostVector) costval.SubCost {
	if mt == nil || v == nil {
		return 0
	}
	if mt.IsReal() {
		return v.Get(mt.realIndex)
	}
	if !mt.parsed {
		return 0
	}
	var total int64
	for i := 0; i < costval.MaxReal; i++ {
		if mt.coeff[i] == 0 {
			continue
		}
		total += mt.coeff[i] * int64(v.Get(i))
	}
	total += mt.constant
	if total < 0 {
		return 0
	}
	return costval.SubCost(total)
}

// Histogram returns, for a derived metric, the fractional contribution
// of each primitive slot to the metric's total value against v — the
// partitioned-color display data of §4.2. Real-index i maps to
// coeff[i]*v[i]/total. A primitive metric has a single slot with
// fraction 1.0. A zero total yields an empty histogram.
func Histogram(mt *MetricType, v *costval.CostVector) map[int]float64 {
	if mt == nil || v == nil {
		return nil
	}
	if mt.IsReal() {
		if v.Get(mt.realIndex) == 0 {
			return map[int]float64{}
		}
		return map[int]float64{mt.realIndex: 1.0}
	}
	if !mt.parsed {
		return map[int]float64{}
	}

	total := Value(mt, v)
	if total == 0 {
		return map[int]float64{}
	}

	// Emit one entry per catalogue primitive index (spec §4.2's "return
	// the per-primitive-index contribution fraction"), not just the
	// nonzero ones: scenario S1 expects index 0 (Ir, coefficient 0 in
	// "RW = Dr + Dw") present at 0.0, not absent.
	realCount := costval.MaxReal
	if mt.cat != nil {
		realCount = mt.cat.RealCount()
	}
	hist := make(map[int]float64, realCount)
	for i := 0; i < realCount; i++ {
		contribution := float64(mt.coeff[i]) * float64(v.Get(i))
		hist[i] = contribution / float64(total)
	}
	return hist
}
