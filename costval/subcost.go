// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package costval implements the fixed-width, non-negative cost counters
// and cost vectors that every higher-level profiling entity aggregates.
package costval // import "github.com/kevleyski/traceprof/costval"

import (
	"strconv"
	"strings"
)

// SubCost is a single 64-bit, non-negative event counter. It never goes
// negative and additions saturate at the maximum uint64 rather than
// wrapping, matching the "no observed overflow expected in practice, but
// never wrap" policy described for the original trace format.
type SubCost uint64

// ParseSubCost parses an ASCII decimal run into a SubCost. Anything that
// is not a run of decimal digits is rejected.
func ParseSubCost(s string) (SubCost, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return SubCost(v), nil
}

// Add returns the saturating sum of c and other.
func (c SubCost) Add(other SubCost) SubCost {
	sum := c + other
	if sum < c {
		return ^SubCost(0)
	}
	return sum
}

// String formats the value with a space every three digits, the same
// grouping TraceCost::pretty used in the original tool.
func (c SubCost) String() string {
	digits := strconv.FormatUint(uint64(c), 10)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(' ')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
