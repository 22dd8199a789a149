// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package costval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type identityMapping int

func (m identityMapping) Len() int            { return int(m) }
func (m identityMapping) RealIndex(i int) int { return i }
func (m identityMapping) IsIdentity() bool    { return true }

type permMapping []int

func (m permMapping) Len() int            { return len(m) }
func (m permMapping) RealIndex(i int) int { return m[i] }
func (m permMapping) IsIdentity() bool    { return false }

func TestCostVectorGetSetGrowsUsed(t *testing.T) {
	var v CostVector
	assert.Equal(t, 0, v.Used())
	v.Set(2, 7)
	assert.Equal(t, 3, v.Used())
	assert.Equal(t, SubCost(0), v.Get(0))
	assert.Equal(t, SubCost(7), v.Get(2))
	assert.Equal(t, SubCost(0), v.Get(9), "beyond used-count reads zero")
}

func TestCostVectorAddVector(t *testing.T) {
	var a, b CostVector
	a.Set(0, 10)
	a.Set(1, 5)
	b.Set(0, 1)
	b.Set(2, 3)
	a.AddVector(&b)
	assert.Equal(t, SubCost(11), a.Get(0))
	assert.Equal(t, SubCost(5), a.Get(1))
	assert.Equal(t, SubCost(3), a.Get(2))
}

func TestCostVectorSetRowIdentity(t *testing.T) {
	var v CostVector
	require.NoError(t, v.SetRow(identityMapping(3), []string{"100", "20", "5"}))
	assert.Equal(t, SubCost(100), v.Get(0))
	assert.Equal(t, SubCost(20), v.Get(1))
	assert.Equal(t, SubCost(5), v.Get(2))
}

func TestCostVectorSetRowPartialRowLeavesZero(t *testing.T) {
	var v CostVector
	require.NoError(t, v.SetRow(identityMapping(3), []string{"100"}))
	assert.Equal(t, SubCost(100), v.Get(0))
	assert.Equal(t, SubCost(0), v.Get(1))
}

func TestCostVectorSetRowPermuted(t *testing.T) {
	var v CostVector
	// column 0 -> real slot 2, column 1 -> real slot 0
	require.NoError(t, v.SetRow(permMapping{2, 0}, []string{"9", "4"}))
	assert.Equal(t, SubCost(4), v.Get(0))
	assert.Equal(t, SubCost(9), v.Get(2))
}

func TestCostVectorAddRowAccumulates(t *testing.T) {
	var v CostVector
	require.NoError(t, v.SetRow(identityMapping(2), []string{"1", "2"}))
	require.NoError(t, v.AddRow(identityMapping(2), []string{"1", "2"}))
	assert.Equal(t, SubCost(2), v.Get(0))
	assert.Equal(t, SubCost(4), v.Get(1))
}

func TestCostVectorSetRowMalformed(t *testing.T) {
	var v CostVector
	err := v.SetRow(identityMapping(2), []string{"1", "abc"})
	assert.Error(t, err)
}

func TestCostVectorDiff(t *testing.T) {
	var a, b CostVector
	a.Set(0, 10)
	b.Set(0, 3)
	b.Set(1, 100) // exceeds a, clamps to zero, never negative
	d := a.Diff(&b)
	assert.Equal(t, SubCost(7), d.Get(0))
	assert.Equal(t, SubCost(0), d.Get(1))
}
