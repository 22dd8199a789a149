// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevleyski/traceprof/costval"
)

// buildS1 builds the catalogue/vector pair from scenario S1: {Ir, Dr, Dw}
// ids 0,1,2; derived RW = Dr + Dw; vector [100, 20, 5].
func buildS1(t *testing.T) (*Catalogue, *MetricType, *costval.CostVector) {
	cat := NewCatalogue()
	_, err := cat.AddReal("Ir", "Instruction fetches")
	require.NoError(t, err)
	_, err = cat.AddReal("Dr", "Data reads")
	require.NoError(t, err)
	_, err = cat.AddReal("Dw", "Data writes")
	require.NoError(t, err)

	rw, err := cat.AddDerived("RW", "Read+Write", "Dr + Dw")
	require.NoError(t, err)

	var v costval.CostVector
	v.Set(0, 100)
	v.Set(1, 20)
	v.Set(2, 5)
	return cat, rw, &v
}

func TestDerivedMetricValue(t *testing.T) {
	_, rw, v := buildS1(t)
	assert.Equal(t, costval.SubCost(25), Value(rw, v))
}

func TestDerivedMetricHistogram(t *testing.T) {
	_, rw, v := buildS1(t)
	hist := Histogram(rw, v)
	require.Len(t, hist, 3)
	assert.InDelta(t, 0.0, hist[0], 1e-9)
	assert.InDelta(t, 0.8, hist[1], 1e-9)
	assert.InDelta(t, 0.2, hist[2], 1e-9)
	_, hasIr := hist[0]
	assert.True(t, hasIr, "S1 expects Ir present at 0.0, not absent")
}

func TestRealMetricValueAndHistogram(t *testing.T) {
	cat := NewCatalogue()
	ir, err := cat.AddReal("Ir", "Instruction fetches")
	require.NoError(t, err)

	var v costval.CostVector
	v.Set(0, 42)

	assert.Equal(t, costval.SubCost(42), Value(ir, &v))
	hist := Histogram(ir, &v)
	assert.Equal(t, map[int]float64{0: 1.0}, hist)

	var zero costval.CostVector
	assert.Equal(t, map[int]float64{}, Histogram(ir, &zero))
	_ = cat
}

func TestCoefficientFormula(t *testing.T) {
	cat := NewCatalogue()
	_, err := cat.AddReal("Ir", "Instruction fetches")
	require.NoError(t, err)
	double, err := cat.AddDerived("2Ir", "double", "2*Ir")
	require.NoError(t, err)

	var v costval.CostVector
	v.Set(0, 7)
	assert.Equal(t, costval.SubCost(14), Value(double, &v))
}

func TestFormulaReferencingAnotherDerived(t *testing.T) {
	cat := NewCatalogue()
	_, err := cat.AddReal("Dr", "Data reads")
	require.NoError(t, err)
	_, err = cat.AddReal("Dw", "Data writes")
	require.NoError(t, err)
	_, err = cat.AddDerived("RW", "Read+Write", "Dr + Dw")
	require.NoError(t, err)
	doubled, err := cat.AddDerived("RW2", "double RW", "2*RW")
	require.NoError(t, err)

	var v costval.CostVector
	v.Set(0, 20)
	v.Set(1, 5)
	assert.Equal(t, costval.SubCost(50), Value(doubled, &v))
}

func TestFormulaUnknownMetric(t *testing.T) {
	cat := NewCatalogue()
	_, err := cat.AddReal("Ir", "Instruction fetches")
	require.NoError(t, err)
	_, err = cat.AddDerived("Bad", "bad formula", "Ir + Ghost")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestFormulaCycleDetected(t *testing.T) {
	cat := NewCatalogue()
	_, err := cat.AddDerived("A", "a", "A")
	assert.ErrorIs(t, err, ErrCyclicFormula)
}

func TestFormulaMutualCycleDetected(t *testing.T) {
	cat := NewCatalogue()
	_, err := cat.AddDerived("A", "a", "B")
	assert.ErrorIs(t, err, ErrUnknownMetric, "B isn't defined yet when A is parsed")

	_, err = cat.AddDerived("B", "b", "A")
	assert.ErrorIs(t, err, ErrCyclicFormula, "A's unresolved reference to B now cycles back")
}

func TestFormulaSubtraction(t *testing.T) {
	cat := NewCatalogue()
	_, err := cat.AddReal("Dr", "Data reads")
	require.NoError(t, err)
	_, err = cat.AddReal("Dw", "Data writes")
	require.NoError(t, err)
	diff, err := cat.AddDerived("Diff", "reads minus writes", "Dr - Dw")
	require.NoError(t, err)

	var v costval.CostVector
	v.Set(0, 20)
	v.Set(1, 5)
	assert.Equal(t, costval.SubCost(15), Value(diff, &v))
}
