// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package profdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevleyski/traceprof/costval"
	"github.com/kevleyski/traceprof/metric"
)

func newTestCatalogue(t *testing.T) *metric.Catalogue {
	cat := metric.NewCatalogue()
	_, err := cat.AddReal("Ir", "Instruction fetches")
	require.NoError(t, err)
	return cat
}

// S2: one Part, one Function with PartLines at 10 and 11 holding
// [50,0,0] and [30,2,1]. Function self cost must read [80,2,1];
// firstLineno=10, lastLineno=11.
func TestScenarioS2FunctionSelfCostFromLines(t *testing.T) {
	cat := metric.NewCatalogue()
	_, err := cat.AddReal("Ir", "")
	require.NoError(t, err)
	_, err = cat.AddReal("Dr", "")
	require.NoError(t, err)
	_, err = cat.AddReal("Dw", "")
	require.NoError(t, err)
	d := NewData(cat)
	sm, err := metric.NewSubMapping(cat, []string{"Ir", "Dr", "Dw"})
	require.NoError(t, err)

	ctx := context.Background()
	part, _ := d.AddPart(ctx, "", "test.part")
	file := d.File("main.c")
	fn, err := d.Function("f", file, nil)
	require.NoError(t, err)

	require.NoError(t, d.AddCost(part, sm, fn, CostRecord{Line: intPtr(10), Fields: []string{"50", "0", "0"}}))
	require.NoError(t, d.AddCost(part, sm, fn, CostRecord{Line: intPtr(11), Fields: []string{"30", "2", "1"}}))

	cost := fn.Cost(ctx)
	assert.Equal(t, costval.SubCost(80), cost.Get(0))
	assert.Equal(t, costval.SubCost(2), cost.Get(1))
	assert.Equal(t, costval.SubCost(1), cost.Get(2))

	first, ok := fn.FirstLineno()
	require.True(t, ok)
	assert.Equal(t, 10, first)
	last, ok := fn.LastLineno()
	require.True(t, ok)
	assert.Equal(t, 11, last)
}

// S3: two Parts both contributing to Function g's dynamic cost;
// activation/deactivation/reactivation round-trips the totals.
func TestScenarioS3ActivationTogglesDynamicCost(t *testing.T) {
	cat := newTestCatalogue(t)
	d := NewData(cat)
	sm, err := metric.NewSubMapping(cat, []string{"Ir"})
	require.NoError(t, err)
	ctx := context.Background()

	p1, _ := d.AddPart(ctx, "", "p1")
	p2, _ := d.AddPart(ctx, "", "p2")

	fn, err := d.Function("g", nil, nil)
	require.NoError(t, err)

	require.NoError(t, d.AddCost(p1, sm, fn, CostRecord{Fields: []string{"100"}}))
	require.NoError(t, d.AddCost(p2, sm, fn, CostRecord{Fields: []string{"200"}}))

	assert.Equal(t, costval.SubCost(300), fn.Cost(ctx).Get(0))

	changed := d.ActivateParts([]*Part{p2}, false)
	assert.True(t, changed)
	d.InvalidateDynamicCost()
	assert.Equal(t, costval.SubCost(100), fn.Cost(ctx).Get(0))

	changed = d.ActivateParts([]*Part{p2}, true)
	assert.True(t, changed)
	d.InvalidateDynamicCost()
	assert.Equal(t, costval.SubCost(300), fn.Cost(ctx).Get(0))
}

// S6: activating an already-active part is a no-op that returns false.
// InvalidateDynamicCost does not consult that result and marks every
// Function dirty anyway, so the read after it recomputes the same cost.
func TestScenarioS6IdempotentActivation(t *testing.T) {
	cat := newTestCatalogue(t)
	d := NewData(cat)
	sm, err := metric.NewSubMapping(cat, []string{"Ir"})
	require.NoError(t, err)
	ctx := context.Background()

	p1, _ := d.AddPart(ctx, "", "p1")
	fn, err := d.Function("f", nil, nil)
	require.NoError(t, err)
	require.NoError(t, d.AddCost(p1, sm, fn, CostRecord{Fields: []string{"10"}}))
	fn.Cost(ctx) // force clean

	changed := d.ActivateParts([]*Part{p1}, true)
	assert.False(t, changed, "p1 was already active")

	d.InvalidateDynamicCost()
	assert.Equal(t, costval.SubCost(10), fn.Cost(ctx).Get(0))
}

func TestPartSetActiveIdempotent(t *testing.T) {
	p := newPart("", "x")
	assert.True(t, p.Active)
	assert.False(t, p.SetActive(true), "already active")
	assert.True(t, p.SetActive(false))
	assert.False(t, p.SetActive(false), "already inactive")
}

// S5: "kio::Slave::send(int)" interns into Class "kio::Slave".
func TestScenarioS5ClassFromQualifiedFunctionName(t *testing.T) {
	assert.Equal(t, "kio::Slave", classOfFunction("kio::Slave::send(int)"))
	assert.Equal(t, "", classOfFunction("bare_function(int)"))
	assert.Equal(t, "a::b::c", classOfFunction("a::b::c::d(int, char*)"))
}

func TestInternIdentity(t *testing.T) {
	cat := newTestCatalogue(t)
	d := NewData(cat)
	file := d.File("a.c")
	obj := d.Object("a.out")

	f1, err := d.Function("f", file, obj)
	require.NoError(t, err)
	f2, err := d.Function("f", file, obj)
	require.NoError(t, err)
	assert.Same(t, f1, f2)
}

func TestIdentityConflictOnMismatchedContainers(t *testing.T) {
	cat := newTestCatalogue(t)
	d := NewData(cat)
	file1 := d.File("a.c")
	file2 := d.File("b.c")
	obj := d.Object("a.out")

	_, err := d.Function("f", file1, obj)
	require.NoError(t, err)
	_, err = d.Function("f", file2, obj)
	assert.ErrorIs(t, err, ErrIdentityConflict)
}

// Compressed-id round trip. Binding (7) foo.so then referring (7)
// yields the same entity as Object("foo.so").
func TestCompressedIDRoundTrip(t *testing.T) {
	cat := newTestCatalogue(t)
	d := NewData(cat)

	obj, err := d.CompressedObject(7, "foo.so")
	require.NoError(t, err)

	again, err := d.CompressedObject(7, "")
	require.NoError(t, err)
	assert.Same(t, obj, again)

	direct := d.Object("foo.so")
	assert.Same(t, obj, direct)
}

func TestCompressedIDInconsistentRebind(t *testing.T) {
	cat := newTestCatalogue(t)
	d := NewData(cat)

	_, err := d.CompressedObject(7, "foo.so")
	require.NoError(t, err)

	_, err = d.CompressedObject(7, "bar.so")
	assert.ErrorIs(t, err, ErrInconsistentCompressedID)
}

func TestCompressedIDSameNameRebindTolerated(t *testing.T) {
	// Open question (b): rebinding to the same name is legal.
	cat := newTestCatalogue(t)
	d := NewData(cat)

	_, err := d.CompressedObject(7, "foo.so")
	require.NoError(t, err)
	_, err = d.CompressedObject(7, "foo.so")
	assert.NoError(t, err)
}

func intPtr(i int) *int { return &i }
func u64Ptr(u uint64) *uint64 { return &u }
