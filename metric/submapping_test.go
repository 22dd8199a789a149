// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubMappingIdentity(t *testing.T) {
	cat := NewCatalogue()
	sm, err := NewSubMapping(cat, []string{"Ir", "Dr", "Dw"})
	require.NoError(t, err)
	assert.True(t, sm.IsIdentity())
	assert.Equal(t, 3, sm.Len())
	assert.Equal(t, 0, sm.RealIndex(0))
	assert.Equal(t, 2, sm.RealIndex(2))
}

func TestSubMappingPermuted(t *testing.T) {
	cat := NewCatalogue()
	_, err := cat.AddReal("Ir", "Instruction fetches")
	require.NoError(t, err)
	_, err = cat.AddReal("Dr", "Data reads")
	require.NoError(t, err)

	// Part file's columns arrive as Dr, Ir: not in catalogue order.
	sm, err := NewSubMapping(cat, []string{"Dr", "Ir"})
	require.NoError(t, err)
	assert.False(t, sm.IsIdentity())
	assert.Equal(t, 1, sm.RealIndex(0))
	assert.Equal(t, 0, sm.RealIndex(1))
}

func TestSubMappingInternsUnknownColumns(t *testing.T) {
	cat := NewCatalogue()
	sm, err := NewSubMapping(cat, []string{"Ir", "Bus"})
	require.NoError(t, err)
	assert.Equal(t, 2, cat.RealCount())
	mt, ok := cat.Type("Bus")
	require.True(t, ok)
	assert.Equal(t, 1, mt.RealIndex())
	assert.Equal(t, 1, sm.RealIndex(1))
}

func TestSubMappingUnusedSlots(t *testing.T) {
	cat := NewCatalogue()
	sm, err := NewSubMapping(cat, []string{"Ir"})
	require.NoError(t, err)

	_, err = cat.AddReal("Dr", "Data reads")
	require.NoError(t, err)
	_, err = cat.AddReal("Dw", "Data writes")
	require.NoError(t, err)

	assert.Equal(t, 1, sm.FirstUnused())
	assert.Equal(t, 2, sm.NextUnused(1))
	assert.Equal(t, -1, sm.NextUnused(2))
}

func TestSubMappingOutOfRange(t *testing.T) {
	cat := NewCatalogue()
	sm, err := NewSubMapping(cat, []string{"Ir"})
	require.NoError(t, err)
	assert.Equal(t, -1, sm.RealIndex(5))
	assert.Equal(t, -1, sm.RealIndex(-1))
}
