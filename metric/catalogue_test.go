// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRealIsIdempotent(t *testing.T) {
	cat := NewCatalogue()
	first, err := cat.AddReal("Ir", "Instruction fetches")
	require.NoError(t, err)
	second, err := cat.AddReal("Ir", "something else")
	require.NoError(t, err)
	assert.Same(t, first, second, "re-adding an existing short name returns the original type")
	assert.Equal(t, 1, cat.RealCount())
}

func TestAddRealCapacity(t *testing.T) {
	cat := NewCatalogue()
	for i := 0; i < 10; i++ {
		_, err := cat.AddReal(string(rune('a'+i)), "x")
		require.NoError(t, err)
	}
	_, err := cat.AddReal("overflow", "x")
	assert.Error(t, err)
}

func TestTypeLooksUpBothScopes(t *testing.T) {
	cat := NewCatalogue()
	_, err := cat.AddReal("Ir", "Instruction fetches")
	require.NoError(t, err)
	_, err = cat.AddDerived("Ir2", "twice", "2*Ir")
	require.NoError(t, err)

	mt, ok := cat.Type("Ir")
	require.True(t, ok)
	assert.True(t, mt.IsReal())

	mt, ok = cat.Type("Ir2")
	require.True(t, ok)
	assert.False(t, mt.IsReal())

	_, ok = cat.Type("nope")
	assert.False(t, ok)
}

func TestUnusedReal(t *testing.T) {
	cat := NewCatalogue()
	_, err := cat.AddReal("Ir", "Instruction fetches")
	require.NoError(t, err)

	var unused []int
	cat.UnusedReal(func(i int) { unused = append(unused, i) })
	require.NotEmpty(t, unused)
	assert.Equal(t, 1, unused[0], "index 0 is already taken by Ir")
}
