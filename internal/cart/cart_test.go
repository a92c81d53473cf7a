package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddLineMergesSameProductAndSize(t *testing.T) {
	c := New()

	require.NoError(t, c.AddLine("p1", "9", 1))
	require.NoError(t, c.AddLine("p1", "9", 2))
	require.NoError(t, c.AddLine("p1", "10", 1))
	require.NoError(t, c.AddLine("p2", "9", 1))

	lines := c.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, int64(3), lines[0].Quantity)
	assert.Equal(t, "9", lines[0].Size)
}

func TestAddLineRejectsNonPositiveQuantity(t *testing.T) {
	c := New()

	assert.ErrorIs(t, c.AddLine("p1", "9", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddLine("p1", "9", -3), ErrInvalidQuantity)
	assert.True(t, c.IsEmpty())
}

func TestLinesReturnsIndependentSnapshot(t *testing.T) {
	c := New()
	require.NoError(t, c.AddLine("p1", "9", 1))

	snapshot := c.Lines()
	snapshot[0].Quantity = 99

	assert.Equal(t, int64(1), c.Lines()[0].Quantity)
}

func TestClear(t *testing.T) {
	c := New()
	require.NoError(t, c.AddLine("p1", "9", 1))
	require.False(t, c.IsEmpty())

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Lines())
}
