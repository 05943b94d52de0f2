package blockCursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_InitializeSeedsHeightOnce(t *testing.T) {
	c := NewCursor()
	assert.False(t, c.Initialized())

	c.Initialize(100)
	assert.True(t, c.Initialized())
	assert.Equal(t, uint64(100), c.LastProcessedBlock())

	// Second initialize is a no-op.
	c.Initialize(50)
	assert.Equal(t, uint64(100), c.LastProcessedBlock())
}

func TestCursor_NextRange(t *testing.T) {
	c := NewCursor()

	_, _, ok := c.NextRange(10)
	assert.False(t, ok, "uninitialized cursor has no range")

	c.Initialize(100)

	_, _, ok = c.NextRange(100)
	assert.False(t, ok, "no new blocks")

	_, _, ok = c.NextRange(99)
	assert.False(t, ok, "chain behind cursor")

	from, to, ok := c.NextRange(105)
	require.True(t, ok)
	assert.Equal(t, uint64(101), from)
	assert.Equal(t, uint64(105), to)
}

func TestCursor_AdvanceIsContiguousAndMonotonic(t *testing.T) {
	c := NewCursor()
	c.Initialize(100)

	require.NoError(t, c.Advance(100, 105))
	assert.Equal(t, uint64(105), c.LastProcessedBlock())

	// Gap: range does not start at the cursor.
	assert.ErrorIs(t, c.Advance(106, 110), ErrRangeMismatch)

	// Overlap / rollback.
	assert.ErrorIs(t, c.Advance(100, 104), ErrRangeMismatch)
	assert.ErrorIs(t, c.Advance(105, 105), ErrRangeMismatch)

	require.NoError(t, c.Advance(105, 110))
	assert.Equal(t, uint64(110), c.LastProcessedBlock())
}

func TestCursor_AdvanceRequiresInitialize(t *testing.T) {
	c := NewCursor()
	assert.ErrorIs(t, c.Advance(0, 10), ErrNotInitialized)
}

// Every block between initialization height and the final cursor position
// must be covered by exactly one successful advancement.
func TestCursor_NoGapsNoOverlapAcrossCycles(t *testing.T) {
	c := NewCursor()
	c.Initialize(0)

	heights := []uint64{3, 3, 7, 7, 12}
	covered := make(map[uint64]int)

	for _, latest := range heights {
		from, to, ok := c.NextRange(latest)
		if !ok {
			continue
		}
		for b := from; b <= to; b++ {
			covered[b]++
		}
		require.NoError(t, c.Advance(from-1, to))
	}

	assert.Equal(t, uint64(12), c.LastProcessedBlock())
	for b := uint64(1); b <= 12; b++ {
		assert.Equal(t, 1, covered[b], "block %d coverage", b)
	}
}
