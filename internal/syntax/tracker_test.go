package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerBalance(t *testing.T) {
	tr := NewTracker(0)
	assert.Equal(t, DefaultNestLimit, tr.Limit())
	assert.True(t, tr.IsBalancedAtEnd())

	require.NoError(t, tr.Push(GroupFrame{Kind: GroupCapturing, Start: 0, Ordinal: 1}))
	require.NoError(t, tr.Push(GroupFrame{Kind: GroupNonCapturing, Start: 3}))
	assert.Equal(t, 2, tr.Depth())
	assert.False(t, tr.IsBalancedAtEnd())

	top, ok := tr.Peek()
	require.True(t, ok)
	assert.Equal(t, 3, top.Start)

	f, err := tr.Pop()
	require.NoError(t, err)
	assert.Equal(t, GroupNonCapturing, f.Kind)
	f, err = tr.Pop()
	require.NoError(t, err)
	assert.Equal(t, 1, f.Ordinal)

	_, err = tr.Pop()
	assert.ErrorIs(t, err, ErrEmptyStack)
	_, ok = tr.Peek()
	assert.False(t, ok)
	assert.True(t, tr.IsBalancedAtEnd())
}

func TestTrackerLimit(t *testing.T) {
	tr := NewTracker(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, tr.Push(GroupFrame{Start: i}))
	}
	err := tr.Push(GroupFrame{Start: 3})
	assert.ErrorIs(t, err, ErrRecursionLimitExceeded)
	assert.Equal(t, 3, tr.Depth())

	top, _ := tr.Peek()
	assert.Equal(t, 2, top.Start)
}
