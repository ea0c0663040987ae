package internal

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing[int](3)
	for i := 1; i <= 3; i++ {
		_, ok := r.Push(i)
		require.False(t, ok)
	}
	require.Equal(t, []int{1, 2, 3}, slices.Collect(r.All()))

	evicted, ok := r.Push(4)
	require.True(t, ok)
	require.Equal(t, 1, evicted)
	require.Equal(t, []int{2, 3, 4}, slices.Collect(r.All()))
	require.Equal(t, 3, r.Len())
	require.Equal(t, 3, r.Cap())

	back, ok := r.Back()
	require.True(t, ok)
	require.Equal(t, 4, back)
}

func TestRingPop(t *testing.T) {
	r := NewRing[string](2)
	_, ok := r.PopFront()
	require.False(t, ok)
	_, ok = r.Back()
	require.False(t, ok)

	r.Push("a")
	r.Push("b")
	front, ok := r.Front()
	require.True(t, ok)
	require.Equal(t, "a", front)

	v, ok := r.PopFront()
	require.True(t, ok)
	require.Equal(t, "a", v)
	r.Push("c")
	require.Equal(t, []string{"b", "c"}, slices.Collect(r.All()))

	r.Clear()
	require.Zero(t, r.Len())
	_, ok = r.Front()
	require.False(t, ok)
}

func TestRingMinimumSize(t *testing.T) {
	r := NewRing[int](0)
	require.Equal(t, 1, r.Cap())
	r.Push(1)
	evicted, ok := r.Push(2)
	require.True(t, ok)
	require.Equal(t, 1, evicted)
}
