package prediction

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestHistoryEvictsOldestFrames(t *testing.T) {
	h := NewHistory(3)
	_, ok := h.Get(1)
	require.False(t, ok)

	for _, ts := range []float64{1, 2, 3, 4} {
		h.Add(Frame{Timestamp: ts, Transform: Transform{Location: mgl32.Vec3{float32(ts)}}})
	}
	_, ok = h.Get(1)
	require.False(t, ok, "the oldest frame was evicted")
	f, ok := h.Get(3)
	require.True(t, ok)
	require.Equal(t, float32(3), f.Transform.Location.X())
	_, ok = h.Get(3.5)
	require.False(t, ok)
}

func TestSavedMovesAcknowledge(t *testing.T) {
	s := NewSavedMoves(4)
	for _, ts := range []float64{1, 2, 3} {
		s.Add(&Move{Timestamp: ts})
	}
	require.Equal(t, 2, s.Acknowledge(2))
	m, ok := s.Oldest()
	require.True(t, ok)
	require.Equal(t, 3.0, m.Timestamp)

	require.Zero(t, s.Acknowledge(2.5))
	require.Equal(t, 1, s.Len())
}
