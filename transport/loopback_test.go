package transport

import (
	"testing"

	"github.com/oomph-ac/locomotion/prediction"
	"github.com/stretchr/testify/require"
)

func ack(ts float64) *Ack {
	return &Ack{Ack: prediction.Ack{Timestamp: ts}}
}

func TestLoopbackLatency(t *testing.T) {
	l, a, b := NewLoopback(LoopbackOptions{Latency: 2})

	require.NoError(t, a.Send(ack(1)))
	l.Advance()
	require.NoError(t, a.Send(ack(2)))
	require.NoError(t, b.Send(ack(3)))

	frames, err := b.Poll()
	require.NoError(t, err)
	require.Empty(t, frames)

	l.Advance()
	frames, err = b.Poll()
	require.NoError(t, err)
	require.Equal(t, []Frame{ack(1)}, frames)

	l.Advance()
	frames, err = b.Poll()
	require.NoError(t, err)
	require.Equal(t, []Frame{ack(2)}, frames)
	frames, err = a.Poll()
	require.NoError(t, err)
	require.Equal(t, []Frame{ack(3)}, frames)
	require.Equal(t, uint64(3), l.Tick())
}

func TestLoopbackWithoutLatency(t *testing.T) {
	_, a, b := NewLoopback(LoopbackOptions{})
	require.NoError(t, a.Send(ack(1)))
	require.NoError(t, a.Send(ack(2)))

	frames, err := b.Poll()
	require.NoError(t, err)
	require.Equal(t, []Frame{ack(1), ack(2)}, frames)
}

func TestLoopbackDrops(t *testing.T) {
	_, a, b := NewLoopback(LoopbackOptions{DropEvery: 2})
	for i := 1; i <= 4; i++ {
		require.NoError(t, a.Send(ack(float64(i))))
	}
	frames, err := b.Poll()
	require.NoError(t, err)
	require.Equal(t, []Frame{ack(1), ack(3)}, frames)
}

func TestLoopbackClose(t *testing.T) {
	_, a, b := NewLoopback(LoopbackOptions{})
	require.NoError(t, a.Send(ack(1)))
	require.NoError(t, b.Close())

	require.ErrorIs(t, a.Send(ack(2)), ErrClosed)
	_, err := b.Poll()
	require.ErrorIs(t, err, ErrClosed)
}
