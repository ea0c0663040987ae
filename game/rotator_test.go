package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRotatorQuatRoundTrip(t *testing.T) {
	for _, r := range []Rotator{
		{},
		{Yaw: 90},
		{Pitch: 30, Yaw: -120, Roll: 10},
		{Pitch: -45, Yaw: 179, Roll: -20},
	} {
		back := RotatorFromQuat(r.Quat())
		require.True(t, back.Equals(r, 1e-2), "round trip of %+v gave %+v", r, back)
	}
}

func TestDeltaRotation(t *testing.T) {
	prev := Rotator{Yaw: 10}
	current := Rotator{Yaw: 40}

	delta := DeltaRotation(current, prev)
	require.InDelta(t, 30, delta.Yaw, 1e-2)
	require.InDelta(t, 0, delta.Pitch, 1e-2)
	require.InDelta(t, 0, delta.Roll, 1e-2)

	require.True(t, DeltaRotation(current, current).IsNearlyZero(1e-2))
}

func TestLerpRotator(t *testing.T) {
	r := LerpRotator(Rotator{Pitch: 0, Yaw: 170}, Rotator{Pitch: 20, Yaw: -170}, 0.5)
	require.InDelta(t, 10, r.Pitch, 1e-3)
	require.InDelta(t, 180, r.Yaw, 1e-3)
}
