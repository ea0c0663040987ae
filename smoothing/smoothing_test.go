package smoothing

import (
	"math/rand"
	"testing"

	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/stretchr/testify/require"
)

func TestDisabledSnapsToSnapshots(t *testing.T) {
	v := NewView(settings.DefaultSettings(), false, false)
	v.OnSnapshotReceived(game.Rotator{Yaw: 90}, 10)

	require.Equal(t, game.Rotator{Yaw: 90}, v.State().Rotation)
	require.Equal(t, game.Rotator{Yaw: 90}, v.State().InitialRotation)
	require.Equal(t, game.Rotator{Yaw: 90}, v.Advance(0.016, game.Rotator{}))
	require.Zero(t, v.State().ServerTime)
}

func TestFirstSnapshotUsesMaxClientDelta(t *testing.T) {
	v := NewView(settings.DefaultSettings(), true, false)
	v.OnSnapshotReceived(game.Rotator{Yaw: 90}, 10)

	s := v.State()
	require.Equal(t, 10.0, s.ServerTime)
	require.InDelta(t, 9.5, s.ClientTime, 1e-9)
	require.InDelta(t, 0.5, s.Duration, 1e-9)
	require.Equal(t, game.Rotator{}, s.InitialRotation)

	rot := v.Advance(0.25, game.Rotator{})
	require.InDelta(t, 45, rot.Yaw, 1e-3)

	rot = v.Advance(0.3, game.Rotator{})
	require.Equal(t, float32(90), rot.Yaw)
	require.Equal(t, 10.0, v.State().ClientTime)
}

func TestSecondSnapshotRebasesInitialRotation(t *testing.T) {
	v := NewView(settings.DefaultSettings(), true, false)
	v.OnSnapshotReceived(game.Rotator{Yaw: 90}, 10)
	current := v.Advance(0.1, game.Rotator{})
	firstDuration := v.State().Duration

	v.OnSnapshotReceived(game.Rotator{Yaw: 100}, 10.2)
	s := v.State()
	require.Equal(t, current, s.InitialRotation)
	require.Less(t, s.Duration, firstDuration)
	require.InDelta(t, 0.25, s.Duration, 1e-9)
	require.InDelta(t, 9.95, s.ClientTime, 1e-9)
}

func TestStaleSnapshotOnlyUpdatesTarget(t *testing.T) {
	v := NewView(settings.DefaultSettings(), true, false)
	v.OnSnapshotReceived(game.Rotator{Yaw: 90}, 10)
	before := v.State()

	v.OnSnapshotReceived(game.Rotator{Yaw: -30}, 9)
	require.Equal(t, before, v.State())
	require.Equal(t, game.Rotator{Yaw: -30}, v.Target())

	v.OnSnapshotReceived(game.Rotator{Yaw: 10}, 0)
	require.Equal(t, before, v.State())
}

func TestListenServerUsesShorterSmoothTime(t *testing.T) {
	// A client far behind the server is pulled up to the minimum delta, which is the smoothing time.
	v := NewView(settings.DefaultSettings(), true, true)
	v.OnSnapshotReceived(game.Rotator{}, 10)
	v.OnSnapshotReceived(game.Rotator{Yaw: 10}, 10.01)
	require.InDelta(t, 0.04, v.State().Duration, 1e-6)

	d := NewView(settings.DefaultSettings(), true, false)
	d.OnSnapshotReceived(game.Rotator{}, 10)
	d.OnSnapshotReceived(game.Rotator{Yaw: 10}, 10.01)
	require.InDelta(t, 0.1, d.State().Duration, 1e-6)
}

func TestBaseDeltaTurnsInterpolationEndpoints(t *testing.T) {
	v := NewView(settings.DefaultSettings(), true, false)
	v.OnSnapshotReceived(game.Rotator{Yaw: 90}, 10)

	// Interpolating from 0 towards 90 over 0.5s: the start turns with the base, the replicated target
	// does not.
	rot := v.Advance(0.1, game.Rotator{Yaw: 20})
	require.Equal(t, float32(20), v.State().InitialRotation.Yaw)
	require.Equal(t, float32(90), v.Target().Yaw)
	require.InDelta(t, 34, rot.Yaw, 1e-3)
}

func TestBaseDeltaIgnoredWhenSnapping(t *testing.T) {
	v := NewView(settings.DefaultSettings(), false, false)
	v.OnSnapshotReceived(game.Rotator{Yaw: 90}, 10)
	require.Equal(t, game.Rotator{Yaw: 90}, v.Advance(0.1, game.Rotator{Yaw: 20}))

	e := NewView(settings.DefaultSettings(), true, false)
	e.OnSnapshotReceived(game.Rotator{Yaw: 90}, 10)
	e.Advance(1, game.Rotator{})
	require.Equal(t, game.Rotator{Yaw: 90}, e.Advance(0.1, game.Rotator{Yaw: 20}))
}

func TestCheckpointRestore(t *testing.T) {
	v := NewView(settings.DefaultSettings(), true, false)
	v.OnSnapshotReceived(game.Rotator{Yaw: 90}, 10)
	cp := v.Checkpoint()
	first := v.Advance(0.1, game.Rotator{})

	v.OnSnapshotReceived(game.Rotator{Yaw: -45}, 10.3)
	v.Advance(0.2, game.Rotator{})

	v.Restore(cp)
	require.Equal(t, first, v.Advance(0.1, game.Rotator{}))
	require.Equal(t, game.Rotator{Yaw: 90}, v.Target())
}

func TestClientTimeIsMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	v := NewView(settings.DefaultSettings(), true, false)

	serverTime := 1.0
	lastClient := 0.0
	for i := 0; i < 2000; i++ {
		if r.Intn(3) == 0 {
			// Snapshots arrive with jitter, sometimes out of order.
			serverTime += r.Float64() * 0.1
			v.OnSnapshotReceived(game.Rotator{Yaw: r.Float32()*360 - 180}, serverTime-r.Float64()*0.05)
		}
		v.Advance(r.Float32()*0.05, game.Rotator{})

		s := v.State()
		require.GreaterOrEqual(t, s.ClientTime, lastClient)
		require.LessOrEqual(t, s.ClientTime, s.ServerTime)
		lastClient = s.ClientTime
	}
}
