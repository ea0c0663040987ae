// Package smoothing reconstructs the view rotation of simulated proxies from replicated snapshots. Each
// snapshot carries the server time it was produced at; the proxy keeps its own client clock a bounded
// distance behind the server clock and interpolates from the rotation it showed when the snapshot
// arrived towards the snapshot's rotation.
package smoothing

import (
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/settings"
)

// serverDeltaFactor scales the interval between two snapshots into the minimum client delta.
const serverDeltaFactor = 1.25

// minDuration is the smallest duration that is still interpolated.
const minDuration = 1e-4

// State is the network smoothing state of a view.
type State struct {
	Enabled bool

	ServerTime float64
	ClientTime float64
	Duration   float64

	InitialRotation game.Rotator
	Rotation        game.Rotator
}

// View smooths the view rotation of a single simulated proxy.
type View struct {
	state  State
	target game.Rotator

	smoothLocationTime float64
	maxClientDelta     float64
}

// NewView returns a view smoother. listenServer selects the shorter smoothing time used when the owner
// of the proxy is a listen server.
func NewView(s settings.Settings, enabled, listenServer bool) *View {
	v := &View{
		state:              State{Enabled: enabled},
		smoothLocationTime: float64(s.Smoothing.SmoothLocationTime),
		maxClientDelta:     float64(s.Smoothing.MaxClientSmoothingDeltaTime),
	}
	if listenServer {
		v.smoothLocationTime = float64(s.Smoothing.ListenServerSmoothLocationTime)
	}
	return v
}

// OnSnapshotReceived records a replicated view rotation produced at serverTime. Snapshots that are not
// newer than the last one only update the target rotation.
func (v *View) OnSnapshotReceived(rotation game.Rotator, serverTime float64) {
	v.target = rotation
	if !v.state.Enabled {
		v.state.InitialRotation, v.state.Rotation = rotation, rotation
		return
	}
	if serverTime <= 0 || serverTime <= v.state.ServerTime {
		return
	}

	v.state.InitialRotation = v.state.Rotation

	serverDelta := serverTime - v.state.ServerTime
	v.state.ServerTime = serverTime

	minDelta := min(v.maxClientDelta, v.smoothLocationTime)
	minClientDelta := game.ClampFloat64(serverDelta*serverDeltaFactor, minDelta, v.maxClientDelta)

	v.state.ClientTime = game.ClampFloat64(v.state.ClientTime, v.state.ServerTime-minClientDelta, v.state.ServerTime)
	v.state.Duration = v.state.ServerTime - v.state.ClientTime
}

// Advance moves the client clock forward by deltaTime and returns the smoothed rotation. While
// interpolating, both endpoints first turn by baseDelta, the rotation the movement base made this tick.
func (v *View) Advance(deltaTime float32, baseDelta game.Rotator) game.Rotator {
	if !v.state.Enabled || v.state.ClientTime >= v.state.ServerTime || v.state.Duration <= minDuration {
		v.snap()
		return v.state.Rotation
	}

	v.state.InitialRotation = addPitchYaw(v.state.InitialRotation, baseDelta)
	v.state.Rotation = addPitchYaw(v.state.Rotation, baseDelta)

	v.state.ClientTime += float64(deltaTime)
	amount := game.ClampFloat64(1-(v.state.ServerTime-v.state.ClientTime)/v.state.Duration, 0, 1)
	if amount < 1 {
		v.state.Rotation = game.LerpRotator(v.state.InitialRotation, v.target, float32(amount))
	} else {
		v.state.ClientTime = v.state.ServerTime
		v.snap()
	}
	return v.state.Rotation
}

// Checkpoint is a copy of everything a View advances from.
type Checkpoint struct {
	State  State
	Target game.Rotator
}

// Checkpoint ...
func (v *View) Checkpoint() Checkpoint {
	return Checkpoint{State: v.state, Target: v.target}
}

// Restore returns the view to a checkpoint taken earlier.
func (v *View) Restore(cp Checkpoint) {
	v.state, v.target = cp.State, cp.Target
}

// State returns a copy of the smoothing state.
func (v *View) State() State {
	return v.state
}

// Target returns the latest replicated rotation.
func (v *View) Target() game.Rotator {
	return v.target
}

func (v *View) snap() {
	v.state.InitialRotation, v.state.Rotation = v.target, v.target
}

func addPitchYaw(r, delta game.Rotator) game.Rotator {
	return game.Rotator{
		Pitch: game.NormalizeAxis(r.Pitch + delta.Pitch),
		Yaw:   game.NormalizeAxis(r.Yaw + delta.Yaw),
		Roll:  r.Roll,
	}
}
