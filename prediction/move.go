// Package prediction implements client side movement prediction and server side reconciliation. The
// controlling client performs every move locally, saves it until the server acknowledges it and sends it
// in a compact container. The server re-runs each move authoritatively and answers with an
// acknowledgement or a correction, after which the client snaps to the server's state and replays the
// moves the server has not seen yet.
package prediction

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/resolver"
)

// AccelerationTolerance is the largest per axis difference between the accelerations of two moves that
// may still be combined.
const AccelerationTolerance = float32(0.01)

// Transform is the continuous state of a character that prediction compares and restores.
type Transform struct {
	Location mgl32.Vec3
	Velocity mgl32.Vec3
	Rotation game.Rotator

	Mode       config.MovementMode
	CustomMode uint8
}

// Move is a single client move: the input used and the state it ended in.
type Move struct {
	// Timestamp is the client time at the end of the move, in seconds.
	Timestamp float64
	DeltaTime float32

	Acceleration    mgl32.Vec3
	Jump            bool
	ControlRotation game.Rotator

	// State is the desired locomotion state the move was performed with.
	State resolver.DesiredState

	// StartRotation and StartBaseRelativeRotation are captured when the move starts.
	StartRotation             game.Rotator
	StartBaseRelativeRotation game.Rotator

	// Start is the transform the move was performed from and Checkpoint the rest of the state it started
	// from. Both are only known locally.
	Start      Transform
	Checkpoint any
	// End is the transform the move ended in.
	End Transform

	// NotCombinable prevents the move from being combined with others.
	NotCombinable bool
}

// Important reports whether losing the move would change the outcome in a way the server cannot infer,
// in which case it is resent until acknowledged.
func (m *Move) Important(prev *Move) bool {
	if m.Jump {
		return true
	}
	return prev != nil && (m.State != prev.State || m.End.Mode != prev.End.Mode)
}

// CanCombineWith reports whether next may be merged into m.
func (m *Move) CanCombineWith(next *Move, maxDeltaTime float32) bool {
	if m.NotCombinable || next.NotCombinable || m.Jump || next.Jump {
		return false
	}
	if m.State != next.State {
		return false
	}
	if m.DeltaTime+next.DeltaTime >= maxDeltaTime {
		return false
	}
	for i := 0; i < 3; i++ {
		if math32.Abs(m.Acceleration[i]-next.Acceleration[i]) > AccelerationTolerance {
			return false
		}
	}
	return true
}

// Combine returns the move resulting from merging next into m. It keeps the start of m and takes the
// input, end state and timestamp of next. The delta times are summed.
func (m *Move) Combine(next *Move) Move {
	combined := *next
	combined.DeltaTime = m.DeltaTime + next.DeltaTime
	combined.StartRotation = m.StartRotation
	combined.StartBaseRelativeRotation = m.StartBaseRelativeRotation
	combined.Start = m.Start
	combined.Checkpoint = m.Checkpoint
	return combined
}
