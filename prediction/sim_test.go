package prediction

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/condition"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/movesim"
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/tag"
)

// testSim is a minimal Simulation resolving against the default tree and moving with movesim.
type testSim struct {
	data     *config.Data
	sim      *movesim.Simulator
	state    movesim.MovementState
	rotation game.Rotator
	resolved resolver.State
}

func newTestSim() *testSim {
	d := config.Default()
	return &testSim{
		data:  d,
		sim:   movesim.NewSimulator(movesim.NewFlatWorld(0)),
		state: movesim.MovementState{Location: mgl32.Vec3{0, 0, movesim.DefaultCapsuleHalfHeight}, Mode: config.MovementModeWalking},
		resolved: resolver.State{
			LocomotionMode: tag.LocomotionModeOnGround,
			RotationMode:   d.DefaultRotationMode,
			Stance:         d.DefaultStance,
			Gait:           d.DefaultGait,
		},
	}
}

func (s *testSim) PerformMove(m *Move) error {
	m.StartRotation = s.rotation

	snap := condition.Snapshot{
		Speed:    game.Vec3Hz(s.state.Velocity).Len(),
		HasInput: m.Acceleration.LenSqr() > 0,
		ViewYaw:  m.ControlRotation.Yaw,
	}
	if snap.HasInput {
		snap.InputYaw = game.DirectionToAngleXY(m.Acceleration)
	}
	res, err := resolver.Resolve(s.data.Tree, s.data.LocomotionModeFor(s.state.Mode, s.state.CustomMode), m.State, snap)
	if err != nil {
		return err
	}
	s.resolved = res.State

	s.sim.Simulate(&s.state, movesim.Input{Acceleration: m.Acceleration, DeltaTime: m.DeltaTime, Jump: m.Jump, Gait: res.Gait})
	s.rotation.Yaw = m.ControlRotation.Yaw
	m.End = s.Transform()
	return nil
}

func (s *testSim) Transform() Transform {
	return Transform{
		Location:   s.state.Location,
		Velocity:   s.state.Velocity,
		Rotation:   s.rotation,
		Mode:       s.state.Mode,
		CustomMode: s.state.CustomMode,
	}
}

func (s *testSim) SetTransform(t Transform) {
	s.state.Location, s.state.Velocity = t.Location, t.Velocity
	s.state.SetMovementMode(t.Mode, t.CustomMode)
	s.rotation = t.Rotation
}

func (s *testSim) ResolvedState() resolver.State {
	return s.resolved
}

func (s *testSim) SetResolvedState(st resolver.State) {
	s.resolved = st
}

type testCheckpoint struct {
	state    movesim.MovementState
	rotation game.Rotator
	resolved resolver.State
}

func (s *testSim) Checkpoint() any {
	return testCheckpoint{state: s.state, rotation: s.rotation, resolved: s.resolved}
}

func (s *testSim) Restore(v any) {
	cp := v.(testCheckpoint)
	s.state, s.rotation, s.resolved = cp.state, cp.rotation, cp.resolved
}

func runningState() resolver.DesiredState {
	return resolver.DesiredState{RotationMode: tag.RotationModeViewDirection, Stance: tag.StanceStanding, Gait: tag.GaitRunning}
}
