package rotation

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-3

func viewInput(viewYaw float32) Input {
	return Input{
		DeltaTime:           0.1,
		RotationMode:        tag.RotationModeViewDirection,
		ViewYaw:             viewYaw,
		RotationInterpSpeed: 8,
	}
}

func TestStationaryViewDirectionHoldsInsideLimit(t *testing.T) {
	var s State
	s.UpdateOnGround(viewInput(50))

	require.Zero(t, s.Rotation.Yaw)
	require.Zero(t, s.TargetYaw)
	require.Zero(t, s.SmoothTargetYaw)
	require.InDelta(t, 50, s.ViewRelativeTargetYaw, tolerance)
}

func TestStationaryViewDirectionFollowsBeyondLimit(t *testing.T) {
	var s State
	s.UpdateOnGround(viewInput(100))

	require.InDelta(t, 30, s.TargetYaw, tolerance)
	require.InDelta(t, 30, s.SmoothTargetYaw, tolerance)
	require.InDelta(t, 70, s.ViewRelativeTargetYaw, tolerance)
	require.InDelta(t, 30*game.ExponentialDecay(0.1, 20), s.Rotation.Yaw, tolerance)

	s = State{}
	s.UpdateOnGround(viewInput(-100))
	require.InDelta(t, -30, s.TargetYaw, tolerance)
}

func TestStationaryViewDirectionNearAntipodeTurnsCounterClockwise(t *testing.T) {
	var s State
	s.UpdateOnGround(viewInput(178))

	// 178 is within the counter-clockwise threshold, so it is treated as -182 and the character keeps
	// 70 degrees clockwise of the view.
	require.InDelta(t, -112, s.TargetYaw, tolerance)
	require.Less(t, s.Rotation.Yaw, float32(0))
}

func TestStationaryViewDirectionWithInput(t *testing.T) {
	var s State
	in := viewInput(40)
	in.HasInput = true
	in.DeltaTime = 0.01
	s.UpdateOnGround(in)

	// The smooth target moves at 1000 degrees per second.
	require.InDelta(t, 40, s.TargetYaw, tolerance)
	require.InDelta(t, 10, s.SmoothTargetYaw, tolerance)
	require.InDelta(t, 10*game.ExponentialDecay(0.01, 20), s.Rotation.Yaw, tolerance)
}

func TestMovingViewDirectionConverges(t *testing.T) {
	var s State
	in := viewInput(120)
	in.Moving, in.HasInput = true, true
	in.DeltaTime = 1.0 / 60
	for i := 0; i < 240; i++ {
		s.UpdateOnGround(in)
	}
	require.InDelta(t, 120, s.Rotation.Yaw, 0.01)
	require.InDelta(t, 0, s.ViewRelativeTargetYaw, tolerance)
}

func TestMovingVelocityDirection(t *testing.T) {
	var s State
	in := Input{
		DeltaTime:           0.01,
		RotationMode:        tag.RotationModeVelocityDirection,
		Moving:              true,
		HasInput:            true,
		ViewYaw:             0,
		VelocityYaw:         90,
		DesiredVelocityYaw:  -90,
		RotationInterpSpeed: 8,
	}
	s.UpdateOnGround(in)
	require.InDelta(t, 90, s.TargetYaw, tolerance)
	require.InDelta(t, 8, s.SmoothTargetYaw, tolerance)
	require.InDelta(t, 8*game.ExponentialDecay(0.01, 8), s.Rotation.Yaw, tolerance)

	s = State{}
	in.RotateTowardsDesiredVelocity = true
	s.UpdateOnGround(in)
	require.InDelta(t, -90, s.TargetYaw, tolerance)
}

func TestVelocityDirectionBlockedWithoutInput(t *testing.T) {
	s := State{LastInputDirectionBlocked: true}
	in := Input{
		DeltaTime:    0.1,
		RotationMode: tag.RotationModeVelocityDirection,
		Moving:       true,
		ViewYaw:      45,
		VelocityYaw:  90,
	}
	s.UpdateOnGround(in)
	require.True(t, s.LastInputDirectionBlocked)
	require.InDelta(t, 45, s.TargetYaw, tolerance)

	in.HasInput = true
	s.UpdateOnGround(in)
	require.False(t, s.LastInputDirectionBlocked)
	require.InDelta(t, 90, s.TargetYaw, tolerance)
}

func TestInterpSpeed(t *testing.T) {
	require.InDelta(t, 8, InterpSpeed(8, 0), tolerance)
	require.InDelta(t, 16, InterpSpeed(8, 150), tolerance)
	require.InDelta(t, 24, InterpSpeed(8, 300), tolerance)
	require.InDelta(t, 24, InterpSpeed(8, 900), tolerance)
	require.InDelta(t, 8, InterpSpeed(8, -50), tolerance)
}

func TestRotationYawSpeedWhileStanding(t *testing.T) {
	var s State
	in := Input{
		DeltaTime:        0.1,
		RotationMode:     tag.RotationModeVelocityDirection,
		RotationYawSpeed: 90,
	}
	s.UpdateOnGround(in)

	require.InDelta(t, 9, s.Rotation.Yaw, tolerance)
	require.InDelta(t, 9, s.TargetYaw, tolerance)
	require.InDelta(t, 9, s.SmoothTargetYaw, tolerance)
}

func TestInheritBaseRotation(t *testing.T) {
	in := Input{
		DeltaTime:               0.1,
		RotationMode:            tag.RotationModeVelocityDirection,
		InheritBaseRotation:     true,
		BaseHasRelativeLocation: true,
		BaseDeltaYaw:            10,
	}

	var s State
	s.UpdateOnGround(in)
	require.InDelta(t, 10, s.TargetYaw, tolerance)
	require.InDelta(t, 10*game.ExponentialDecay(0.1, 12), s.Rotation.Yaw, tolerance)

	s = State{}
	in.BaseHasRelativeRotation = true
	s.UpdateOnGround(in)
	require.Zero(t, s.TargetYaw)
	require.Zero(t, s.Rotation.Yaw)
}

func TestActionSuspendsRotation(t *testing.T) {
	s := State{Rotation: game.Rotator{Yaw: 15}, TargetYaw: 15, SmoothTargetYaw: 15}
	before := s

	in := viewInput(120)
	in.Action = tag.Tag("Status.LocomotionAction.Mantling")
	s.Update(config.SpaceOnGround, in)
	s.Update(config.SpaceInAir, in)
	s.Update(config.SpaceInWater, in)
	require.Equal(t, before, s)
}

func TestInAirRotation(t *testing.T) {
	var s State
	in := Input{DeltaTime: 0.1, RotationMode: tag.RotationModeVelocityDirection, ViewYaw: 30, VelocityYaw: 60}

	s.Update(config.SpaceInAir, in)
	require.Zero(t, s.Rotation.Yaw)
	require.Zero(t, s.TargetYaw)
	require.InDelta(t, 30, s.ViewRelativeTargetYaw, tolerance)

	in.Moving = true
	s.Update(config.SpaceInAir, in)
	require.InDelta(t, 60, s.TargetYaw, tolerance)
	require.InDelta(t, 60*game.ExponentialDecay(0.1, 5), s.Rotation.Yaw, tolerance)

	s = State{}
	in.RotationMode = tag.RotationModeAiming
	s.Update(config.SpaceInWater, in)
	require.InDelta(t, 30, s.TargetYaw, tolerance)
	require.InDelta(t, 30*game.ExponentialDecay(0.1, 15), s.Rotation.Yaw, tolerance)
}

func TestNoSpaceDoesNothing(t *testing.T) {
	var s State
	s.Update(config.SpaceNone, viewInput(120))
	require.Equal(t, State{}, s)
}

func TestApplyBaseDelta(t *testing.T) {
	s := State{
		Rotation:              game.Rotator{Pitch: 5, Yaw: 170},
		TargetYaw:             170,
		SmoothTargetYaw:       165,
		ViewRelativeTargetYaw: -20,
	}
	s.ApplyBaseDelta(game.Rotator{Pitch: 1, Yaw: 20})

	require.InDelta(t, -170, s.Rotation.Yaw, tolerance)
	require.InDelta(t, 6, s.Rotation.Pitch, tolerance)
	require.InDelta(t, -170, s.TargetYaw, tolerance)
	require.InDelta(t, -175, s.SmoothTargetYaw, tolerance)
	require.InDelta(t, 0, s.ViewRelativeTargetYaw, tolerance)
}

func TestUpdateInstantAndReset(t *testing.T) {
	var s State
	s.UpdateInstant(-45, 45)
	require.Equal(t, float32(-45), s.Rotation.Yaw)
	require.Equal(t, float32(-45), s.SmoothTargetYaw)
	require.InDelta(t, 90, s.ViewRelativeTargetYaw, tolerance)

	s.Reset(game.Rotator{Yaw: 540}, 180)
	require.InDelta(t, 180, s.Rotation.Yaw, tolerance)
	require.InDelta(t, 0, math32.Abs(game.NormalizeAxis(s.ViewRelativeTargetYaw)), tolerance)
}
