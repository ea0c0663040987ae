// Package rotation advances the facing of a character once per tick. The facing follows the view, the
// velocity or an externally driven yaw speed depending on the active rotation mode and the medium the
// character moves through.
package rotation

import (
	"github.com/chewxy/math32"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/tag"
)

// State is the rotation state owned by a single character.
type State struct {
	// Rotation is the current facing of the character. Only the yaw is driven by the integrator, the
	// pitch only changes through movement base rotation.
	Rotation game.Rotator
	// TargetYaw is the yaw the character is rotating towards.
	TargetYaw float32
	// SmoothTargetYaw follows TargetYaw at a constant rate and is used by the extra smooth primitive.
	SmoothTargetYaw float32
	// ViewRelativeTargetYaw is the view yaw relative to TargetYaw.
	ViewRelativeTargetYaw float32
	// LastInputDirectionBlocked stops velocity direction rotation from turning towards the last input
	// direction once the input has been released.
	LastInputDirectionBlocked bool
}

// Input holds everything the integrator reads during a tick.
type Input struct {
	DeltaTime float32

	RotationMode tag.Tag
	// Action is the active locomotion action. Rotation is not updated while it is valid.
	Action tag.Tag

	Moving   bool
	HasInput bool

	ViewYaw      float32
	ViewYawSpeed float32

	VelocityYaw        float32
	DesiredVelocityYaw float32
	// RotateTowardsDesiredVelocity makes velocity direction rotation use DesiredVelocityYaw instead of
	// VelocityYaw while moving.
	RotateTowardsDesiredVelocity bool
	// InheritBaseRotation makes a stationary character in velocity direction mode turn with a movement
	// base that carries it without rotating it.
	InheritBaseRotation bool

	BaseHasRelativeLocation bool
	BaseHasRelativeRotation bool
	BaseDeltaYaw            float32

	// RotationYawSpeed is an externally driven yaw speed in degrees per second applied while standing.
	RotationYawSpeed float32
	// RotationInterpSpeed is the interpolation speed of the current gait.
	RotationInterpSpeed float32
}

// Reset snaps the facing and every target to the rotation passed.
func (s *State) Reset(rotation game.Rotator, viewYaw float32) {
	s.Rotation = rotation.Normalize()
	s.Retarget(viewYaw)
}

// ApplyBaseDelta keeps the state relative to a rotating movement base.
func (s *State) ApplyBaseDelta(delta game.Rotator) {
	s.TargetYaw = game.NormalizeAxis(s.TargetYaw + delta.Yaw)
	s.ViewRelativeTargetYaw = game.NormalizeAxis(s.ViewRelativeTargetYaw + delta.Yaw)
	s.SmoothTargetYaw = game.NormalizeAxis(s.SmoothTargetYaw + delta.Yaw)

	s.Rotation.Pitch += delta.Pitch
	s.Rotation.Yaw += delta.Yaw
	s.Rotation = s.Rotation.Normalize()
}

// Update dispatches to the update of the space passed. Nothing happens for SpaceNone.
func (s *State) Update(space config.Space, in Input) {
	switch space {
	case config.SpaceOnGround:
		s.UpdateOnGround(in)
	case config.SpaceInAir:
		s.UpdateInAir(in)
	case config.SpaceInWater:
		s.UpdateInWater(in)
	}
}

// UpdateOnGround advances the facing of a character moving on the ground.
func (s *State) UpdateOnGround(in Input) {
	if in.Action.Valid() {
		return
	}
	dt := in.DeltaTime

	if !in.Moving {
		s.applyRotationYawSpeed(in)

		if in.RotationMode == tag.RotationModeVelocityDirection {
			target := s.TargetYaw
			if in.BaseHasRelativeLocation && !in.BaseHasRelativeRotation && in.InheritBaseRotation {
				target = game.NormalizeAxis(target + in.BaseDeltaYaw)
			}
			s.ExtraSmooth(target, in.ViewYaw, dt, game.GroundVelocityDirectionRotationSpeed, game.VelocityDirectionTargetYawSpeed)
			return
		}

		if in.HasInput {
			s.ExtraSmooth(in.ViewYaw, in.ViewYaw, dt, game.GroundViewDirectionRotationSpeed, game.ViewDirectionTargetYawSpeed)
			return
		}

		rel := game.NormalizeAxis(in.ViewYaw - s.Rotation.Yaw)
		if math32.Abs(rel) <= game.ViewRelativeYawLimit {
			s.Retarget(in.ViewYaw)
			return
		}
		if rel > 180-game.CounterClockwiseRotationAngleThreshold {
			rel -= 360
		}
		offset := game.ViewRelativeYawLimit
		if rel >= 0 {
			offset = -offset
		}
		s.UpdateRotation(game.NormalizeAxis(in.ViewYaw+offset), in.ViewYaw, dt, game.GroundViewDirectionRotationSpeed)
		return
	}

	if in.RotationMode == tag.RotationModeVelocityDirection && (in.HasInput || !s.LastInputDirectionBlocked) {
		s.LastInputDirectionBlocked = false

		target := in.VelocityYaw
		if in.RotateTowardsDesiredVelocity {
			target = in.DesiredVelocityYaw
		}
		s.ExtraSmooth(target, in.ViewYaw, dt, InterpSpeed(in.RotationInterpSpeed, in.ViewYawSpeed), game.VelocityDirectionTargetYawSpeed)
		return
	}
	s.ExtraSmooth(in.ViewYaw, in.ViewYaw, dt, game.GroundViewDirectionRotationSpeed, game.ViewDirectionTargetYawSpeed)
}

// UpdateInAir advances the facing of a falling or flying character.
func (s *State) UpdateInAir(in Input) {
	s.updateInFluid(in)
}

// UpdateInWater advances the facing of a swimming character. It behaves like the in-air update.
func (s *State) UpdateInWater(in Input) {
	s.updateInFluid(in)
}

func (s *State) updateInFluid(in Input) {
	if in.Action.Valid() {
		return
	}
	if in.RotationMode != tag.RotationModeVelocityDirection {
		s.UpdateRotation(in.ViewYaw, in.ViewYaw, in.DeltaTime, game.InAirViewDirectionRotationSpeed)
		return
	}
	if !in.Moving {
		s.Retarget(in.ViewYaw)
		return
	}
	s.UpdateRotation(in.VelocityYaw, in.ViewYaw, in.DeltaTime, game.InAirVelocityDirectionRotationSpeed)
}

// InterpSpeed scales the gait rotation interpolation speed by how fast the view is turning, up to three
// times at MaxViewYawSpeed.
func InterpSpeed(gaitSpeed, viewYawSpeed float32) float32 {
	return gaitSpeed * game.LerpClamped(1, 3, viewYawSpeed/game.MaxViewYawSpeed)
}

// UpdateRotation sets both targets to target and decays the yaw towards it.
func (s *State) UpdateRotation(target, viewYaw, dt, speed float32) {
	s.setTarget(target, viewYaw)
	s.Rotation.Yaw = game.ExponentialDecayAngle(game.NormalizeAxis(s.Rotation.Yaw), target, dt, speed)
}

// ExtraSmooth sets the target yaw, moves the smooth target towards it at targetSpeed degrees per second
// and decays the yaw towards the smooth target.
func (s *State) ExtraSmooth(target, viewYaw, dt, speed, targetSpeed float32) {
	s.TargetYaw = target
	s.updateViewRelativeTargetYaw(viewYaw)
	s.SmoothTargetYaw = game.InterpolateAngleConstant(s.SmoothTargetYaw, target, dt, targetSpeed)
	s.Rotation.Yaw = game.ExponentialDecayAngle(game.NormalizeAxis(s.Rotation.Yaw), s.SmoothTargetYaw, dt, speed)
}

// UpdateInstant snaps the yaw and both targets to target.
func (s *State) UpdateInstant(target, viewYaw float32) {
	s.setTarget(target, viewYaw)
	s.Rotation.Yaw = target
}

// Retarget points every target at the current yaw.
func (s *State) Retarget(viewYaw float32) {
	s.setTarget(game.NormalizeAxis(s.Rotation.Yaw), viewYaw)
}

func (s *State) applyRotationYawSpeed(in Input) {
	delta := in.RotationYawSpeed * in.DeltaTime
	if math32.Abs(delta) <= game.KindaSmallNumber {
		return
	}
	s.Rotation.Yaw = game.NormalizeAxis(s.Rotation.Yaw + delta)
	s.Retarget(in.ViewYaw)
}

func (s *State) setTarget(target, viewYaw float32) {
	s.TargetYaw = target
	s.updateViewRelativeTargetYaw(viewYaw)
	s.SmoothTargetYaw = target
}

func (s *State) updateViewRelativeTargetYaw(viewYaw float32) {
	s.ViewRelativeTargetYaw = game.NormalizeAxis(viewYaw - s.TargetYaw)
}
