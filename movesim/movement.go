package movesim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/config"
)

// MovementState holds the continuous movement state of a character.
type MovementState struct {
	Location     mgl32.Vec3
	LastLocation mgl32.Vec3
	Velocity     mgl32.Vec3
	LastVelocity mgl32.Vec3

	// Acceleration is the acceleration last applied from input.
	Acceleration mgl32.Vec3

	Mode       config.MovementMode
	CustomMode uint8

	Floor FloorResult

	// blockedVelocity is the velocity the character had before it last slid along a blocking surface.
	blockedVelocity      mgl32.Vec3
	blockedVelocityValid bool
}

// SetLocation updates the location and saves the previous one.
func (s *MovementState) SetLocation(loc mgl32.Vec3) {
	s.LastLocation = s.Location
	s.Location = loc
}

// SetVelocity updates the velocity and saves the previous one.
func (s *MovementState) SetVelocity(vel mgl32.Vec3) {
	s.LastVelocity = s.Velocity
	s.Velocity = vel
}

// SetMovementMode changes the movement mode. Leaving the walking modes forgets the floor.
func (s *MovementState) SetMovementMode(mode config.MovementMode, custom uint8) {
	s.Mode, s.CustomMode = mode, custom
	if mode != config.MovementModeCustom {
		s.CustomMode = 0
	}
	if !s.OnGround() {
		s.Floor = FloorResult{}
	}
}

// ConsumeBlockedVelocity returns the velocity the character had before it was last redirected by a
// blocking surface, and forgets it. False is returned if nothing blocked the character since the last call.
func (s *MovementState) ConsumeBlockedVelocity() (mgl32.Vec3, bool) {
	vel, ok := s.blockedVelocity, s.blockedVelocityValid
	s.blockedVelocity, s.blockedVelocityValid = mgl32.Vec3{}, false
	return vel, ok
}

// OnGround ...
func (s *MovementState) OnGround() bool {
	return s.Mode == config.MovementModeWalking || s.Mode == config.MovementModeNavWalking
}

// Base returns the movement base of the floor the character is standing on.
func (s *MovementState) Base() BaseID {
	if !s.OnGround() {
		return NoBase
	}
	return s.Floor.Base
}
