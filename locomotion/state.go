package locomotion

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/movesim"
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/smoothing"
	"github.com/oomph-ac/locomotion/tag"
)

// LocomotionState is the derived movement state of a character, refreshed every tick.
type LocomotionState struct {
	HasInput bool
	// InputYaw is the yaw of the input direction. It keeps its last value while there is no input.
	InputYaw float32

	HasSpeed bool
	Speed    float32
	Moving   bool

	Velocity         mgl32.Vec3
	PreviousVelocity mgl32.Vec3
	Acceleration     mgl32.Vec3

	// VelocityYaw is the yaw of the horizontal velocity. It keeps its last value while standing.
	VelocityYaw        float32
	DesiredVelocityYaw float32

	Location mgl32.Vec3
	Rotation game.Rotator

	TargetYaw             float32
	SmoothTargetYaw       float32
	ViewRelativeTargetYaw float32

	PreviousYaw float32
	YawSpeed    float32
}

// ViewState is the view rotation of a character as the locomotion sees it.
type ViewState struct {
	Rotation    game.Rotator
	PreviousYaw float32
	YawSpeed    float32

	NetworkSmoothing smoothing.State
}

// MovementBaseState tracks the movement base the character stands on.
type MovementBaseState struct {
	Base movesim.BaseID
	Bone string

	HasRelativeLocation bool
	HasRelativeRotation bool
	Changed             bool

	Location      mgl32.Vec3
	Rotation      game.Rotator
	DeltaRotation game.Rotator
}

// Snapshot is the state a component publishes once per tick. A published snapshot is never modified.
type Snapshot struct {
	Tick uint64
	Role Role

	Desired  resolver.DesiredState
	Resolved resolver.State
	Action   tag.Tag

	MovementMode config.MovementMode
	CustomMode   uint8
	Space        config.Space

	Locomotion   LocomotionState
	View         ViewState
	MovementBase MovementBaseState
}
