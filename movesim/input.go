package movesim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/config"
)

// Input represents the input of a single move.
type Input struct {
	// Acceleration is the world space input acceleration in cm/s². It is clamped to the gait's
	// MaxAcceleration.
	Acceleration mgl32.Vec3
	DeltaTime    float32
	Jump         bool

	// Gait holds the movement parameters of the gait resolved for the move.
	Gait *config.GaitConfig

	// ClientLocation is the end location the client reported for the move. It is only compared when
	// HasClientLocation is set.
	ClientLocation    mgl32.Vec3
	HasClientLocation bool
}
