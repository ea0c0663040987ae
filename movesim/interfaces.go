package movesim

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/game"
)

// BaseID identifies a primitive a character may stand on and move with. The zero value means no base.
type BaseID uint64

// NoBase ...
const NoBase BaseID = 0

// FloorResult is the outcome of a downward floor query.
type FloorResult struct {
	// Walkable is false when no floor was found, or the floor is too steep to stand on.
	Walkable bool
	Normal   mgl32.Vec3
	// Distance is the distance from the queried point down to the floor surface. It may be slightly
	// negative when the point is inside the floor.
	Distance float32
	// Base is the primitive the floor belongs to, if it is a movement base.
	Base BaseID
}

// HitResult is the outcome of sweeping a shape between two locations.
type HitResult struct {
	Blocking bool
	// Time is the fraction of the sweep, in [0, 1], at which the shape was stopped.
	Time     float32
	Location mgl32.Vec3
	Normal   mgl32.Vec3
}

// Environment bridges the collision world the simulator moves through. Failed queries are not errors:
// they return a non-walkable floor or a non-blocking hit.
type Environment interface {
	// FindFloor looks straight down from location for a floor.
	FindFloor(location mgl32.Vec3) FloorResult
	// Sweep moves shape, centred on from, towards to and reports the first blocking hit.
	Sweep(shape cube.BBox, from, to mgl32.Vec3) HitResult
	// MovementBaseTransform returns the world transform of a movement base, or of one of its bones when
	// bone is not empty.
	MovementBaseTransform(base BaseID, bone string) (mgl32.Vec3, game.Rotator, bool)
}
