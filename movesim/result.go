package movesim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/config"
)

// SimulationOutcome describes which path the simulator took for a move.
type SimulationOutcome uint8

const (
	SimulationOutcomeNormal SimulationOutcome = iota
	// SimulationOutcomeSkipped is returned for moves without a positive delta time.
	SimulationOutcomeSkipped
	// SimulationOutcomeImmobile is returned for movement modes the simulator does not move, such as
	// none and custom modes.
	SimulationOutcomeImmobile
)

// SimulationResult captures the outcome of a single move.
type SimulationResult struct {
	Location mgl32.Vec3
	Velocity mgl32.Vec3

	Mode       config.MovementMode
	CustomMode uint8
	OnGround   bool
	Base       BaseID

	Landed  bool
	Jumped  bool
	Blocked bool

	PositionDelta   mgl32.Vec3
	NeedsCorrection bool

	Outcome SimulationOutcome
}
