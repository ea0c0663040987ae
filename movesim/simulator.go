// Package movesim implements a small, deterministic character movement simulator. It integrates input
// acceleration, friction, braking and gravity for the walking, falling, swimming and flying movement modes,
// and moves the character through an Environment using its floor and sweep queries. Given the same state,
// input and environment it always produces bit-identical results, which client replay depends on.
package movesim

import (
	"github.com/ethaniccc/float32-cube/cube"
)

// SimulationOptions define simulator behavior and correction thresholds.
type SimulationOptions struct {
	// MaxSimulationTimeStep is the longest sub-step a move is simulated with.
	MaxSimulationTimeStep float32
	// MaxSimulationIterations bounds the number of sub-steps. The last sub-step absorbs any remainder.
	MaxSimulationIterations int

	Gravity float32

	CapsuleRadius     float32
	CapsuleHalfHeight float32

	// MaxFloorDistance is the largest floor distance at which a walking character stays on the floor.
	MaxFloorDistance float32
	// WalkableFloorZ is the minimum Z component of a hit normal a character can land on.
	WalkableFloorZ float32

	BrakingFrictionFactor float32
	BrakingSubStepTime    float32
	FluidFriction         float32

	// MaxPositionErrorSquared is the squared distance between the simulated and the client reported
	// location above which a result needs correction.
	MaxPositionErrorSquared float32

	// Debugf, if set, receives trace lines about jumps and floor transitions.
	Debugf func(format string, args ...any)
}

// DefaultOptions returns the options the simulator uses when none are configured.
func DefaultOptions() SimulationOptions {
	return SimulationOptions{
		MaxSimulationTimeStep:   DefaultMaxSimulationTimeStep,
		MaxSimulationIterations: DefaultMaxSimulationIterations,
		Gravity:                 DefaultGravityZ,
		CapsuleRadius:           DefaultCapsuleRadius,
		CapsuleHalfHeight:       DefaultCapsuleHalfHeight,
		MaxFloorDistance:        MaxFloorDistance,
		WalkableFloorZ:          DefaultWalkableFloorZ,
		BrakingFrictionFactor:   DefaultBrakingFrictionFactor,
		BrakingSubStepTime:      DefaultBrakingSubStepTime,
		FluidFriction:           DefaultFluidFriction,
		MaxPositionErrorSquared: DefaultMaxPositionErrorSquared,
	}
}

// Simulator moves characters through the provided environment.
type Simulator struct {
	Env     Environment
	Options SimulationOptions
}

// NewSimulator returns a simulator over env with the default options.
func NewSimulator(env Environment) *Simulator {
	return &Simulator{Env: env, Options: DefaultOptions()}
}

// Shape returns the collision box of the character centred on the origin.
func (s *Simulator) Shape() cube.BBox {
	r, h := s.Options.CapsuleRadius, s.Options.CapsuleHalfHeight
	return cube.Box(-r, -r, -h, r, r, h)
}

func (s *Simulator) debugf(format string, args ...any) {
	if s.Options.Debugf != nil {
		s.Options.Debugf(format, args...)
	}
}
