package movesim

const (
	DefaultMaxSimulationTimeStep   = float32(0.05)
	DefaultMaxSimulationIterations = 8

	// DefaultGravityZ is the gravity acceleration in cm/s².
	DefaultGravityZ = float32(-980)

	DefaultCapsuleRadius     = float32(35)
	DefaultCapsuleHalfHeight = float32(90)

	MaxFloorDistance      = float32(2.4)
	DefaultWalkableFloorZ = float32(0.71)

	DefaultBrakingFrictionFactor = float32(2)
	DefaultBrakingSubStepTime    = float32(1.0 / 33.0)
	DefaultFluidFriction         = float32(0.3)

	DefaultMaxPositionErrorSquared = float32(3)

	// BrakeToStopVelocity is the speed under which braking stops a character outright.
	BrakeToStopVelocity = float32(10)

	minTickTime = float32(1e-6)
	sweepSkin   = float32(0.01)
)
