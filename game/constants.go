package game

const (
	// SmallNumber mirrors the tolerance used for near-zero checks on vectors.
	SmallNumber = float32(1e-8)
	// KindaSmallNumber is the tolerance used for input and angle deltas.
	KindaSmallNumber = float32(1e-4)

	// CounterClockwiseRotationAngleThreshold is the distance from the antipode inside which angle
	// interpolation always rotates counter-clockwise.
	CounterClockwiseRotationAngleThreshold = float32(5)
)

const (
	// HasSpeedThreshold is the horizontal speed above which a character is considered to have speed.
	HasSpeedThreshold = float32(1)
	// DefaultMovingSpeedThreshold is the horizontal speed above which a character counts as moving
	// even without input.
	DefaultMovingSpeedThreshold = float32(50)
)

const (
	GroundVelocityDirectionRotationSpeed = float32(12)
	GroundViewDirectionRotationSpeed     = float32(20)
	VelocityDirectionTargetYawSpeed      = float32(800)
	ViewDirectionTargetYawSpeed          = float32(1000)

	// ViewRelativeYawLimit is how far the view may turn away from a stationary character before the
	// character starts following it.
	ViewRelativeYawLimit = float32(70)

	// MaxViewYawSpeed is the view yaw speed at which the velocity direction interp speed is tripled.
	MaxViewYawSpeed = float32(300)

	InAirVelocityDirectionRotationSpeed = float32(5)
	InAirViewDirectionRotationSpeed     = float32(15)
)
