package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NormalizeAxis wraps an angle in degrees into the range (-180, 180].
func NormalizeAxis(angle float32) float32 {
	angle = math32.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	if angle > 180 {
		angle -= 360
	}
	return angle
}

// shortestDelta returns the signed delta from -> to. Deltas within CounterClockwiseRotationAngleThreshold
// of the antipode are always taken counter-clockwise so that interpolation does not flip direction
// between ticks.
func shortestDelta(from, to float32) float32 {
	delta := NormalizeAxis(to - from)
	if delta > 180-CounterClockwiseRotationAngleThreshold {
		delta -= 360
	}
	return delta
}

// LerpAngle interpolates between two angles in degrees along the shorter arc.
func LerpAngle(from, to, alpha float32) float32 {
	return NormalizeAxis(from + shortestDelta(from, to)*alpha)
}

// LerpRotator interpolates every axis of a rotator with LerpAngle.
func LerpRotator(from, to Rotator, alpha float32) Rotator {
	return Rotator{
		Pitch: LerpAngle(from.Pitch, to.Pitch, alpha),
		Yaw:   LerpAngle(from.Yaw, to.Yaw, alpha),
		Roll:  LerpAngle(from.Roll, to.Roll, alpha),
	}
}

// ExponentialDecay returns the interpolation alpha of an exponential decay with the given lambda over
// deltaTime.
func ExponentialDecay(deltaTime, lambda float32) float32 {
	return 1 - math32.Exp(-lambda*deltaTime)
}

// ExponentialDecayAngle moves current towards target by an exponential decay. A non-positive lambda
// snaps to the target.
func ExponentialDecayAngle(current, target, deltaTime, lambda float32) float32 {
	if lambda <= 0 {
		return target
	}
	return LerpAngle(current, target, ExponentialDecay(deltaTime, lambda))
}

// InterpolateAngleConstant moves current towards target at a constant rate of speed degrees per second.
func InterpolateAngleConstant(current, target, deltaTime, speed float32) float32 {
	if speed <= 0 || current == target {
		return target
	}
	step := speed * deltaTime
	return NormalizeAxis(current + Clamp(shortestDelta(current, target), -step, step))
}

// Clamp clamps v between lo and hi.
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 ...
func Clamp01(v float32) float32 {
	return Clamp(v, 0, 1)
}

// ClampFloat64 clamps a float64 between lo and hi.
func ClampFloat64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LerpClamped linearly interpolates between a and b with alpha clamped to [0, 1].
func LerpClamped(a, b, alpha float32) float32 {
	return a + (b-a)*Clamp01(alpha)
}

// DirectionToAngleXY returns the yaw in degrees of a direction on the XY plane.
func DirectionToAngleXY(dir mgl32.Vec3) float32 {
	return mgl32.RadToDeg(math32.Atan2(dir.Y(), dir.X()))
}

// AngleToDirectionXY returns the unit direction on the XY plane for a yaw in degrees.
func AngleToDirectionXY(yaw float32) mgl32.Vec3 {
	rad := mgl32.DegToRad(yaw)
	return mgl32.Vec3{math32.Cos(rad), math32.Sin(rad), 0}
}

// AngleApproxEq compares two angles in degrees modulo 360.
func AngleApproxEq(a, b, tolerance float32) bool {
	return math32.Abs(NormalizeAxis(a-b)) <= tolerance
}

// Vec3Hz returns the vector with its Z component removed.
func Vec3Hz(vec mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{vec.X(), vec.Y(), 0}
}
