package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Rotator is an orientation in degrees. Yaw rotates about the Z axis, pitch about the Y axis and roll
// about the X axis.
type Rotator struct {
	Pitch, Yaw, Roll float32
}

// Normalize wraps every axis into (-180, 180].
func (r Rotator) Normalize() Rotator {
	return Rotator{Pitch: NormalizeAxis(r.Pitch), Yaw: NormalizeAxis(r.Yaw), Roll: NormalizeAxis(r.Roll)}
}

// Add ...
func (r Rotator) Add(o Rotator) Rotator {
	return Rotator{Pitch: r.Pitch + o.Pitch, Yaw: r.Yaw + o.Yaw, Roll: r.Roll + o.Roll}
}

// Sub ...
func (r Rotator) Sub(o Rotator) Rotator {
	return Rotator{Pitch: r.Pitch - o.Pitch, Yaw: r.Yaw - o.Yaw, Roll: r.Roll - o.Roll}
}

// Equals compares two rotators axis by axis modulo 360.
func (r Rotator) Equals(o Rotator, tolerance float32) bool {
	return AngleApproxEq(r.Pitch, o.Pitch, tolerance) &&
		AngleApproxEq(r.Yaw, o.Yaw, tolerance) &&
		AngleApproxEq(r.Roll, o.Roll, tolerance)
}

// IsNearlyZero reports whether every normalized axis is within tolerance of zero.
func (r Rotator) IsNearlyZero(tolerance float32) bool {
	return r.Equals(Rotator{}, tolerance)
}

// Quat converts the rotator to a quaternion.
func (r Rotator) Quat() mgl32.Quat {
	sp, cp := math32.Sincos(mgl32.DegToRad(r.Pitch) * 0.5)
	sy, cy := math32.Sincos(mgl32.DegToRad(r.Yaw) * 0.5)
	sr, cr := math32.Sincos(mgl32.DegToRad(r.Roll) * 0.5)

	return mgl32.Quat{
		W: cr*cp*cy + sr*sp*sy,
		V: mgl32.Vec3{
			cr*sp*sy - sr*cp*cy,
			-cr*sp*cy - sr*cp*sy,
			cr*cp*sy - sr*sp*cy,
		},
	}
}

const quatSingularityThreshold = 0.4999995

// RotatorFromQuat converts a quaternion back to a rotator, handling the gimbal lock singularities at
// +-90 degrees of pitch.
func RotatorFromQuat(q mgl32.Quat) Rotator {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.W

	singularity := z*x - w*y
	yawY := 2 * (w*z + x*y)
	yawX := 1 - 2*(y*y+z*z)
	yaw := mgl32.RadToDeg(math32.Atan2(yawY, yawX))

	switch {
	case singularity < -quatSingularityThreshold:
		return Rotator{
			Pitch: -90,
			Yaw:   yaw,
			Roll:  NormalizeAxis(-yaw - 2*mgl32.RadToDeg(math32.Atan2(x, w))),
		}
	case singularity > quatSingularityThreshold:
		return Rotator{
			Pitch: 90,
			Yaw:   yaw,
			Roll:  NormalizeAxis(yaw - 2*mgl32.RadToDeg(math32.Atan2(x, w))),
		}
	}
	return Rotator{
		Pitch: mgl32.RadToDeg(math32.Asin(2 * singularity)),
		Yaw:   yaw,
		Roll:  mgl32.RadToDeg(math32.Atan2(-2*(w*x+y*z), 1-2*(x*x+y*y))),
	}
}

// DeltaRotation returns the rotation that takes prev to current, that is current * prev^-1.
func DeltaRotation(current, prev Rotator) Rotator {
	return RotatorFromQuat(current.Quat().Mul(prev.Quat().Inverse()))
}

// Vector returns the unit forward vector of the rotator.
func (r Rotator) Vector() mgl32.Vec3 {
	sp, cp := math32.Sincos(mgl32.DegToRad(r.Pitch))
	sy, cy := math32.Sincos(mgl32.DegToRad(r.Yaw))
	return mgl32.Vec3{cp * cy, cp * sy, sp}
}
