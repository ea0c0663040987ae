package movesim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/game"
)

// calcVelocity integrates accel into vel over dt. Without acceleration, or above maxSpeed, the velocity
// brakes. With acceleration, friction steers the velocity towards the acceleration direction before the
// acceleration is applied and the result is clamped to maxSpeed.
func (s *Simulator) calcVelocity(vel, accel mgl32.Vec3, maxSpeed, friction, brakingDeceleration, dt float32) mgl32.Vec3 {
	friction = max(friction, 0)
	maxSpeed = max(maxSpeed, 0)

	zeroAccel := accel.LenSqr() <= game.SmallNumber
	overMax := vel.LenSqr() > maxSpeed*maxSpeed

	if zeroAccel || overMax {
		old := vel
		vel = s.applyBraking(vel, friction, brakingDeceleration, dt)
		if overMax && vel.LenSqr() < maxSpeed*maxSpeed && accel.Dot(old) > 0 {
			vel = old.Normalize().Mul(maxSpeed)
		}
	} else {
		dir := accel.Normalize()
		speed := vel.Len()
		vel = vel.Sub(vel.Sub(dir.Mul(speed)).Mul(min(dt*friction, 1)))
	}

	if !zeroAccel {
		limit := maxSpeed
		if overMax {
			limit = vel.Len()
		}
		vel = clampLength(vel.Add(accel.Mul(dt)), limit)
	}
	return vel
}

// applyBraking decelerates vel with friction and a constant deceleration, in sub-steps of at most
// BrakingSubStepTime.
func (s *Simulator) applyBraking(vel mgl32.Vec3, friction, deceleration, dt float32) mgl32.Vec3 {
	if vel.LenSqr() <= game.SmallNumber || dt < minTickTime {
		return vel
	}
	friction = max(friction*max(s.Options.BrakingFrictionFactor, 0), 0)
	deceleration = max(deceleration, 0)
	zeroFriction, zeroBraking := friction == 0, deceleration == 0
	if zeroFriction && zeroBraking {
		return vel
	}

	old := vel
	var revAccel mgl32.Vec3
	if !zeroBraking {
		revAccel = vel.Normalize().Mul(-deceleration)
	}
	maxStep := game.Clamp(s.Options.BrakingSubStepTime, 1.0/75.0, 1.0/20.0)

	remaining := dt
	for remaining >= minTickTime {
		step := remaining
		if remaining > maxStep && !zeroFriction {
			step = min(maxStep, remaining*0.5)
		}
		remaining -= step

		vel = vel.Add(vel.Mul(-friction).Add(revAccel).Mul(step))
		if vel.Dot(old) <= 0 {
			return mgl32.Vec3{}
		}
	}

	if vel.LenSqr() <= game.KindaSmallNumber || (!zeroBraking && vel.LenSqr() <= BrakeToStopVelocity*BrakeToStopVelocity) {
		return mgl32.Vec3{}
	}
	return vel
}

func clampLength(v mgl32.Vec3, maxLen float32) mgl32.Vec3 {
	if maxLen <= 0 {
		return mgl32.Vec3{}
	}
	if l := v.LenSqr(); l > maxLen*maxLen {
		return v.Mul(maxLen / v.Len())
	}
	return v
}
