package movesim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/config"
)

// Simulate runs a single move and returns the resulting state. Moves longer than MaxSimulationTimeStep
// are split into sub-steps.
func (s *Simulator) Simulate(state *MovementState, input Input) SimulationResult {
	if state == nil {
		return SimulationResult{}
	}
	if input.DeltaTime <= 0 || input.Gait == nil {
		return s.resultFromState(state, input, stepFlags{}, SimulationOutcomeSkipped)
	}
	if state.Mode == config.MovementModeNone || state.Mode == config.MovementModeCustom {
		state.SetVelocity(mgl32.Vec3{})
		return s.resultFromState(state, input, stepFlags{}, SimulationOutcomeImmobile)
	}

	state.Acceleration = clampLength(input.Acceleration, input.Gait.MaxAcceleration)

	var flags stepFlags
	remaining := input.DeltaTime
	maxStep := s.Options.MaxSimulationTimeStep
	if maxStep <= 0 {
		maxStep = DefaultMaxSimulationTimeStep
	}
	for i := 0; remaining > minTickTime; i++ {
		step := min(remaining, maxStep)
		if i >= s.Options.MaxSimulationIterations-1 {
			step = remaining
		}
		remaining -= step

		s.step(state, input, step, i == 0, &flags)
		if state.Mode == config.MovementModeNone || state.Mode == config.MovementModeCustom {
			break
		}
	}
	return s.resultFromState(state, input, flags, SimulationOutcomeNormal)
}

type stepFlags struct {
	landed, jumped, blocked bool
}

func (s *Simulator) step(state *MovementState, input Input, dt float32, first bool, flags *stepFlags) {
	switch state.Mode {
	case config.MovementModeWalking, config.MovementModeNavWalking:
		if first && input.Jump && input.Gait.JumpZPower > 0 {
			vel := state.Velocity
			vel[2] = input.Gait.JumpZPower
			state.SetVelocity(vel)
			state.SetMovementMode(config.MovementModeFalling, 0)
			flags.jumped = true
			s.debugf("movesim: jump with z velocity %.2f", vel[2])
			s.simulateFalling(state, input.Gait, dt, flags)
			return
		}
		s.simulateWalking(state, input.Gait, dt, flags)
	case config.MovementModeFalling:
		s.simulateFalling(state, input.Gait, dt, flags)
	case config.MovementModeSwimming:
		s.simulateFluid(state, input.Gait, s.Options.FluidFriction, dt, flags)
	case config.MovementModeFlying:
		s.simulateFluid(state, input.Gait, s.Options.FluidFriction*0.5, dt, flags)
	}
}

func (s *Simulator) simulateWalking(state *MovementState, gait *config.GaitConfig, dt float32, flags *stepFlags) {
	accel := state.Acceleration
	accel[2] = 0
	vel := state.Velocity
	vel[2] = 0
	vel = s.calcVelocity(vel, accel, gait.MaxSpeed, gait.GroundFriction, gait.BrakingDeceleration, dt)
	state.SetVelocity(vel)

	if s.moveWithSlide(state, vel.Mul(dt)) {
		flags.blocked = true
	}

	floor := s.findFloor(state.Location)
	if !floor.Walkable || floor.Distance > s.Options.MaxFloorDistance || floor.Distance < -s.Options.MaxFloorDistance {
		s.debugf("movesim: lost floor at %v (walkable=%v distance=%.3f)", state.Location, floor.Walkable, floor.Distance)
		state.SetMovementMode(config.MovementModeFalling, 0)
		return
	}
	s.snapToFloor(state, floor)
}

func (s *Simulator) simulateFalling(state *MovementState, gait *config.GaitConfig, dt float32, flags *stepFlags) {
	accel := state.Acceleration.Mul(gait.AirControl)
	accel[2] = 0

	hz := mgl32.Vec3{state.Velocity.X(), state.Velocity.Y(), 0}
	hz = s.calcVelocity(hz, accel, gait.MaxSpeed, 0, 0, dt)

	vel := mgl32.Vec3{hz.X(), hz.Y(), state.Velocity.Z() + s.Options.Gravity*dt}
	state.SetVelocity(vel)

	from := state.Location
	hit := s.sweep(from, from.Add(vel.Mul(dt)))
	if !hit.Blocking {
		state.SetLocation(from.Add(vel.Mul(dt)))
	} else {
		state.SetLocation(hit.Location)
		if hit.Normal.Z() >= s.Options.WalkableFloorZ {
			s.land(state, flags)
			return
		}
		flags.blocked = true
		state.blockedVelocity, state.blockedVelocityValid = vel, true
		state.SetVelocity(slideVelocity(vel, hit.Normal))
		remaining := vel.Mul(dt * (1 - hit.Time))
		s.moveWithSlide(state, remaining.Sub(hit.Normal.Mul(remaining.Dot(hit.Normal))))
	}

	if state.Velocity.Z() > 0 {
		return
	}
	floor := s.findFloor(state.Location)
	if floor.Walkable && floor.Distance <= s.Options.MaxFloorDistance && floor.Distance >= -s.Options.MaxFloorDistance {
		s.land(state, flags)
	}
}

func (s *Simulator) simulateFluid(state *MovementState, gait *config.GaitConfig, friction, dt float32, flags *stepFlags) {
	vel := s.calcVelocity(state.Velocity, state.Acceleration, gait.MaxSpeed, friction, gait.BrakingDeceleration, dt)
	state.SetVelocity(vel)
	if s.moveWithSlide(state, vel.Mul(dt)) {
		flags.blocked = true
	}
}

func (s *Simulator) land(state *MovementState, flags *stepFlags) {
	vel := state.Velocity
	vel[2] = 0
	state.SetVelocity(vel)
	state.SetMovementMode(config.MovementModeWalking, 0)
	if floor := s.findFloor(state.Location); floor.Walkable && floor.Distance <= s.Options.MaxFloorDistance {
		s.snapToFloor(state, floor)
	}
	flags.landed = true
	s.debugf("movesim: landed at %v", state.Location)
}

func (s *Simulator) snapToFloor(state *MovementState, floor FloorResult) {
	loc := state.Location
	loc[2] -= floor.Distance
	state.Location = loc
	floor.Distance = 0
	state.Floor = floor
}

// moveWithSlide moves the character by delta, sliding once along the surface of a blocking hit. It
// reports whether anything was hit.
func (s *Simulator) moveWithSlide(state *MovementState, delta mgl32.Vec3) bool {
	if delta.LenSqr() <= minTickTime*minTickTime {
		return false
	}
	from := state.Location
	hit := s.sweep(from, from.Add(delta))
	if !hit.Blocking {
		state.SetLocation(from.Add(delta))
		return false
	}

	state.SetLocation(hit.Location)
	state.blockedVelocity, state.blockedVelocityValid = state.Velocity, true
	state.Velocity = slideVelocity(state.Velocity, hit.Normal)

	remaining := delta.Mul(1 - hit.Time)
	slide := remaining.Sub(hit.Normal.Mul(remaining.Dot(hit.Normal)))
	if slide.LenSqr() <= minTickTime*minTickTime {
		return true
	}
	if second := s.sweep(hit.Location, hit.Location.Add(slide)); second.Blocking {
		state.Location = second.Location
	} else {
		state.Location = hit.Location.Add(slide)
	}
	return true
}

func (s *Simulator) sweep(from, to mgl32.Vec3) HitResult {
	if s.Env == nil {
		return HitResult{Time: 1, Location: to}
	}
	return s.Env.Sweep(s.Shape(), from, to)
}

// findFloor queries the floor under the bottom of the character's collision shape. When the query finds
// nothing in reach, the shape is swept down by MaxFloorDistance so that a character overhanging an edge
// keeps standing on it.
func (s *Simulator) findFloor(location mgl32.Vec3) FloorResult {
	if s.Env == nil {
		return FloorResult{}
	}
	bottom := location
	bottom[2] -= s.Options.CapsuleHalfHeight
	floor := s.Env.FindFloor(bottom)
	if floor.Walkable && floor.Distance <= s.Options.MaxFloorDistance {
		return floor
	}

	down := location
	down[2] -= s.Options.MaxFloorDistance
	hit := s.Env.Sweep(s.Shape(), location, down)
	if hit.Blocking && hit.Normal.Z() >= s.Options.WalkableFloorZ {
		return FloorResult{Walkable: true, Normal: hit.Normal, Distance: location.Z() - hit.Location.Z()}
	}
	return floor
}

func (s *Simulator) resultFromState(state *MovementState, input Input, flags stepFlags, outcome SimulationOutcome) SimulationResult {
	result := SimulationResult{
		Location:   state.Location,
		Velocity:   state.Velocity,
		Mode:       state.Mode,
		CustomMode: state.CustomMode,
		OnGround:   state.OnGround(),
		Base:       state.Base(),
		Landed:     flags.landed,
		Jumped:     flags.jumped,
		Blocked:    flags.blocked,
		Outcome:    outcome,
	}
	if input.HasClientLocation {
		result.PositionDelta = state.Location.Sub(input.ClientLocation)
		result.NeedsCorrection = result.PositionDelta.LenSqr() > s.Options.MaxPositionErrorSquared
	}
	return result
}

func slideVelocity(vel, normal mgl32.Vec3) mgl32.Vec3 {
	if d := vel.Dot(normal); d < 0 {
		return vel.Sub(normal.Mul(d))
	}
	return vel
}
