package locomotion

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/assert"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/movesim"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/rotation"
	"github.com/oomph-ac/locomotion/smoothing"
)

var _ prediction.Simulation = (*Component)(nil)

// PerformMove runs the full tick pipeline for a move and simulates it, resolving the desired state the move
// carries. The authority adopts that state as its own desired state. The end transform of the move is
// filled in.
func (c *Component) PerformMove(m *prediction.Move) error {
	if !c.role.simulates() {
		return oerror.New("locomotion: %v does not perform moves", c.role)
	}
	if m.DeltaTime <= 0 {
		return oerror.New("locomotion: move %.3f has non-positive delta time %f", m.Timestamp, m.DeltaTime)
	}
	dt := m.DeltaTime

	m.StartRotation = c.rotation.Rotation
	m.StartBaseRelativeRotation = c.baseRelativeRotation()
	if c.role == RoleAuthority {
		c.desired = m.State
	}

	c.updateMovementBase()
	c.updateInput(m.Acceleration)
	c.updateLocomotionEarly()
	baseDelta := c.applyViewBaseDelta()
	c.updateControlRotation(m.Timestamp, m.ControlRotation)
	c.updateView(dt, baseDelta)
	c.updateLocomotion(dt)
	c.resolve(m.State)
	c.updateRotation(dt)

	prevMode, prevCustom := c.movement.Mode, c.movement.CustomMode
	c.sim.Simulate(&c.movement, movesim.Input{
		Acceleration: m.Acceleration,
		DeltaTime:    dt,
		Jump:         m.Jump,
		Gait:         c.gait,
	})
	c.onMovementModeChanged(prevMode, prevCustom)
	c.updateLocomotionLate(dt)

	c.tick++
	c.publish()

	m.End = c.Transform()
	return nil
}

// ProxyUpdate is the replicated state of a character received by a simulated proxy.
type ProxyUpdate struct {
	// ServerTime is the time the server last saw the view rotation change.
	ServerTime   float64
	ViewRotation game.Rotator
	Transform    prediction.Transform
	Acceleration mgl32.Vec3
	State        resolver.State

	// Base and Bone name the movement base the character stands on.
	Base movesim.BaseID
	Bone string
}

// ProxyUpdate returns the state simulated proxies of the character are driven by. The server time is the
// timestamp of the last move that changed the control rotation.
func (c *Component) ProxyUpdate() ProxyUpdate {
	return ProxyUpdate{
		ServerTime:   c.lastTransformUpdate,
		ViewRotation: c.lastControlRotation,
		Transform:    c.Transform(),
		Acceleration: c.movement.Acceleration,
		State:        c.resolved,
		Base:         c.base.Base,
		Bone:         c.base.Bone,
	}
}

// ApplyProxyUpdate applies replicated state to a simulated proxy. The view rotation is smoothed over the
// following ticks.
func (c *Component) ApplyProxyUpdate(u ProxyUpdate) {
	c.movement.SetLocation(u.Transform.Location)
	c.movement.SetVelocity(u.Transform.Velocity)
	c.movement.Acceleration = u.Acceleration
	prevMode, prevCustom := c.movement.Mode, c.movement.CustomMode
	c.movement.SetMovementMode(u.Transform.Mode, u.Transform.CustomMode)
	c.onMovementModeChanged(prevMode, prevCustom)
	c.proxyBase, c.proxyBone = u.Base, u.Bone

	if resolver.Validate(c.data.Tree, u.State) {
		c.desired = u.State.Desired()
	} else {
		c.log.Warnf("locomotion: ignoring replicated state %v outside of the configuration tree", u.State)
	}
	c.smoothing.OnSnapshotReceived(u.ViewRotation.Normalize(), u.ServerTime)
}

// TickProxy runs the tick pipeline of a simulated proxy. The proxy does not simulate movement: it
// follows the replicated transform and only advances view smoothing and rotation.
func (c *Component) TickProxy(dt float32) error {
	if c.role != RoleSimulatedProxy {
		return oerror.New("locomotion: %v is not a simulated proxy", c.role)
	}
	if dt <= 0 {
		return nil
	}
	c.updateMovementBase()
	c.updateInput(c.movement.Acceleration)
	c.updateLocomotionEarly()
	c.updateView(dt, c.applyViewBaseDelta())
	c.updateLocomotion(dt)
	c.resolve(c.desired)
	c.updateRotation(dt)
	c.updateLocomotionLate(dt)

	c.tick++
	c.publish()
	return nil
}

func (c *Component) updateMovementBase() {
	id, bone := c.movement.Base(), ""
	if c.role == RoleSimulatedProxy {
		id, bone = c.proxyBase, c.proxyBone
	}
	c.base.Changed = id != c.base.Base || bone != c.base.Bone
	c.base.Base, c.base.Bone = id, bone

	prev := c.base.Rotation
	var (
		loc mgl32.Vec3
		rot game.Rotator
		ok  bool
	)
	if id != movesim.NoBase && c.sim.Env != nil {
		loc, rot, ok = c.sim.Env.MovementBaseTransform(id, c.base.Bone)
	}
	c.base.Location, c.base.Rotation = loc, rot
	c.base.HasRelativeLocation = ok
	c.base.HasRelativeRotation = ok && !c.ignoreBaseRotation

	c.base.DeltaRotation = game.Rotator{}
	if ok && !c.base.Changed {
		c.base.DeltaRotation = game.DeltaRotation(rot, prev)
	}
}

func (c *Component) baseRelativeRotation() game.Rotator {
	if !c.base.HasRelativeRotation {
		return c.rotation.Rotation
	}
	return game.DeltaRotation(c.rotation.Rotation, c.base.Rotation)
}

func (c *Component) updateInput(accel mgl32.Vec3) {
	dir := accel
	if c.gait != nil && c.gait.MaxAcceleration > 0 {
		dir = accel.Mul(1 / c.gait.MaxAcceleration)
	}
	c.locomotion.HasInput = dir.LenSqr() > game.SmallNumber
	if c.locomotion.HasInput {
		c.locomotion.InputYaw = game.DirectionToAngleXY(dir)
	}
}

func (c *Component) updateLocomotionEarly() {
	if c.base.HasRelativeRotation {
		c.rotation.ApplyBaseDelta(c.base.DeltaRotation)
	}
	c.syncLocomotionTransform()

	c.locomotion.PreviousVelocity = c.locomotion.Velocity
	c.locomotion.PreviousYaw = c.locomotion.Rotation.Yaw
}

func (c *Component) updateControlRotation(timestamp float64, control game.Rotator) {
	control = control.Normalize()
	if !control.Equals(c.lastControlRotation, game.KindaSmallNumber) {
		c.lastTransformUpdate = timestamp
	}
	c.lastControlRotation = control

	var serverTime float64
	if c.role == RoleAuthority && c.listenServer {
		serverTime = c.lastTransformUpdate
	}
	c.smoothing.OnSnapshotReceived(control, serverTime)
}

// applyViewBaseDelta keeps the view relative to a rotating movement base and returns the pitch and yaw the
// base turned by. It runs before a new control rotation is received, which replaces the turned target.
func (c *Component) applyViewBaseDelta() game.Rotator {
	var delta game.Rotator
	if c.base.HasRelativeRotation {
		delta = game.Rotator{Pitch: c.base.DeltaRotation.Pitch, Yaw: c.base.DeltaRotation.Yaw}
		c.view.Rotation = c.view.Rotation.Add(delta).Normalize()
	}
	c.view.PreviousYaw = c.view.Rotation.Yaw
	return delta
}

func (c *Component) updateView(dt float32, baseDelta game.Rotator) {
	c.view.Rotation = c.smoothing.Advance(dt, baseDelta)
	c.view.YawSpeed = math32.Abs(game.NormalizeAxis(c.view.Rotation.Yaw-c.view.PreviousYaw)) / dt
	c.view.NetworkSmoothing = c.smoothing.State()
}

func (c *Component) updateLocomotion(dt float32) {
	c.locomotion.Velocity = c.movement.Velocity
	c.locomotion.Speed = game.Vec3Hz(c.locomotion.Velocity).Len()
	c.locomotion.HasSpeed = c.locomotion.Speed >= game.HasSpeedThreshold
	if c.locomotion.HasSpeed {
		c.locomotion.VelocityYaw = game.DirectionToAngleXY(c.locomotion.Velocity)
	}

	if c.data.RotateTowardsDesiredVelocity && c.role.simulates() {
		desired := c.locomotion.VelocityYaw
		if vel, ok := c.movement.ConsumeBlockedVelocity(); ok && game.Vec3Hz(vel).Len() >= game.HasSpeedThreshold {
			desired = game.DirectionToAngleXY(vel)
		}
		c.locomotion.DesiredVelocityYaw = desired
	}

	c.locomotion.Acceleration = c.locomotion.Velocity.Sub(c.locomotion.PreviousVelocity).Mul(1 / dt)
	c.locomotion.Moving = (c.locomotion.HasInput && c.locomotion.HasSpeed) || c.locomotion.Speed > c.data.MovingSpeedThreshold
}

// resolve resolves a desired state against the tree and applies the gait of the result. The tree was
// validated by NewComponent, so every level has its default.
func (c *Component) resolve(desired resolver.DesiredState) {
	res, err := resolver.Resolve(c.data.Tree, c.resolved.LocomotionMode, desired, c.conditionSnapshot())
	assert.IsTrue(err == nil, "locomotion: resolving against a validated tree: %v", err)
	prev := c.resolved
	c.resolved = res.State
	c.gait = res.Gait
	c.space = res.LocomotionMode.Space

	if ch := resolver.Changes(prev, res.State); ch != 0 {
		c.handler().HandleStateChange(StateChange{Previous: prev, Current: res.State, Levels: ch})
	}
}

func (c *Component) updateRotation(dt float32) {
	in := rotation.Input{
		DeltaTime:                    dt,
		RotationMode:                 c.resolved.RotationMode,
		Action:                       c.action,
		Moving:                       c.locomotion.Moving,
		HasInput:                     c.locomotion.HasInput,
		ViewYaw:                      c.view.Rotation.Yaw,
		ViewYawSpeed:                 c.view.YawSpeed,
		VelocityYaw:                  c.locomotion.VelocityYaw,
		DesiredVelocityYaw:           c.locomotion.DesiredVelocityYaw,
		RotateTowardsDesiredVelocity: c.data.RotateTowardsDesiredVelocity,
		InheritBaseRotation:          c.data.InheritBaseRotationInVelocityDirection,
		BaseHasRelativeLocation:      c.base.HasRelativeLocation,
		BaseHasRelativeRotation:      c.base.HasRelativeRotation,
		BaseDeltaYaw:                 c.base.DeltaRotation.Yaw,
		RotationYawSpeed:             c.rotationYawSpeed,
	}
	if c.gait != nil {
		in.RotationInterpSpeed = c.gait.RotationInterpSpeed
	}
	c.rotation.Update(c.space, in)
	c.syncLocomotionTransform()
}

func (c *Component) updateLocomotionLate(dt float32) {
	c.syncLocomotionTransform()
	if c.space == config.SpaceNone || c.action.Valid() {
		c.rotation.Retarget(c.view.Rotation.Yaw)
		c.syncLocomotionTransform()
	}
	c.locomotion.YawSpeed = game.NormalizeAxis(c.locomotion.Rotation.Yaw-c.locomotion.PreviousYaw) / dt
}

// syncLocomotionTransform copies the transform and the rotation targets into the locomotion state.
func (c *Component) syncLocomotionTransform() {
	c.locomotion.Location = c.movement.Location
	c.locomotion.Rotation = c.rotation.Rotation
	c.locomotion.TargetYaw = c.rotation.TargetYaw
	c.locomotion.SmoothTargetYaw = c.rotation.SmoothTargetYaw
	c.locomotion.ViewRelativeTargetYaw = c.rotation.ViewRelativeTargetYaw
}

// Transform returns the continuous state prediction compares and restores.
func (c *Component) Transform() prediction.Transform {
	return prediction.Transform{
		Location:   c.movement.Location,
		Velocity:   c.movement.Velocity,
		Rotation:   c.rotation.Rotation,
		Mode:       c.movement.Mode,
		CustomMode: c.movement.CustomMode,
	}
}

// SetTransform restores a transform exactly as Transform returned it, for example one received in a
// correction. The rotation targets are kept so that the character keeps turning the way it did.
func (c *Component) SetTransform(t prediction.Transform) {
	c.movement.SetLocation(t.Location)
	c.movement.SetVelocity(t.Velocity)
	prevMode, prevCustom := c.movement.Mode, c.movement.CustomMode
	c.movement.SetMovementMode(t.Mode, t.CustomMode)
	c.onMovementModeChanged(prevMode, prevCustom)
	c.rotation.Rotation = t.Rotation
	c.syncLocomotionTransform()
}

// ResolvedState ...
func (c *Component) ResolvedState() resolver.State {
	return c.resolved
}

// SetResolvedState overrides the resolved state, for example with the one of a correction. The gait
// config of the state is applied when it names a configured path.
func (c *Component) SetResolvedState(s resolver.State) {
	if !resolver.Validate(c.data.Tree, s) {
		c.log.Warnf("locomotion: ignoring resolved state %v outside of the configuration tree", s)
		return
	}
	c.resolved = s
	lm, _ := c.data.Tree.LocomotionMode(s.LocomotionMode)
	rm, _ := lm.RotationMode(s.RotationMode)
	st, _ := rm.Stance(s.Stance)
	c.gait, _ = st.Gait(s.Gait)
	c.space = lm.Space
}

// checkpoint is the state a move advances that Transform and ResolvedState do not carry. The desired
// state, the locomotion action and the yaw speed are inputs of the controlling peer and are left out.
type checkpoint struct {
	movement   movesim.MovementState
	resolved   resolver.State
	gait       *config.GaitConfig
	space      config.Space
	rotation   rotation.State
	locomotion LocomotionState
	view       ViewState
	smoothing  smoothing.Checkpoint
	base       MovementBaseState

	lastControlRotation game.Rotator
	lastTransformUpdate float64
	tick                uint64
}

// Checkpoint captures the state the next move starts from.
func (c *Component) Checkpoint() any {
	return checkpoint{
		movement:            c.movement,
		resolved:            c.resolved,
		gait:                c.gait,
		space:               c.space,
		rotation:            c.rotation,
		locomotion:          c.locomotion,
		view:                c.view,
		smoothing:           c.smoothing.Checkpoint(),
		base:                c.base,
		lastControlRotation: c.lastControlRotation,
		lastTransformUpdate: c.lastTransformUpdate,
		tick:                c.tick,
	}
}

// Restore returns the component to a state captured by Checkpoint. Values of any other type are ignored.
func (c *Component) Restore(v any) {
	cp, ok := v.(checkpoint)
	if !ok {
		c.log.Warnf("locomotion: ignoring checkpoint of type %T", v)
		return
	}
	c.movement = cp.movement
	c.resolved, c.gait, c.space = cp.resolved, cp.gait, cp.space
	c.rotation = cp.rotation
	c.locomotion = cp.locomotion
	c.view = cp.view
	c.smoothing.Restore(cp.smoothing)
	c.base = cp.base
	c.lastControlRotation, c.lastTransformUpdate = cp.lastControlRotation, cp.lastTransformUpdate
	c.tick = cp.tick
}
