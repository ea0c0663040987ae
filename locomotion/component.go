// Package locomotion runs the per-character locomotion pipeline: movement base tracking, input, view
// smoothing, locomotion state, state resolution and rotation, in that order, once per move. A Component
// implements prediction.Simulation, so the same pipeline runs on the predicting client, on the validating
// server and during replay.
package locomotion

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/condition"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/movesim"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/rotation"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/oomph-ac/locomotion/smoothing"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Options configures a new Component.
type Options struct {
	// Data is the locomotion definition. config.Default() is used if nil.
	Data     *config.Data
	Settings settings.Settings
	Env      movesim.Environment
	Role     Role

	// ListenServer marks an authority that also presents the character locally. Its view is smoothed
	// like that of a simulated proxy.
	ListenServer bool
	// IgnoreBaseRotation stops the character from turning with the movement base it stands on.
	IgnoreBaseRotation bool

	Location     mgl32.Vec3
	Rotation     game.Rotator
	MovementMode config.MovementMode

	Log     *logrus.Logger
	Handler Handler
}

// Component is the locomotion of a single character. A Component must only be ticked from one goroutine
// at a time. Snapshot may be called from any goroutine.
type Component struct {
	data *config.Data
	role Role
	log  *logrus.Logger

	hMu sync.RWMutex
	h   Handler

	sim      *movesim.Simulator
	movement movesim.MovementState

	desired  resolver.DesiredState
	resolved resolver.State
	gait     *config.GaitConfig
	space    config.Space

	action           tag.Tag
	rotationYawSpeed float32

	ignoreBaseRotation bool
	listenServer       bool

	rotation   rotation.State
	locomotion LocomotionState
	view       ViewState
	smoothing  *smoothing.View
	base       MovementBaseState

	// proxyBase and proxyBone are the replicated movement base of a simulated proxy.
	proxyBase movesim.BaseID
	proxyBone string

	lastControlRotation game.Rotator
	lastTransformUpdate float64

	tick     uint64
	snapshot *atomic.Pointer[Snapshot]
}

// NewComponent returns a component with the state resolved from the default desired state of the data.
func NewComponent(opts Options) (*Component, error) {
	data := opts.Data
	if data == nil {
		data = config.Default()
	}
	mode := opts.MovementMode
	if mode == config.MovementModeNone {
		mode = config.MovementModeWalking
	}
	if err := config.Validate(data.Tree); err != nil {
		return nil, fmt.Errorf("locomotion: %w", err)
	}
	if !data.LocomotionModeFor(mode, 0).Valid() {
		return nil, oerror.New("locomotion: movement mode %v maps to no locomotion mode", mode)
	}

	sim := movesim.NewSimulator(opts.Env)
	sim.Options = opts.Settings.SimulationOptions()
	log := internal.Logger(opts.Log)
	if opts.Settings.Debug.TraceSimulation {
		sim.Options.Debugf = log.Debugf
	}
	h := opts.Handler
	if h == nil {
		h = NopHandler{}
	}

	smoothingEnabled := false
	switch opts.Role {
	case RoleSimulatedProxy:
		smoothingEnabled = data.EnableNetworkSmoothing
	case RoleAuthority:
		smoothingEnabled = opts.ListenServer && data.EnableListenServerNetworkSmoothing
	}

	c := &Component{
		data:               data,
		role:               opts.Role,
		log:                log,
		h:                  h,
		sim:                sim,
		movement:           movesim.MovementState{Location: opts.Location, LastLocation: opts.Location, Mode: mode},
		desired:            resolver.DesiredState{RotationMode: data.DefaultRotationMode, Stance: data.DefaultStance, Gait: data.DefaultGait},
		ignoreBaseRotation: opts.IgnoreBaseRotation,
		listenServer:       opts.ListenServer,
		smoothing:          smoothing.NewView(opts.Settings, smoothingEnabled, opts.ListenServer),
		snapshot:           atomic.NewPointer[Snapshot](nil),
	}
	c.resolved.LocomotionMode = data.LocomotionModeFor(mode, 0)
	c.rotation.Reset(opts.Rotation, opts.Rotation.Yaw)
	c.view.Rotation = opts.Rotation.Normalize()
	c.smoothing.OnSnapshotReceived(c.view.Rotation, 0)
	c.lastControlRotation = c.view.Rotation

	c.resolve(c.desired)
	c.syncLocomotionTransform()
	c.publish()
	return c, nil
}

// Handle sets the handler of the component. Nil resets it to a NopHandler.
func (c *Component) Handle(h Handler) {
	c.hMu.Lock()
	defer c.hMu.Unlock()

	if h == nil {
		h = NopHandler{}
	}
	c.h = h
}

func (c *Component) handler() Handler {
	c.hMu.RLock()
	defer c.hMu.RUnlock()
	return c.h
}

// Role ...
func (c *Component) Role() Role {
	return c.role
}

// Data returns the locomotion definition of the component.
func (c *Component) Data() *config.Data {
	return c.data
}

// Snapshot returns the state published by the last tick.
func (c *Component) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// DesiredState ...
func (c *Component) DesiredState() resolver.DesiredState {
	return c.desired
}

// GaitConfig returns the parameters of the resolved gait.
func (c *Component) GaitConfig() *config.GaitConfig {
	return c.gait
}

// SetDesiredRotationMode requests a rotation mode. The returned change is also passed to the handler; false
// is returned if the rotation mode was already desired.
func (c *Component) SetDesiredRotationMode(t tag.Tag) (DesiredStateChange, bool) {
	return c.setDesired(DesiredRotationMode, c.desired.RotationMode, t)
}

// SetDesiredStance requests a stance.
func (c *Component) SetDesiredStance(t tag.Tag) (DesiredStateChange, bool) {
	return c.setDesired(DesiredStance, c.desired.Stance, t)
}

// SetDesiredGait requests a gait.
func (c *Component) SetDesiredGait(t tag.Tag) (DesiredStateChange, bool) {
	return c.setDesired(DesiredGait, c.desired.Gait, t)
}

// ApplyDesiredStateChange applies a change received from the controlling peer.
func (c *Component) ApplyDesiredStateChange(ch DesiredStateChange) bool {
	var prev tag.Tag
	switch ch.Field {
	case DesiredRotationMode:
		prev = c.desired.RotationMode
	case DesiredStance:
		prev = c.desired.Stance
	case DesiredGait:
		prev = c.desired.Gait
	default:
		return false
	}
	_, ok := c.setDesired(ch.Field, prev, ch.Current)
	return ok
}

func (c *Component) setDesired(field DesiredField, prev, t tag.Tag) (DesiredStateChange, bool) {
	if prev == t {
		return DesiredStateChange{}, false
	}
	ch := DesiredStateChange{Field: field, Previous: prev, Current: t}
	ch.Apply(&c.desired)
	ch.State = c.desired

	c.handler().HandleDesiredStateChange(ch)
	return ch, true
}

// SetLocomotionAction sets the active locomotion action. Rotation is not updated while an action is
// active. tag.None clears it.
func (c *Component) SetLocomotionAction(t tag.Tag) {
	if c.action == t {
		return
	}
	prev := c.action
	c.action = t
	c.handler().HandleLocomotionActionChange(prev, t)
}

// LocomotionAction ...
func (c *Component) LocomotionAction() tag.Tag {
	return c.action
}

// SetRotationYawSpeed sets the externally driven yaw speed, in degrees per second, applied while the
// character stands on the ground.
func (c *Component) SetRotationYawSpeed(speed float32) {
	c.rotationYawSpeed = speed
}

// SetMovementMode changes the movement mode if the locomotion mode it maps to may be entered. It reports
// whether the mode was changed.
func (c *Component) SetMovementMode(mode config.MovementMode, custom uint8) bool {
	if !c.data.CanChangeMovementModeTo(mode, custom, c.conditionSnapshot()) {
		return false
	}
	prevMode, prevCustom := c.movement.Mode, c.movement.CustomMode
	c.movement.SetMovementMode(mode, custom)
	c.onMovementModeChanged(prevMode, prevCustom)
	return true
}

// CanChangeMovementModeTo reports whether SetMovementMode would accept the mode.
func (c *Component) CanChangeMovementModeTo(mode config.MovementMode, custom uint8) bool {
	return c.data.CanChangeMovementModeTo(mode, custom, c.conditionSnapshot())
}

// MovementMode ...
func (c *Component) MovementMode() (config.MovementMode, uint8) {
	return c.movement.Mode, c.movement.CustomMode
}

func (c *Component) onMovementModeChanged(prevMode config.MovementMode, prevCustom uint8) {
	if prevMode == c.movement.Mode && prevCustom == c.movement.CustomMode {
		return
	}
	lm := c.data.LocomotionModeFor(c.movement.Mode, c.movement.CustomMode)
	if !lm.Valid() {
		c.log.Warnf("locomotion: no locomotion mode matches movement mode %v (%d)", c.movement.Mode, c.movement.CustomMode)
		return
	}
	c.resolved.LocomotionMode = lm
}

func (c *Component) conditionSnapshot() condition.Snapshot {
	return condition.Snapshot{
		LocomotionMode: c.resolved.LocomotionMode,
		RotationMode:   c.resolved.RotationMode,
		Stance:         c.resolved.Stance,
		Gait:           c.resolved.Gait,
		Speed:          c.locomotion.Speed,
		HasInput:       c.locomotion.HasInput,
		Moving:         c.locomotion.Moving,
		InputYaw:       c.locomotion.InputYaw,
		ViewYaw:        c.view.Rotation.Yaw,
	}
}

func (c *Component) publish() {
	s := &Snapshot{
		Tick:         c.tick,
		Role:         c.role,
		Desired:      c.desired,
		Resolved:     c.resolved,
		Action:       c.action,
		MovementMode: c.movement.Mode,
		CustomMode:   c.movement.CustomMode,
		Space:        c.space,
		Locomotion:   c.locomotion,
		View:         c.view,
		MovementBase: c.base,
	}
	s.View.NetworkSmoothing = c.smoothing.State()
	c.snapshot.Store(s)
}
