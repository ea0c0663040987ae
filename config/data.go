package config

import (
	"github.com/oomph-ac/locomotion/condition"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/tag"
)

// MovementMode identifies the movement process the physics collaborator is running.
type MovementMode uint8

const (
	MovementModeNone MovementMode = iota
	MovementModeWalking
	MovementModeNavWalking
	MovementModeFalling
	MovementModeSwimming
	MovementModeFlying
	MovementModeCustom
)

var movementModeNames = [...]string{
	MovementModeNone:       "none",
	MovementModeWalking:    "walking",
	MovementModeNavWalking: "nav_walking",
	MovementModeFalling:    "falling",
	MovementModeSwimming:   "swimming",
	MovementModeFlying:     "flying",
	MovementModeCustom:     "custom",
}

func (m MovementMode) String() string {
	if int(m) < len(movementModeNames) {
		return movementModeNames[m]
	}
	return "unknown"
}

// ParseMovementMode ...
func ParseMovementMode(name string) (MovementMode, error) {
	for m, n := range movementModeNames {
		if n == name {
			return MovementMode(m), nil
		}
	}
	return MovementModeNone, oerror.New("config: unknown movement mode %q", name)
}

// Data is the full locomotion definition of a character: the configuration tree, the mapping between
// movement modes and locomotion modes, the initial desired state and the behaviour flags.
type Data struct {
	Tree *Tree

	MovementModes       map[MovementMode]tag.Tag
	CustomMovementModes map[uint8]tag.Tag

	DefaultRotationMode tag.Tag
	DefaultStance       tag.Tag
	DefaultGait         tag.Tag

	// MovingSpeedThreshold is the speed above which the character counts as moving without input.
	MovingSpeedThreshold float32

	InheritBaseRotationInVelocityDirection bool
	RotateTowardsDesiredVelocity           bool

	EnableNetworkSmoothing             bool
	EnableListenServerNetworkSmoothing bool
}

// LocomotionModeFor converts a movement mode to the locomotion mode it maps to. tag.None is returned for
// unmapped modes.
func (d *Data) LocomotionModeFor(mode MovementMode, custom uint8) tag.Tag {
	if mode == MovementModeCustom {
		return d.CustomMovementModes[custom]
	}
	return d.MovementModes[mode]
}

// MovementModeFor converts a locomotion mode back to a movement mode. A locomotion mode may map from
// several movement modes, in which case the lowest one wins.
func (d *Data) MovementModeFor(locomotionMode tag.Tag) (MovementMode, uint8) {
	for m := MovementModeWalking; m < MovementModeCustom; m++ {
		if t, ok := d.MovementModes[m]; ok && t == locomotionMode {
			return m, 0
		}
	}
	found, custom := false, uint8(0)
	for c, t := range d.CustomMovementModes {
		if t == locomotionMode && (!found || c < custom) {
			found, custom = true, c
		}
	}
	if found {
		return MovementModeCustom, custom
	}
	return MovementModeNone, 0
}

// CanChangeMovementModeTo reports whether the locomotion mode mapped from the movement mode may be
// entered. Unmapped movement modes may never be entered.
func (d *Data) CanChangeMovementModeTo(mode MovementMode, custom uint8, s condition.Snapshot) bool {
	lm := d.LocomotionModeFor(mode, custom)
	if !lm.Valid() {
		return false
	}
	cfg, ok := d.Tree.LocomotionMode(lm)
	if !ok {
		return false
	}
	return cfg.Condition.CanEnter(s)
}
