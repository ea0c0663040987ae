// Package config holds the immutable locomotion configuration tree: for every locomotion mode, the
// rotation modes it allows, for every rotation mode the stances, and for every stance the gaits with
// their movement parameters. A tree is loaded once, validated, and shared read-only between all
// simulated characters.
package config

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/locomotion/condition"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/tag"
)

// Space is the coarse movement medium of a locomotion mode.
type Space uint8

const (
	SpaceNone Space = iota
	SpaceOnGround
	SpaceInAir
	SpaceInWater
)

var spaceNames = [...]string{
	SpaceNone:     "none",
	SpaceOnGround: "on_ground",
	SpaceInAir:    "in_air",
	SpaceInWater:  "in_water",
}

func (s Space) String() string {
	if int(s) < len(spaceNames) {
		return spaceNames[s]
	}
	return "unknown"
}

// ParseSpace ...
func ParseSpace(name string) (Space, error) {
	for s, n := range spaceNames {
		if n == name {
			return Space(s), nil
		}
	}
	return SpaceNone, oerror.New("config: unknown locomotion space %q", name)
}

// GaitConfig holds the movement parameters applied while a gait is active.
type GaitConfig struct {
	MaxSpeed            float32
	MaxAcceleration     float32
	BrakingDeceleration float32
	GroundFriction      float32
	JumpZPower          float32
	AirControl          float32
	RotationInterpSpeed float32

	Condition *condition.Condition
}

// NewGaitConfig returns a gait with the default friction, jump, air control and rotation values.
func NewGaitConfig(maxSpeed float32) *GaitConfig {
	return &GaitConfig{
		MaxSpeed:            maxSpeed,
		GroundFriction:      1,
		JumpZPower:          400,
		AirControl:          1,
		RotationInterpSpeed: 16,
	}
}

// StanceConfig lists the gaits allowed during a stance.
type StanceConfig struct {
	DefaultGait tag.Tag
	Gaits       *orderedmap.OrderedMap[tag.Tag, *GaitConfig]
	Condition   *condition.Condition
}

// NewStanceConfig ...
func NewStanceConfig(defaultGait tag.Tag, cond *condition.Condition) *StanceConfig {
	return &StanceConfig{
		DefaultGait: defaultGait,
		Gaits:       orderedmap.NewOrderedMap[tag.Tag, *GaitConfig](),
		Condition:   cond,
	}
}

// With adds a gait and returns the stance for chaining.
func (c *StanceConfig) With(gait tag.Tag, cfg *GaitConfig) *StanceConfig {
	c.Gaits.Set(gait, cfg)
	return c
}

// Gait ...
func (c *StanceConfig) Gait(t tag.Tag) (*GaitConfig, bool) {
	return c.Gaits.Get(t)
}

// RotationModeConfig lists the stances allowed during a rotation mode.
type RotationModeConfig struct {
	DefaultStance tag.Tag
	Stances       *orderedmap.OrderedMap[tag.Tag, *StanceConfig]
	Condition     *condition.Condition
}

// NewRotationModeConfig ...
func NewRotationModeConfig(defaultStance tag.Tag, cond *condition.Condition) *RotationModeConfig {
	return &RotationModeConfig{
		DefaultStance: defaultStance,
		Stances:       orderedmap.NewOrderedMap[tag.Tag, *StanceConfig](),
		Condition:     cond,
	}
}

// With adds a stance and returns the rotation mode for chaining.
func (c *RotationModeConfig) With(stance tag.Tag, cfg *StanceConfig) *RotationModeConfig {
	c.Stances.Set(stance, cfg)
	return c
}

// Stance ...
func (c *RotationModeConfig) Stance(t tag.Tag) (*StanceConfig, bool) {
	return c.Stances.Get(t)
}

// LocomotionModeConfig lists the rotation modes allowed during a locomotion mode.
type LocomotionModeConfig struct {
	Space               Space
	DefaultRotationMode tag.Tag
	RotationModes       *orderedmap.OrderedMap[tag.Tag, *RotationModeConfig]
	Condition           *condition.Condition
}

// NewLocomotionModeConfig ...
func NewLocomotionModeConfig(space Space, defaultRotationMode tag.Tag, cond *condition.Condition) *LocomotionModeConfig {
	return &LocomotionModeConfig{
		Space:               space,
		DefaultRotationMode: defaultRotationMode,
		RotationModes:       orderedmap.NewOrderedMap[tag.Tag, *RotationModeConfig](),
		Condition:           cond,
	}
}

// With adds a rotation mode and returns the locomotion mode for chaining.
func (c *LocomotionModeConfig) With(mode tag.Tag, cfg *RotationModeConfig) *LocomotionModeConfig {
	c.RotationModes.Set(mode, cfg)
	return c
}

// RotationMode ...
func (c *LocomotionModeConfig) RotationMode(t tag.Tag) (*RotationModeConfig, bool) {
	return c.RotationModes.Get(t)
}

// Tree is the root of the configuration hierarchy.
type Tree struct {
	DefaultLocomotionMode tag.Tag
	LocomotionModes       *orderedmap.OrderedMap[tag.Tag, *LocomotionModeConfig]
}

// NewTree ...
func NewTree(defaultLocomotionMode tag.Tag) *Tree {
	return &Tree{
		DefaultLocomotionMode: defaultLocomotionMode,
		LocomotionModes:       orderedmap.NewOrderedMap[tag.Tag, *LocomotionModeConfig](),
	}
}

// With adds a locomotion mode and returns the tree for chaining.
func (t *Tree) With(mode tag.Tag, cfg *LocomotionModeConfig) *Tree {
	t.LocomotionModes.Set(mode, cfg)
	return t
}

// LocomotionMode ...
func (t *Tree) LocomotionMode(mode tag.Tag) (*LocomotionModeConfig, bool) {
	return t.LocomotionModes.Get(mode)
}

// Contains reports whether the (locomotion mode, rotation mode, stance, gait) path exists in the tree.
func (t *Tree) Contains(locomotionMode, rotationMode, stance, gait tag.Tag) bool {
	lm, ok := t.LocomotionMode(locomotionMode)
	if !ok {
		return false
	}
	rm, ok := lm.RotationMode(rotationMode)
	if !ok {
		return false
	}
	sc, ok := rm.Stance(stance)
	if !ok {
		return false
	}
	_, ok = sc.Gait(gait)
	return ok
}
