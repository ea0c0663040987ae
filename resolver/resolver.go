// Package resolver turns a desired locomotion state into the allowed one by walking the configuration
// tree level by level, evaluating conditions and following their suggested fallbacks.
package resolver

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/locomotion/condition"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/tag"
)

// MaxFallbackDepth bounds the number of fallbacks followed on a single level. Past it, the level's
// default is used, so resolution terminates even on a tree whose fallbacks form a cycle.
const MaxFallbackDepth = 8

// DesiredState is the state requested by the controlling peer.
type DesiredState struct {
	RotationMode tag.Tag
	Stance       tag.Tag
	Gait         tag.Tag
}

// State is a fully resolved locomotion state.
type State struct {
	LocomotionMode tag.Tag
	RotationMode   tag.Tag
	Stance         tag.Tag
	Gait           tag.Tag
}

// Desired returns the discrete part of the state as a desired state.
func (s State) Desired() DesiredState {
	return DesiredState{RotationMode: s.RotationMode, Stance: s.Stance, Gait: s.Gait}
}

// Result is the outcome of a resolution: the allowed state and the configs that were selected for it.
type Result struct {
	State State

	LocomotionMode *config.LocomotionModeConfig
	RotationMode   *config.RotationModeConfig
	Stance         *config.StanceConfig
	Gait           *config.GaitConfig
}

// Resolve resolves desired against the tree for the given locomotion mode. The locomotion mode is
// driven by movement mode changes rather than by the controlling peer, so it is looked up directly: if it
// is unknown or its condition fails, the tree's default locomotion mode is used. Every lower level
// follows condition fallbacks before using its default.
//
// Resolve is a pure function of its arguments. The snapshot passed to the conditions of a level carries
// the states already resolved on the levels above it. An error is only returned for a tree whose
// defaults are missing, which Validate rejects at load time.
func Resolve(tree *config.Tree, locomotionMode tag.Tag, desired DesiredState, s condition.Snapshot) (Result, error) {
	var res Result

	lm, ok := tree.LocomotionMode(locomotionMode)
	if !ok || !lm.Condition.CanEnter(s) {
		locomotionMode = tree.DefaultLocomotionMode
		if lm, ok = tree.LocomotionMode(locomotionMode); !ok {
			return res, missingDefault(tree.DefaultLocomotionMode)
		}
	}
	res.State.LocomotionMode, res.LocomotionMode = locomotionMode, lm
	s.LocomotionMode = locomotionMode

	var err error
	res.State.RotationMode, res.RotationMode, err = AllowedRotationMode(lm, desired.RotationMode, s)
	if err != nil {
		return res, err
	}
	s.RotationMode = res.State.RotationMode

	res.State.Stance, res.Stance, err = AllowedStance(res.RotationMode, desired.Stance, s)
	if err != nil {
		return res, err
	}
	s.Stance = res.State.Stance

	res.State.Gait, res.Gait, err = AllowedGait(res.Stance, desired.Gait, s)
	return res, err
}

// AllowedRotationMode resolves a single rotation mode under a locomotion mode config.
func AllowedRotationMode(lm *config.LocomotionModeConfig, desired tag.Tag, s condition.Snapshot) (tag.Tag, *config.RotationModeConfig, error) {
	return allowed(lm.RotationModes, lm.DefaultRotationMode, desired, s, rotationModeCondition)
}

// AllowedStance resolves a single stance under a rotation mode config.
func AllowedStance(rm *config.RotationModeConfig, desired tag.Tag, s condition.Snapshot) (tag.Tag, *config.StanceConfig, error) {
	return allowed(rm.Stances, rm.DefaultStance, desired, s, stanceCondition)
}

// AllowedGait resolves a single gait under a stance config.
func AllowedGait(st *config.StanceConfig, desired tag.Tag, s condition.Snapshot) (tag.Tag, *config.GaitConfig, error) {
	return allowed(st.Gaits, st.DefaultGait, desired, s, gaitCondition)
}

func allowed[V any](level *orderedmap.OrderedMap[tag.Tag, V], def, desired tag.Tag, s condition.Snapshot, cond func(V) *condition.Condition) (tag.Tag, V, error) {
	current := desired
	for depth := 0; depth < MaxFallbackDepth && current.Valid(); depth++ {
		v, ok := level.Get(current)
		if !ok {
			break
		}
		c := cond(v)
		if c == nil || c.CanEnter(s) {
			return current, v, nil
		}
		current = c.SuggestedFallback()
	}

	v, ok := level.Get(def)
	if !ok {
		return tag.None, v, missingDefault(def)
	}
	return def, v, nil
}

func missingDefault(t tag.Tag) error {
	return &config.Error{Path: t.String(), Err: config.ErrMissingDefault}
}

func rotationModeCondition(c *config.RotationModeConfig) *condition.Condition { return c.Condition }
func stanceCondition(c *config.StanceConfig) *condition.Condition { return c.Condition }
func gaitCondition(c *config.GaitConfig) *condition.Condition { return c.Condition }
