package resolver

import "github.com/oomph-ac/locomotion/config"

// Change is a set of levels whose accepted state changed between two resolutions.
type Change uint8

const (
	ChangeLocomotionMode Change = 1 << iota
	ChangeRotationMode
	ChangeStance
	ChangeGait
)

// Changes compares two resolved states level by level.
func Changes(prev, next State) Change {
	var c Change
	if prev.LocomotionMode != next.LocomotionMode {
		c |= ChangeLocomotionMode
	}
	if prev.RotationMode != next.RotationMode {
		c |= ChangeRotationMode
	}
	if prev.Stance != next.Stance {
		c |= ChangeStance
	}
	if prev.Gait != next.Gait {
		c |= ChangeGait
	}
	return c
}

// Has ...
func (c Change) Has(o Change) bool {
	return c&o != 0
}

// RefreshGaitConfigs reports whether the active gait parameters need to be reapplied. Any accepted
// level change may select a different gait config.
func (c Change) RefreshGaitConfigs() bool {
	return c != 0
}

// Validate is a bounds check of a state received from a peer: it reports whether every tag of the
// state names a configured path in the tree. It does not evaluate conditions.
func Validate(tree *config.Tree, s State) bool {
	return tree.Contains(s.LocomotionMode, s.RotationMode, s.Stance, s.Gait)
}
