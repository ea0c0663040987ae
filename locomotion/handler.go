package locomotion

import (
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/tag"
)

// DesiredField names the part of the desired state a change applies to.
type DesiredField byte

const (
	DesiredRotationMode DesiredField = iota
	DesiredStance
	DesiredGait
)

func (f DesiredField) String() string {
	switch f {
	case DesiredRotationMode:
		return "rotation_mode"
	case DesiredStance:
		return "stance"
	case DesiredGait:
		return "gait"
	}
	return "unknown"
}

// DesiredStateChange is emitted when the controlling peer changes a part of its desired state. An
// autonomous proxy forwards these to the server so that it can resolve the same state between moves.
type DesiredStateChange struct {
	Field    DesiredField
	Previous tag.Tag
	Current  tag.Tag
	// State is the full desired state after the change.
	State resolver.DesiredState
}

// Apply sets the changed field on d.
func (c DesiredStateChange) Apply(d *resolver.DesiredState) {
	switch c.Field {
	case DesiredRotationMode:
		d.RotationMode = c.Current
	case DesiredStance:
		d.Stance = c.Current
	case DesiredGait:
		d.Gait = c.Current
	}
}

// StateChange is emitted when the resolved state of a component changes.
type StateChange struct {
	Previous resolver.State
	Current  resolver.State
	Levels   resolver.Change
}

// Handler handles the notifications of a component. Handlers are called on the goroutine ticking the
// component.
type Handler interface {
	HandleDesiredStateChange(c DesiredStateChange)
	HandleStateChange(c StateChange)
	HandleLocomotionActionChange(previous, current tag.Tag)
}

// NopHandler implements Handler and does nothing.
type NopHandler struct{}

func (NopHandler) HandleDesiredStateChange(DesiredStateChange) {}
func (NopHandler) HandleStateChange(StateChange) {}
func (NopHandler) HandleLocomotionActionChange(tag.Tag, tag.Tag) {}
