package event

import (
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// MoveEvent is a move handed to the client predictor. Only its input is recorded.
type MoveEvent struct {
	NopEvent

	Move prediction.Move
}

func (*MoveEvent) ID() byte {
	return IDMove
}

func (e *MoveEvent) Marshal(io protocol.IO) {
	prediction.MarshalMove(io, &e.Move)
}

// AckEvent is an acknowledgement received from the server.
type AckEvent struct {
	NopEvent

	Ack prediction.Ack
}

func (*AckEvent) ID() byte {
	return IDAck
}

func (e *AckEvent) Marshal(io protocol.IO) {
	prediction.MarshalFloat64(io, &e.Ack.Timestamp)
}

// CorrectionEvent is a correction received from the server.
type CorrectionEvent struct {
	NopEvent

	Correction prediction.Correction
}

func (*CorrectionEvent) ID() byte {
	return IDCorrection
}

func (e *CorrectionEvent) Marshal(io protocol.IO) {
	prediction.MarshalCorrection(io, &e.Correction)
}

// LocomotionActionEvent is a change of the active locomotion action.
type LocomotionActionEvent struct {
	NopEvent

	Action tag.Tag
}

func (*LocomotionActionEvent) ID() byte {
	return IDLocomotionAction
}

func (e *LocomotionActionEvent) Marshal(io protocol.IO) {
	marshalTag(io, &e.Action)
}

// MovementModeEvent is an externally requested movement mode change.
type MovementModeEvent struct {
	NopEvent

	Mode       config.MovementMode
	CustomMode uint8
}

func (*MovementModeEvent) ID() byte {
	return IDMovementMode
}

func (e *MovementModeEvent) Marshal(io protocol.IO) {
	mode := uint8(e.Mode)
	io.Uint8(&mode)
	e.Mode = config.MovementMode(mode)
	io.Uint8(&e.CustomMode)
}

// RotationYawSpeedEvent is a change of the externally driven yaw speed.
type RotationYawSpeedEvent struct {
	NopEvent

	Speed float32
}

func (*RotationYawSpeedEvent) ID() byte {
	return IDRotationYawSpeed
}

func (e *RotationYawSpeedEvent) Marshal(io protocol.IO) {
	io.Float32(&e.Speed)
}

// DesiredStateEvent is a change of a part of the desired state.
type DesiredStateEvent struct {
	NopEvent

	Field   locomotion.DesiredField
	Current tag.Tag
}

func (*DesiredStateEvent) ID() byte {
	return IDDesiredState
}

func (e *DesiredStateEvent) Marshal(io protocol.IO) {
	field := uint8(e.Field)
	io.Uint8(&field)
	e.Field = locomotion.DesiredField(field)
	marshalTag(io, &e.Current)
}

func marshalTag(io protocol.IO, t *tag.Tag) {
	s := string(*t)
	io.String(&s)
	*t = tag.Tag(s)
}
