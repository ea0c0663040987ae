// Package event defines the events a session records and their binary encoding. Replaying the events of
// a recording in order reproduces the session.
package event

import (
	"github.com/oomph-ac/locomotion/assert"
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

const (
	_ = iota
	IDMove
	IDAck
	IDCorrection
	IDLocomotionAction
	IDMovementMode
	IDRotationYawSpeed
	IDDesiredState
)

// Event is something that happened to a session at a client time.
type Event interface {
	ID() byte
	Time() float64
	// Marshal encodes or decodes the payload of the event.
	Marshal(io protocol.IO)

	base() *NopEvent
}

// NopEvent holds the time of an event. It is embedded by every event.
type NopEvent struct {
	EvTime float64
}

// Time ...
func (n NopEvent) Time() float64 {
	return n.EvTime
}

func (n *NopEvent) base() *NopEvent {
	return n
}

// SetTime sets the time of ev.
func SetTime(ev Event, t float64) {
	ev.base().EvTime = t
}

// New returns an empty event of the given ID.
func New(id byte) (Event, error) {
	switch id {
	case IDMove:
		return &MoveEvent{}, nil
	case IDAck:
		return &AckEvent{}, nil
	case IDCorrection:
		return &CorrectionEvent{}, nil
	case IDLocomotionAction:
		return &LocomotionActionEvent{}, nil
	case IDMovementMode:
		return &MovementModeEvent{}, nil
	case IDRotationYawSpeed:
		return &RotationYawSpeedEvent{}, nil
	case IDDesiredState:
		return &DesiredStateEvent{}, nil
	}
	return nil, oerror.New("unknown event: %d", id)
}

// Encode encodes a single event with its header.
func Encode(ev Event) []byte {
	return internal.Encode(func(w *protocol.Writer) {
		marshalEvent(w, ev)
	})
}

// Decode decodes a single event encoded by Encode.
func Decode(b []byte) (ev Event, err error) {
	err = internal.Decode(b, func(r *protocol.Reader) {
		ev = unmarshalEvent(r)
	})
	if err != nil {
		return nil, oerror.New("error decoding event: %v", err)
	}
	return ev, nil
}

// EncodeEvents encodes events in order, prefixed with their count.
func EncodeEvents(events []Event) []byte {
	return internal.Encode(func(w *protocol.Writer) {
		count := uint32(len(events))
		w.Varuint32(&count)
		for _, ev := range events {
			marshalEvent(w, ev)
		}
	})
}

// DecodeEvents decodes events encoded by EncodeEvents.
func DecodeEvents(b []byte) (events []Event, err error) {
	err = internal.Decode(b, func(r *protocol.Reader) {
		var count uint32
		r.Varuint32(&count)
		// Every event takes at least its ID and time.
		assert.IsTrue(int(count) <= len(b)/9, "%d events cannot fit in %d bytes", count, len(b))
		events = make([]Event, 0, count)
		for i := uint32(0); i < count; i++ {
			events = append(events, unmarshalEvent(r))
		}
	})
	if err != nil {
		return nil, oerror.New("error decoding events: %v", err)
	}
	return events, nil
}

func marshalEvent(w *protocol.Writer, ev Event) {
	id := ev.ID()
	w.Uint8(&id)
	t := ev.Time()
	prediction.MarshalFloat64(w, &t)
	ev.Marshal(w)
}

func unmarshalEvent(r *protocol.Reader) Event {
	var id uint8
	r.Uint8(&id)
	ev, err := New(id)
	if err != nil {
		panic(err)
	}
	prediction.MarshalFloat64(r, &ev.base().EvTime)
	ev.Marshal(r)
	return ev
}
