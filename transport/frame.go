// Package transport carries the frames exchanged by the peers of a character between them: move batches
// from the controlling client, acknowledgements and corrections from the server, view snapshots for
// simulated proxies and desired state changes.
package transport

import (
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movesim"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Kind identifies the type of a frame on the wire.
type Kind uint8

const (
	KindHandshake Kind = iota + 1
	KindMoveBatch
	KindAck
	KindCorrection
	KindViewSnapshot
	KindDesiredState
)

func (k Kind) String() string {
	switch k {
	case KindHandshake:
		return "handshake"
	case KindMoveBatch:
		return "move_batch"
	case KindAck:
		return "ack"
	case KindCorrection:
		return "correction"
	case KindViewSnapshot:
		return "view_snapshot"
	case KindDesiredState:
		return "desired_state"
	}
	return "unknown"
}

// Frame is a message carried by a Link.
type Frame interface {
	Kind() Kind
	Marshal(io protocol.IO)
}

// Handshake is the first frame each peer sends. Peers only resolve the same states from the same moves if
// they use the same tree.
type Handshake struct {
	Fingerprint uint64
}

func (*Handshake) Kind() Kind { return KindHandshake }

func (f *Handshake) Marshal(io protocol.IO) {
	io.Uint64(&f.Fingerprint)
}

// MoveBatch carries a move container from the controlling client to the server.
type MoveBatch struct {
	Container prediction.Container
}

func (*MoveBatch) Kind() Kind { return KindMoveBatch }

func (f *MoveBatch) Marshal(io protocol.IO) {
	prediction.MarshalContainer(io, &f.Container)
}

// Ack is the server's acknowledgement of a move batch.
type Ack struct {
	prediction.Ack
}

func (*Ack) Kind() Kind { return KindAck }

func (f *Ack) Marshal(io protocol.IO) {
	prediction.MarshalFloat64(io, &f.Timestamp)
}

// Correction is the server's correction of a move batch.
type Correction struct {
	prediction.Correction
}

func (*Correction) Kind() Kind { return KindCorrection }

func (f *Correction) Marshal(io protocol.IO) {
	prediction.MarshalCorrection(io, &f.Correction)
}

// ViewSnapshot is the state of a character the server sends to simulated proxies.
type ViewSnapshot struct {
	locomotion.ProxyUpdate
}

func (*ViewSnapshot) Kind() Kind { return KindViewSnapshot }

func (f *ViewSnapshot) Marshal(io protocol.IO) {
	prediction.MarshalFloat64(io, &f.ServerTime)
	prediction.MarshalRotator(io, &f.ViewRotation)
	io.Vec3(&f.Transform.Location)
	io.Vec3(&f.Transform.Velocity)
	prediction.MarshalRotator(io, &f.Transform.Rotation)
	mode := uint8(f.Transform.Mode)
	io.Uint8(&mode)
	f.Transform.Mode = config.MovementMode(mode)
	io.Uint8(&f.Transform.CustomMode)
	io.Vec3(&f.Acceleration)
	prediction.MarshalState(io, &f.State)
	base := uint64(f.Base)
	io.Uint64(&base)
	f.Base = movesim.BaseID(base)
	io.String(&f.Bone)
}

// DesiredState carries a desired state change from the controlling client to the server, which applies
// it between moves.
type DesiredState struct {
	locomotion.DesiredStateChange
}

func (*DesiredState) Kind() Kind { return KindDesiredState }

func (f *DesiredState) Marshal(io protocol.IO) {
	field := uint8(f.Field)
	io.Uint8(&field)
	f.Field = locomotion.DesiredField(field)
	for _, t := range []*tag.Tag{&f.Previous, &f.Current} {
		s := string(*t)
		io.String(&s)
		*t = tag.Tag(s)
	}
	state := resolver.State{RotationMode: f.State.RotationMode, Stance: f.State.Stance, Gait: f.State.Gait}
	prediction.MarshalState(io, &state)
	f.State = state.Desired()
}

// Encode encodes a frame, prefixed with its kind.
func Encode(f Frame) []byte {
	return internal.Encode(func(w *protocol.Writer) {
		kind := uint8(f.Kind())
		w.Uint8(&kind)
		f.Marshal(w)
	})
}

// Decode decodes a frame encoded by Encode. Malformed frames and frames of an unknown kind return an
// error.
func Decode(b []byte) (Frame, error) {
	if len(b) == 0 {
		return nil, oerror.New("transport: empty frame")
	}
	var f Frame
	switch Kind(b[0]) {
	case KindHandshake:
		f = &Handshake{}
	case KindMoveBatch:
		f = &MoveBatch{}
	case KindAck:
		f = &Ack{}
	case KindCorrection:
		f = &Correction{}
	case KindViewSnapshot:
		f = &ViewSnapshot{}
	case KindDesiredState:
		f = &DesiredState{}
	default:
		return nil, oerror.New("transport: unknown frame kind %d", b[0])
	}
	err := internal.Decode(b[1:], func(r *protocol.Reader) {
		f.Marshal(r)
	})
	if err != nil {
		return nil, oerror.New("transport: decoding %v frame: %v", f.Kind(), err)
	}
	return f, nil
}
