package prediction

import (
	"math"

	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/resolver"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Defaults the discrete tags of a move are encoded against. A tag equal to its default is sent as a
// single false byte.
const (
	DefaultRotationMode = tag.RotationModeViewDirection
	DefaultStance       = tag.StanceStanding
	DefaultGait         = tag.GaitWalking
)

const (
	containerHasNew uint8 = 1 << iota
	containerHasPending
	containerHasOld
)

// Container is the batch of moves a client sends in a single frame.
type Container struct {
	// New is the move performed most recently.
	New *Move
	// Pending is a move that was held back for combining and could not be combined.
	Pending *Move
	// Old is the oldest unacknowledged important move, resent in case it was lost.
	Old *Move
}

// Moves yields the moves of the container in the order they were performed.
func (c *Container) Moves() []*Move {
	moves := make([]*Move, 0, 3)
	for _, m := range []*Move{c.Old, c.Pending, c.New} {
		if m != nil {
			moves = append(moves, m)
		}
	}
	return moves
}

// Ack acknowledges every move up to and including Timestamp.
type Ack struct {
	Timestamp float64
}

// Correction carries the server's state after the move with the given timestamp.
type Correction struct {
	Timestamp float64
	Transform Transform
	State     resolver.State
}

// EncodeContainer ...
func EncodeContainer(c *Container) []byte {
	// Encoding normalises invalid tags of the moves, which must not leak into the caller's moves.
	cp := Container{}
	for _, p := range []struct{ dst, src **Move }{{&cp.Old, &c.Old}, {&cp.Pending, &c.Pending}, {&cp.New, &c.New}} {
		if *p.src != nil {
			m := **p.src
			*p.dst = &m
		}
	}
	return internal.Encode(func(w *protocol.Writer) {
		MarshalContainer(w, &cp)
	})
}

// DecodeContainer decodes a container. A truncated or malformed frame fails as a whole. A discrete tag
// that does not name a tag of its level decodes to the level's default.
func DecodeContainer(b []byte) (*Container, error) {
	c := &Container{}
	err := internal.Decode(b, func(r *protocol.Reader) {
		MarshalContainer(r, c)
	})
	if err != nil {
		return nil, oerror.New("prediction: decoding move container: %v", err)
	}
	return c, nil
}

// MarshalContainer encodes or decodes a container. A flag byte tells which of its moves are present.
func MarshalContainer(io protocol.IO, c *Container) {
	var flags uint8
	if c.New != nil {
		flags |= containerHasNew
	}
	if c.Pending != nil {
		flags |= containerHasPending
	}
	if c.Old != nil {
		flags |= containerHasOld
	}
	io.Uint8(&flags)
	for _, p := range []struct {
		flag uint8
		m    **Move
	}{{containerHasOld, &c.Old}, {containerHasPending, &c.Pending}, {containerHasNew, &c.New}} {
		if flags&p.flag == 0 {
			continue
		}
		if *p.m == nil {
			*p.m = &Move{}
		}
		MarshalMove(io, *p.m)
	}
}

// EncodeAck ...
func EncodeAck(a Ack) []byte {
	return internal.Encode(func(w *protocol.Writer) {
		MarshalFloat64(w, &a.Timestamp)
	})
}

// DecodeAck ...
func DecodeAck(b []byte) (Ack, error) {
	var a Ack
	err := internal.Decode(b, func(r *protocol.Reader) {
		MarshalFloat64(r, &a.Timestamp)
	})
	return a, err
}

// EncodeCorrection ...
func EncodeCorrection(c Correction) []byte {
	return internal.Encode(func(w *protocol.Writer) {
		MarshalCorrection(w, &c)
	})
}

// DecodeCorrection ...
func DecodeCorrection(b []byte) (Correction, error) {
	var c Correction
	err := internal.Decode(b, func(r *protocol.Reader) {
		MarshalCorrection(r, &c)
	})
	return c, err
}

// MarshalState encodes or decodes a resolved state.
func MarshalState(io protocol.IO, s *resolver.State) {
	for _, t := range []*tag.Tag{&s.LocomotionMode, &s.RotationMode, &s.Stance, &s.Gait} {
		str := string(*t)
		io.String(&str)
		*t = tag.Tag(str)
	}
}

// MarshalRotator encodes or decodes a rotator.
func MarshalRotator(io protocol.IO, r *game.Rotator) {
	io.Float32(&r.Pitch)
	io.Float32(&r.Yaw)
	io.Float32(&r.Roll)
}

// MarshalCorrection encodes or decodes a correction.
func MarshalCorrection(io protocol.IO, c *Correction) {
	MarshalFloat64(io, &c.Timestamp)
	io.Vec3(&c.Transform.Location)
	io.Vec3(&c.Transform.Velocity)
	MarshalRotator(io, &c.Transform.Rotation)

	mode := uint8(c.Transform.Mode)
	io.Uint8(&mode)
	c.Transform.Mode = config.MovementMode(mode)
	io.Uint8(&c.Transform.CustomMode)

	MarshalState(io, &c.State)
}

// MarshalMove encodes or decodes the part of a move that is sent to the server.
func MarshalMove(io protocol.IO, m *Move) {
	MarshalFloat64(io, &m.Timestamp)
	io.Float32(&m.DeltaTime)
	io.Vec3(&m.Acceleration)
	io.Bool(&m.Jump)
	MarshalRotator(io, &m.ControlRotation)

	optionalTag(io, &m.State.RotationMode, DefaultRotationMode, tag.RotationMode)
	optionalTag(io, &m.State.Stance, DefaultStance, tag.Stance)
	optionalTag(io, &m.State.Gait, DefaultGait, tag.Gait)

	io.Vec3(&m.End.Location)
}

// optionalTag encodes a presence flag, followed by the tag only when it differs from def. A decoded tag
// outside parent's hierarchy is replaced by def.
func optionalTag(io protocol.IO, t *tag.Tag, def, parent tag.Tag) {
	present := t.Valid() && *t != def
	io.Bool(&present)
	if !present {
		*t = def
		return
	}
	str := string(*t)
	io.String(&str)
	if decoded := tag.Tag(str); decoded != parent && decoded.MatchesTag(parent) {
		*t = decoded
	} else {
		*t = def
	}
}

// MarshalFloat64 encodes or decodes a float64 by its IEEE 754 bits.
func MarshalFloat64(io protocol.IO, x *float64) {
	bits := math.Float64bits(*x)
	io.Uint64(&bits)
	*x = math.Float64frombits(bits)
}
