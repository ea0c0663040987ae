package config

import (
	"encoding/binary"
	"maps"
	"math"
	"slices"

	"github.com/oomph-ac/locomotion/condition"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/zeebo/xxh3"
)

// Fingerprint hashes everything in the definition that client and server must agree on: the tree, the
// movement mode mapping, the initial desired state, the moving threshold and the rotation flags. Client
// and server exchange fingerprints on connect. Network smoothing flags only affect simulated proxies and
// are left out.
func (d *Data) Fingerprint() uint64 {
	h := fingerprinter{h: xxh3.New()}
	h.tree(d.Tree)

	for _, mode := range slices.Sorted(maps.Keys(d.MovementModes)) {
		h.u32(uint32(mode))
		h.tag(d.MovementModes[mode])
	}
	h.u32(math.MaxUint32)
	for _, custom := range slices.Sorted(maps.Keys(d.CustomMovementModes)) {
		h.u32(uint32(custom))
		h.tag(d.CustomMovementModes[custom])
	}
	h.u32(math.MaxUint32)

	h.tag(d.DefaultRotationMode)
	h.tag(d.DefaultStance)
	h.tag(d.DefaultGait)
	h.f32(d.MovingSpeedThreshold)
	h.flag(d.InheritBaseRotationInVelocityDirection)
	h.flag(d.RotateTowardsDesiredVelocity)
	return h.h.Sum64()
}

// Fingerprint hashes the tree in authored order.
func (t *Tree) Fingerprint() uint64 {
	h := fingerprinter{h: xxh3.New()}
	h.tree(t)
	return h.h.Sum64()
}

func (f *fingerprinter) tree(t *Tree) {
	f.tag(t.DefaultLocomotionMode)
	for lm := t.LocomotionModes.Front(); lm != nil; lm = lm.Next() {
		f.tag(lm.Key)
		f.u32(uint32(lm.Value.Space))
		f.tag(lm.Value.DefaultRotationMode)
		f.condition(lm.Value.Condition)

		for rm := lm.Value.RotationModes.Front(); rm != nil; rm = rm.Next() {
			f.tag(rm.Key)
			f.tag(rm.Value.DefaultStance)
			f.condition(rm.Value.Condition)

			for st := rm.Value.Stances.Front(); st != nil; st = st.Next() {
				f.tag(st.Key)
				f.tag(st.Value.DefaultGait)
				f.condition(st.Value.Condition)

				for g := st.Value.Gaits.Front(); g != nil; g = g.Next() {
					f.tag(g.Key)
					f.f32(g.Value.MaxSpeed)
					f.f32(g.Value.MaxAcceleration)
					f.f32(g.Value.BrakingDeceleration)
					f.f32(g.Value.GroundFriction)
					f.f32(g.Value.JumpZPower)
					f.f32(g.Value.AirControl)
					f.f32(g.Value.RotationInterpSpeed)
					f.condition(g.Value.Condition)
				}
			}
		}
	}
}

type fingerprinter struct {
	h   *xxh3.Hasher
	buf [4]byte
}

func (f *fingerprinter) u32(v uint32) {
	binary.LittleEndian.PutUint32(f.buf[:], v)
	_, _ = f.h.Write(f.buf[:])
}

func (f *fingerprinter) flag(v bool) {
	var b uint32
	if v {
		b = 1
	}
	f.u32(b)
}

func (f *fingerprinter) f32(v float32) {
	f.u32(math.Float32bits(v))
}

func (f *fingerprinter) tag(t tag.Tag) {
	f.u32(uint32(len(t)))
	_, _ = f.h.WriteString(string(t))
}

func (f *fingerprinter) condition(c *condition.Condition) {
	if c == nil {
		f.u32(math.MaxUint32)
		return
	}
	f.u32(uint32(c.Kind))
	f.f32(c.Threshold)
	f.tag(c.Fallback)
	f.tag(tag.Tag(c.Name))
	f.u32(uint32(len(c.Children)))
	for _, child := range c.Children {
		f.condition(child)
	}
}
