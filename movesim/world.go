package movesim

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/game"
)

// Solid is an axis aligned box in a BoxWorld. A solid with a base is a movement base: characters standing
// on it follow its transform.
type Solid struct {
	Bounds cube.BBox
	Base   BaseID
}

// BaseTransform is the world transform of a movement base.
type BaseTransform struct {
	Location mgl32.Vec3
	Rotation game.Rotator
}

// BoxWorld is an Environment made of axis aligned solids. Solid tops are walkable floors.
type BoxWorld struct {
	solids []Solid

	mu    sync.RWMutex
	bases map[BaseID]BaseTransform
}

// groundExtent is the half extent of the ground solid of a flat world on the horizontal axes.
const groundExtent = 1e6

// NewBoxWorld returns a world made of the solids passed.
func NewBoxWorld(solids ...Solid) *BoxWorld {
	return &BoxWorld{solids: solids, bases: make(map[BaseID]BaseTransform)}
}

// NewFlatWorld returns a world with an infinite ground whose surface is at floorZ, plus the solids passed.
func NewFlatWorld(floorZ float32, solids ...Solid) *BoxWorld {
	ground := Solid{Bounds: cube.Box(-groundExtent, -groundExtent, floorZ-1000, groundExtent, groundExtent, floorZ)}
	return NewBoxWorld(append([]Solid{ground}, solids...)...)
}

// SetBaseTransform updates the transform of a movement base.
func (w *BoxWorld) SetBaseTransform(base BaseID, t BaseTransform) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bases[base] = t
}

// MovementBaseTransform ...
func (w *BoxWorld) MovementBaseTransform(base BaseID, _ string) (mgl32.Vec3, game.Rotator, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.bases[base]
	return t.Location, t.Rotation, ok
}

// FindFloor returns the highest solid top under location, allowing location to be up to
// MaxFloorDistance inside it.
func (w *BoxWorld) FindFloor(location mgl32.Vec3) FloorResult {
	var (
		result FloorResult
		found  bool
	)
	for _, s := range w.solids {
		lo, hi := s.Bounds.Min(), s.Bounds.Max()
		if location.X() < lo.X() || location.X() > hi.X() || location.Y() < lo.Y() || location.Y() > hi.Y() {
			continue
		}
		dist := location.Z() - hi.Z()
		if dist < -MaxFloorDistance {
			continue
		}
		if !found || dist < result.Distance {
			found = true
			result = FloorResult{Walkable: true, Normal: mgl32.Vec3{0, 0, 1}, Distance: dist, Base: s.Base}
		}
	}
	return result
}

// Sweep sweeps shape against every solid and returns the earliest blocking hit. Solids the shape already
// overlaps at from are ignored.
func (w *BoxWorld) Sweep(shape cube.BBox, from, to mgl32.Vec3) HitResult {
	delta := to.Sub(from)
	best := HitResult{Time: 1, Location: to}
	if delta.LenSqr() <= game.SmallNumber {
		return best
	}

	for _, s := range w.solids {
		// The Minkowski sum of the solid and the shape turns the sweep into a ray cast.
		expanded := cube.Box(
			s.Bounds.Min().X()-shape.Max().X(), s.Bounds.Min().Y()-shape.Max().Y(), s.Bounds.Min().Z()-shape.Max().Z(),
			s.Bounds.Max().X()-shape.Min().X(), s.Bounds.Max().Y()-shape.Min().Y(), s.Bounds.Max().Z()-shape.Min().Z(),
		)
		t, normal, ok := rayBox(expanded, from, delta)
		if !ok || (best.Blocking && t >= best.Time) {
			continue
		}
		best = HitResult{Blocking: true, Time: t, Normal: normal}
	}
	if best.Blocking {
		back := min(best.Time, sweepSkin/delta.Len())
		best.Time -= back
		best.Location = from.Add(delta.Mul(best.Time))
	}
	return best
}

// rayBox intersects the ray from + delta*t, t in [0, 1], with b using the slab method. It returns the
// entry time and the normal of the face entered through.
func rayBox(b cube.BBox, from, delta mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	var normal mgl32.Vec3
	tMin, tMax := float32(0), float32(1)
	entered := false
	lo, hi := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		if math32.Abs(delta[i]) < game.SmallNumber {
			if from[i] <= lo[i] || from[i] >= hi[i] {
				return 0, normal, false
			}
			continue
		}
		inv := 1 / delta[i]
		t1, t2 := (lo[i]-from[i])*inv, (hi[i]-from[i])*inv
		n := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			n = 1
		}
		if t1 >= tMin {
			tMin = t1
			normal = mgl32.Vec3{}
			normal[i] = n
			entered = true
		}
		tMax = min(tMax, t2)
		if tMin >= tMax {
			return 0, normal, false
		}
	}
	return tMin, normal, entered
}
