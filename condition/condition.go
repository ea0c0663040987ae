// Package condition implements the predicates that gate transitions between locomotion states. A
// Condition is a tagged variant: its Kind selects the check and the remaining fields carry the data the
// check needs.
package condition

import (
	"github.com/chewxy/math32"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/tag"
)

// Kind is the kind of check a Condition performs.
type Kind uint8

const (
	KindAlways Kind = iota
	KindNever
	KindMovingDirection
	KindMaxSpeed
	KindRequireInput
	KindAll
	KindFunc
)

var kindNames = [...]string{
	KindAlways:          "always",
	KindNever:           "never",
	KindMovingDirection: "moving_direction",
	KindMaxSpeed:        "max_speed",
	KindRequireInput:    "require_input",
	KindAll:             "all",
	KindFunc:            "func",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind returns the Kind with the given name. Func conditions can only be built in code and are
// therefore not parsable.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name && Kind(k) != KindFunc {
			return Kind(k), nil
		}
	}
	return 0, oerror.New("condition: unknown kind %q", name)
}

// DefaultViewRelativeAngleThreshold is the threshold used by MovingDirection conditions that do not set
// one.
const DefaultViewRelativeAngleThreshold = float32(50)

// Snapshot is the read-only view of a character that conditions are evaluated against.
type Snapshot struct {
	LocomotionMode tag.Tag
	RotationMode   tag.Tag
	Stance         tag.Tag
	Gait           tag.Tag

	Speed    float32
	HasInput bool
	Moving   bool
	InputYaw float32
	ViewYaw  float32
}

// Condition decides whether a state may be entered and which state to try instead when it may not.
type Condition struct {
	Kind Kind
	// Threshold is the angle for KindMovingDirection and the speed for KindMaxSpeed.
	Threshold float32
	// Fallback is the state suggested when the condition fails. It may be tag.None.
	Fallback tag.Tag
	// Children are evaluated by KindAll.
	Children []*Condition

	// Name identifies a KindFunc condition in logs and fingerprints.
	Name string
	Fn   func(s Snapshot) bool
}

// CanEnter evaluates the condition. A nil condition always passes.
func (c *Condition) CanEnter(s Snapshot) bool {
	if c == nil {
		return true
	}
	switch c.Kind {
	case KindAlways:
		return true
	case KindNever:
		return false
	case KindMovingDirection:
		threshold := c.Threshold
		if threshold <= 0 {
			threshold = DefaultViewRelativeAngleThreshold
		}
		return math32.Abs(game.NormalizeAxis(s.InputYaw-s.ViewYaw)) < threshold
	case KindMaxSpeed:
		return s.Speed <= c.Threshold
	case KindRequireInput:
		return s.HasInput
	case KindAll:
		for _, child := range c.Children {
			if !child.CanEnter(s) {
				return false
			}
		}
		return true
	case KindFunc:
		return c.Fn != nil && c.Fn(s)
	}
	return false
}

// SuggestedFallback returns the state to try when CanEnter fails.
func (c *Condition) SuggestedFallback() tag.Tag {
	if c == nil {
		return tag.None
	}
	return c.Fallback
}

// Always returns a condition that always passes.
func Always() *Condition {
	return &Condition{Kind: KindAlways}
}

// Never returns a condition that always fails and suggests fallback instead.
func Never(fallback tag.Tag) *Condition {
	return &Condition{Kind: KindNever, Fallback: fallback}
}

// MovingDirection passes while the input direction is within threshold degrees of the view yaw.
func MovingDirection(threshold float32, fallback tag.Tag) *Condition {
	return &Condition{Kind: KindMovingDirection, Threshold: threshold, Fallback: fallback}
}

// MaxSpeed passes while the horizontal speed does not exceed speed.
func MaxSpeed(speed float32, fallback tag.Tag) *Condition {
	return &Condition{Kind: KindMaxSpeed, Threshold: speed, Fallback: fallback}
}

// RequireInput passes only while there is movement input.
func RequireInput(fallback tag.Tag) *Condition {
	return &Condition{Kind: KindRequireInput, Fallback: fallback}
}

// All passes when every child passes.
func All(fallback tag.Tag, children ...*Condition) *Condition {
	return &Condition{Kind: KindAll, Fallback: fallback, Children: children}
}

// Func wraps an arbitrary predicate. fn must be a pure function of the snapshot, otherwise client and
// server may resolve different states.
func Func(name string, fn func(s Snapshot) bool, fallback tag.Tag) *Condition {
	return &Condition{Kind: KindFunc, Name: name, Fn: fn, Fallback: fallback}
}
