package config

import (
	"errors"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/locomotion/condition"
	"github.com/oomph-ac/locomotion/tag"
)

// Validate checks every level of the tree. Each level must be non-empty, contain its default state,
// and have condition fallbacks that reference states of the same level without forming a cycle. All
// problems found are joined into the returned error.
func Validate(t *Tree) error {
	if t == nil || t.LocomotionModes == nil {
		return &Error{Path: "tree", Err: ErrEmptyLevel}
	}

	var errs []error
	errs = append(errs, validateLevel(nil, t.LocomotionModes, t.DefaultLocomotionMode, func(c *LocomotionModeConfig) *condition.Condition {
		return c.Condition
	})...)

	for lm := t.LocomotionModes.Front(); lm != nil; lm = lm.Next() {
		lmPath := []tag.Tag{lm.Key}
		errs = append(errs, validateLevel(lmPath, lm.Value.RotationModes, lm.Value.DefaultRotationMode, func(c *RotationModeConfig) *condition.Condition {
			return c.Condition
		})...)

		for rm := lm.Value.RotationModes.Front(); rm != nil; rm = rm.Next() {
			rmPath := append(lmPath[:1:1], rm.Key)
			errs = append(errs, validateLevel(rmPath, rm.Value.Stances, rm.Value.DefaultStance, func(c *StanceConfig) *condition.Condition {
				return c.Condition
			})...)

			for st := rm.Value.Stances.Front(); st != nil; st = st.Next() {
				stPath := append(rmPath[:2:2], st.Key)
				errs = append(errs, validateLevel(stPath, st.Value.Gaits, st.Value.DefaultGait, func(c *GaitConfig) *condition.Condition {
					return c.Condition
				})...)
			}
		}
	}
	return errors.Join(errs...)
}

func validateLevel[V any](path []tag.Tag, level *orderedmap.OrderedMap[tag.Tag, V], def tag.Tag, cond func(V) *condition.Condition) []error {
	if level == nil || level.Len() == 0 {
		return []error{&Error{Path: formatPath(path), Err: ErrEmptyLevel}}
	}

	var errs []error
	if _, ok := level.Get(def); !ok {
		errs = append(errs, &Error{Path: formatPath(append(path, def)), Err: ErrMissingDefault})
	}
	for el := level.Front(); el != nil; el = el.Next() {
		fallback := cond(el.Value).SuggestedFallback()
		if !fallback.Valid() {
			continue
		}
		if _, ok := level.Get(fallback); !ok {
			errs = append(errs, &Error{Path: formatPath(append(path, el.Key)), Err: ErrUnknownFallback})
			continue
		}
		if hasFallbackCycle(level, el.Key, cond) {
			errs = append(errs, &Error{Path: formatPath(append(path, el.Key)), Err: ErrFallbackCycle})
		}
	}
	return errs
}

// hasFallbackCycle walks the fallback chain starting at start. The walk is bounded by the size of the
// level, so it terminates for any input.
func hasFallbackCycle[V any](level *orderedmap.OrderedMap[tag.Tag, V], start tag.Tag, cond func(V) *condition.Condition) bool {
	seen := map[tag.Tag]struct{}{start: {}}
	current := start
	for range level.Len() + 1 {
		v, ok := level.Get(current)
		if !ok {
			return false
		}
		next := cond(v).SuggestedFallback()
		if !next.Valid() {
			return false
		}
		if _, ok := seen[next]; ok {
			return true
		}
		seen[next] = struct{}{}
		current = next
	}
	return true
}

func formatPath(path []tag.Tag) string {
	if len(path) == 0 {
		return "tree"
	}
	parts := make([]string, len(path))
	for i, t := range path {
		parts[i] = t.String()
	}
	return strings.Join(parts, " > ")
}
