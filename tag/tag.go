// Package tag implements the hierarchical state identifiers used to name locomotion modes,
// rotation modes, stances and gaits.
package tag

import "strings"

// Tag is a dot separated hierarchical identifier such as "Status.Gait.Running". Tags are compared by
// value.
type Tag string

// None is the empty, invalid tag.
const None Tag = ""

// Valid reports whether the tag is non-empty.
func (t Tag) Valid() bool {
	return t != None
}

// String ...
func (t Tag) String() string {
	return string(t)
}

// MatchesTag reports whether t equals parent or is nested under it. "Status.Gait.Running" matches
// "Status.Gait" but "Status.GaitX" does not.
func (t Tag) MatchesTag(parent Tag) bool {
	if !t.Valid() || !parent.Valid() {
		return false
	}
	if t == parent {
		return true
	}
	return strings.HasPrefix(string(t), string(parent)+".")
}

// Parent returns the direct parent of the tag, or None for a root tag.
func (t Tag) Parent() Tag {
	i := strings.LastIndexByte(string(t), '.')
	if i < 0 {
		return None
	}
	return t[:i]
}

// Leaf returns the last segment of the tag.
func (t Tag) Leaf() string {
	i := strings.LastIndexByte(string(t), '.')
	return string(t[i+1:])
}
