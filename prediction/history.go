package prediction

import (
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/resolver"
)

// Frame is the authoritative state of a character after a processed move.
type Frame struct {
	Timestamp float64
	Transform Transform
	State     resolver.State
}

// History holds the frames of the most recently processed moves, oldest first.
type History struct {
	frames *internal.Ring[Frame]
}

// NewHistory returns a history keeping at most size frames.
func NewHistory(size int) *History {
	return &History{frames: internal.NewRing[Frame](size)}
}

// Add appends a frame, evicting the oldest one if the history is full.
func (h *History) Add(f Frame) {
	h.frames.Push(f)
}

// Get returns the frame of the move processed at timestamp.
func (h *History) Get(timestamp float64) (Frame, bool) {
	for f := range h.frames.All() {
		if f.Timestamp == timestamp {
			return f, true
		}
	}
	return Frame{}, false
}
