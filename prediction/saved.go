package prediction

import (
	"iter"

	"github.com/oomph-ac/locomotion/internal"
)

// SavedMoves holds the moves the server has not acknowledged yet, oldest first.
type SavedMoves struct {
	q *internal.Ring[*Move]
}

// NewSavedMoves ...
func NewSavedMoves(capacity int) *SavedMoves {
	return &SavedMoves{q: internal.NewRing[*Move](capacity)}
}

// Add saves a move. If the buffer is full, the oldest move is dropped and returned.
func (s *SavedMoves) Add(m *Move) (*Move, bool) {
	return s.q.Push(m)
}

// Acknowledge drops every move with a timestamp at or before timestamp.
func (s *SavedMoves) Acknowledge(timestamp float64) int {
	n := 0
	for {
		m, ok := s.q.Front()
		if !ok || m.Timestamp > timestamp {
			return n
		}
		s.q.PopFront()
		n++
	}
}

// Oldest ...
func (s *SavedMoves) Oldest() (*Move, bool) {
	return s.q.Front()
}

// All yields the saved moves from oldest to newest.
func (s *SavedMoves) All() iter.Seq[*Move] {
	return s.q.All()
}

// Len ...
func (s *SavedMoves) Len() int {
	return s.q.Len()
}
