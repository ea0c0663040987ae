package internal

import "iter"

// Ring is a bounded FIFO buffer. Pushing onto a full ring evicts the front element.
type Ring[T any] struct {
	buf   []T
	start int
	n     int
}

// NewRing returns a ring holding at most size elements. A size below one is raised to one.
func NewRing[T any](size int) *Ring[T] {
	return &Ring[T]{buf: make([]T, max(size, 1))}
}

func (r *Ring[T]) index(i int) int {
	return (r.start + i) % len(r.buf)
}

// Push adds v to the back of the ring and returns the element it evicted, if any.
func (r *Ring[T]) Push(v T) (evicted T, ok bool) {
	if r.n == len(r.buf) {
		evicted, ok = r.buf[r.start], true
		r.buf[r.start] = v
		r.start = r.index(1)
		return evicted, ok
	}
	r.buf[r.index(r.n)] = v
	r.n++
	return evicted, false
}

// Front returns the oldest element.
func (r *Ring[T]) Front() (v T, ok bool) {
	if r.n == 0 {
		return v, false
	}
	return r.buf[r.start], true
}

// Back returns the newest element.
func (r *Ring[T]) Back() (v T, ok bool) {
	if r.n == 0 {
		return v, false
	}
	return r.buf[r.index(r.n-1)], true
}

// PopFront removes and returns the oldest element.
func (r *Ring[T]) PopFront() (v T, ok bool) {
	if r.n == 0 {
		return v, false
	}
	var zero T
	v, r.buf[r.start] = r.buf[r.start], zero
	r.start = r.index(1)
	r.n--
	return v, true
}

// All yields the elements oldest first.
func (r *Ring[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < r.n; i++ {
			if !yield(r.buf[r.index(i)]) {
				return
			}
		}
	}
}

func (r *Ring[T]) Len() int {
	return r.n
}

func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Clear drops every element.
func (r *Ring[T]) Clear() {
	clear(r.buf)
	r.start, r.n = 0, 0
}
