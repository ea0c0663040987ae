package transport

import "errors"

// ErrClosed is returned by the operations of a closed link.
var ErrClosed = errors.New("transport: link closed")

// Link is one end of a bidirectional frame channel. Neither Send nor Poll block on the peer: peers poll
// their links once per tick.
type Link interface {
	// Send queues a frame for the peer.
	Send(f Frame) error
	// Poll returns the frames received since the last call, in the order they were sent.
	Poll() ([]Frame, error)
	Close() error
}
