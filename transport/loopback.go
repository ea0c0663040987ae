package transport

import (
	"sync"

	"github.com/oomph-ac/locomotion/internal"
	"github.com/sirupsen/logrus"
)

// LoopbackOptions configures a Loopback.
type LoopbackOptions struct {
	// Latency is the number of ticks a frame takes to arrive.
	Latency uint64
	// DropEvery drops every nth frame sent in either direction. Zero drops nothing.
	DropEvery uint64
	Log       *logrus.Logger
}

// Loopback connects two in-process links. Frames are encoded on Send and decoded on Poll, and arrive a
// fixed number of ticks after they were sent, so a simulation using a Loopback is deterministic.
type Loopback struct {
	mu   sync.Mutex
	tick uint64
	sent uint64
	opts LoopbackOptions
	log  *logrus.Logger
}

type queued struct {
	at uint64
	b  []byte
}

// NewLoopback returns a loopback and its two ends.
func NewLoopback(opts LoopbackOptions) (*Loopback, *LoopbackLink, *LoopbackLink) {
	l := &Loopback{opts: opts, log: internal.Logger(opts.Log)}
	a, b := &LoopbackLink{l: l}, &LoopbackLink{l: l}
	a.peer, b.peer = b, a
	return l, a, b
}

// Advance moves the loopback to the next tick.
func (l *Loopback) Advance() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tick++
}

// Tick returns the current tick of the loopback.
func (l *Loopback) Tick() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}

// LoopbackLink is an end of a Loopback.
type LoopbackLink struct {
	l    *Loopback
	peer *LoopbackLink

	inbox  []queued
	closed bool
}

// Send ...
func (e *LoopbackLink) Send(f Frame) error {
	e.l.mu.Lock()
	defer e.l.mu.Unlock()
	if e.closed || e.peer.closed {
		return ErrClosed
	}
	e.l.sent++
	if n := e.l.opts.DropEvery; n > 0 && e.l.sent%n == 0 {
		e.l.log.Debugf("transport: loopback dropped %v frame", f.Kind())
		return nil
	}
	e.peer.inbox = append(e.peer.inbox, queued{at: e.l.tick + e.l.opts.Latency, b: Encode(f)})
	return nil
}

// Poll returns the frames that arrived by the current tick. Frames that fail to decode are logged and
// skipped.
func (e *LoopbackLink) Poll() ([]Frame, error) {
	e.l.mu.Lock()
	defer e.l.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	var (
		frames []Frame
		n      int
	)
	for _, q := range e.inbox {
		if q.at > e.l.tick {
			break
		}
		n++
		f, err := Decode(q.b)
		if err != nil {
			e.l.log.Warnf("transport: discarding frame: %v", err)
			continue
		}
		frames = append(frames, f)
	}
	e.inbox = e.inbox[n:]
	return frames, nil
}

// Close ...
func (e *LoopbackLink) Close() error {
	e.l.mu.Lock()
	defer e.l.mu.Unlock()
	e.closed = true
	e.inbox = nil
	return nil
}

// Latency returns the latency of the loopback in ticks.
func (l *Loopback) Latency() uint64 {
	return l.opts.Latency
}
