package prediction

import (
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/sirupsen/logrus"
)

// Client predicts the movement of a locally controlled character.
type Client struct {
	sim   Simulation
	saved *SavedMoves

	// pending is a move that was performed and saved, but held back so that it may be combined with the
	// next one.
	pending *Move

	lastAck     float64
	corrections int

	combining    bool
	maxMoveDelta float32

	log *logrus.Logger
}

// NewClient returns a predictor driving sim.
func NewClient(sim Simulation, s settings.Settings, log *logrus.Logger) *Client {
	return &Client{
		sim:          sim,
		saved:        NewSavedMoves(s.Prediction.MaxSavedMoves),
		combining:    s.Prediction.EnableMoveCombining,
		maxMoveDelta: s.Prediction.MaxMoveDeltaTime,
		log:          internal.Logger(log),
	}
}

// Tick performs m locally and returns the container to send to the server. Nil is returned when the move
// is held back to be combined with the next one.
func (c *Client) Tick(m Move) (*Container, error) {
	m.DeltaTime = min(m.DeltaTime, c.maxMoveDelta)
	m.Start = c.sim.Transform()
	m.Checkpoint = c.sim.Checkpoint()

	if c.pending != nil && c.combining && c.pending.CanCombineWith(&m, c.maxMoveDelta) {
		// The pending move was already performed: undo it and perform both moves at once, so that the
		// client simulates exactly what the server will.
		combined := c.pending.Combine(&m)
		c.sim.Restore(combined.Checkpoint)
		if err := c.sim.PerformMove(&combined); err != nil {
			return nil, err
		}
		*c.pending = combined

		sent := c.pending
		c.pending = nil
		return c.container(sent, nil), nil
	}

	mv := &m
	if err := c.sim.PerformMove(mv); err != nil {
		return nil, err
	}
	if dropped, ok := c.saved.Add(mv); ok {
		c.log.Warnf("prediction: saved move buffer full, dropped unacknowledged move %.3f", dropped.Timestamp)
	}

	pending := c.pending
	c.pending = nil
	if pending == nil && c.combining && !mv.NotCombinable && !mv.Jump {
		c.pending = mv
		return nil, nil
	}
	return c.container(mv, pending), nil
}

// Flush returns a container with the held back move, if any.
func (c *Client) Flush() *Container {
	if c.pending == nil {
		return nil
	}
	m := c.pending
	c.pending = nil
	return c.container(m, nil)
}

// OnAck drops every move the server acknowledged.
func (c *Client) OnAck(a Ack) {
	if a.Timestamp <= c.lastAck {
		return
	}
	c.lastAck = a.Timestamp
	c.saved.Acknowledge(a.Timestamp)
}

// OnCorrection snaps the character to the server's state and replays every move the server has not
// processed yet, starting from the state the first of them was originally performed from. Corrections
// older than the last acknowledgement are ignored.
func (c *Client) OnCorrection(corr Correction) error {
	if corr.Timestamp < c.lastAck {
		c.log.Debugf("prediction: ignoring stale correction %.3f (acked %.3f)", corr.Timestamp, c.lastAck)
		return nil
	}
	c.lastAck = corr.Timestamp
	c.saved.Acknowledge(corr.Timestamp)
	c.corrections++

	if first, ok := c.saved.Oldest(); ok {
		c.sim.Restore(first.Checkpoint)
	}
	c.sim.SetTransform(corr.Transform)
	c.sim.SetResolvedState(corr.State)

	replayed := 0
	for m := range c.saved.All() {
		m.Start = c.sim.Transform()
		m.Checkpoint = c.sim.Checkpoint()
		if err := c.sim.PerformMove(m); err != nil {
			return err
		}
		replayed++
	}
	c.log.Debugf("prediction: corrected to %v at %.3f, replayed %d moves", corr.Transform.Location, corr.Timestamp, replayed)
	return nil
}

// SavedMoves returns the moves awaiting acknowledgement.
func (c *Client) SavedMoves() *SavedMoves {
	return c.saved
}

// Corrections returns the number of corrections received.
func (c *Client) Corrections() int {
	return c.corrections
}

func (c *Client) container(m, pending *Move) *Container {
	ct := &Container{New: m, Pending: pending}

	var prev *Move
	for s := range c.saved.All() {
		if s == m || s == pending {
			break
		}
		if s.Important(prev) {
			ct.Old = s
			break
		}
		prev = s
	}
	return ct
}
