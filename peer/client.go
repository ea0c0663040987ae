// Package peer connects the locomotion of a character across the network: the controlling client, the
// authoritative server and the simulated proxies watching the character, each exchanging transport
// frames over a Link once per tick.
package peer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/game"
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/session"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/oomph-ac/locomotion/transport"
	"github.com/sirupsen/logrus"
)

// Input is the input of the local player for a single tick.
type Input struct {
	Acceleration mgl32.Vec3
	Jump         bool
	View         game.Rotator
}

// Client is the peer of the local player.
type Client struct {
	s    *session.Session
	link transport.Link
	log  *logrus.Logger

	handshake bool
}

// NewClient returns a client sending the moves of s over link. The handshake is sent immediately.
func NewClient(s *session.Session, link transport.Link, log *logrus.Logger) (*Client, error) {
	c := &Client{s: s, link: link, log: internal.Logger(log)}
	if err := link.Send(&transport.Handshake{Fingerprint: s.Component().Data().Fingerprint()}); err != nil {
		return nil, err
	}
	return c, nil
}

// Session ...
func (c *Client) Session() *session.Session {
	return c.s
}

// Step handles the frames received from the server, then performs a move with in.
func (c *Client) Step(timestamp float64, dt float32, in Input) error {
	if err := c.receive(); err != nil {
		return err
	}
	ct, err := c.s.Tick(prediction.Move{
		Timestamp:       timestamp,
		DeltaTime:       dt,
		Acceleration:    in.Acceleration,
		Jump:            in.Jump,
		ControlRotation: in.View,
	})
	if err != nil {
		return err
	}
	return c.send(ct)
}

// Flush sends the move held back for combining, if any.
func (c *Client) Flush() error {
	return c.send(c.s.Flush())
}

// Receive handles the frames received from the server without performing a move.
func (c *Client) Receive() error {
	return c.receive()
}

func (c *Client) send(ct *prediction.Container) error {
	if ct == nil {
		return nil
	}
	return c.link.Send(&transport.MoveBatch{Container: *ct})
}

func (c *Client) receive() error {
	frames, err := c.link.Poll()
	if err != nil {
		return err
	}
	for _, f := range frames {
		switch f := f.(type) {
		case *transport.Handshake:
			if err := checkHandshake(c.s.Component(), f); err != nil {
				return err
			}
			c.handshake = true
		case *transport.Ack:
			c.s.OnAck(f.Ack)
		case *transport.Correction:
			if err := c.s.OnCorrection(f.Correction); err != nil {
				return err
			}
		default:
			c.log.Warnf("peer: client ignoring %v frame", f.Kind())
		}
	}
	return nil
}

// SetDesiredRotationMode requests a rotation mode and forwards the change to the server.
func (c *Client) SetDesiredRotationMode(t tag.Tag) error {
	return c.forward(c.s.SetDesiredRotationMode(t))
}

// SetDesiredStance ...
func (c *Client) SetDesiredStance(t tag.Tag) error {
	return c.forward(c.s.SetDesiredStance(t))
}

// SetDesiredGait ...
func (c *Client) SetDesiredGait(t tag.Tag) error {
	return c.forward(c.s.SetDesiredGait(t))
}

func (c *Client) forward(ch locomotion.DesiredStateChange, ok bool) error {
	if !ok {
		return nil
	}
	return c.link.Send(&transport.DesiredState{DesiredStateChange: ch})
}

// Close ...
func (c *Client) Close() error {
	return c.link.Close()
}

func checkHandshake(comp *locomotion.Component, h *transport.Handshake) error {
	if fp := comp.Data().Fingerprint(); fp != h.Fingerprint {
		return oerror.New("peer: tree fingerprint mismatch: local %x, remote %x", fp, h.Fingerprint)
	}
	return nil
}
