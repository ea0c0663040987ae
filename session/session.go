// Package session drives the locally controlled character of a client: it hands moves to the predictor,
// applies server replies, and optionally records everything it does so that the session can be replayed.
package session

import (
	"github.com/google/uuid"
	"github.com/oomph-ac/locomotion/config"
	"github.com/oomph-ac/locomotion/event"
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/oomph-ac/locomotion/tag"
	"github.com/sirupsen/logrus"
)

// Options configures a new Session.
type Options struct {
	Settings settings.Settings
	Log      *logrus.Logger
	// TrackFrames keeps a Frame of the component's state after every move.
	TrackFrames bool
}

// Session is the client side of a character controlled by the local player. Like the component it
// drives, a Session must only be used from one goroutine at a time.
type Session struct {
	id       uuid.UUID
	c        *locomotion.Component
	client   *prediction.Client
	settings settings.Settings
	log      *logrus.Logger

	// lastTimestamp is the timestamp of the last move, used as the time of other events.
	lastTimestamp float64

	recording *Recording

	trackFrames bool
	frames      []Frame
}

// New returns a session driving c, which must be an autonomous proxy.
func New(c *locomotion.Component, opts Options) *Session {
	log := internal.Logger(opts.Log)
	return &Session{
		id:          uuid.New(),
		c:           c,
		client:      prediction.NewClient(c, opts.Settings, log),
		settings:    opts.Settings,
		log:         log,
		trackFrames: opts.TrackFrames,
	}
}

// ID ...
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Component returns the component the session drives.
func (s *Session) Component() *locomotion.Component {
	return s.c
}

// Client returns the predictor of the session.
func (s *Session) Client() *prediction.Client {
	return s.client
}

// Tick performs m with the desired state of the component and returns the container to send to the
// server, if any.
func (s *Session) Tick(m prediction.Move) (*prediction.Container, error) {
	m.State = s.c.DesiredState()
	s.lastTimestamp = m.Timestamp
	s.record(&event.MoveEvent{Move: m})

	ct, err := s.client.Tick(m)
	if err != nil {
		return nil, err
	}
	if s.trackFrames {
		s.frames = append(s.frames, FrameOf(m.Timestamp, s.c.Snapshot(), s.client.Corrections()))
	}
	return ct, nil
}

// Flush returns a container with the move held back for combining, if any.
func (s *Session) Flush() *prediction.Container {
	return s.client.Flush()
}

// OnAck applies an acknowledgement received from the server.
func (s *Session) OnAck(a prediction.Ack) {
	s.record(&event.AckEvent{Ack: a})
	s.client.OnAck(a)
}

// OnCorrection applies a correction received from the server.
func (s *Session) OnCorrection(c prediction.Correction) error {
	s.record(&event.CorrectionEvent{Correction: c})
	return s.client.OnCorrection(c)
}

// SetDesiredRotationMode ...
func (s *Session) SetDesiredRotationMode(t tag.Tag) (locomotion.DesiredStateChange, bool) {
	return s.setDesired(locomotion.DesiredRotationMode, t)
}

// SetDesiredStance ...
func (s *Session) SetDesiredStance(t tag.Tag) (locomotion.DesiredStateChange, bool) {
	return s.setDesired(locomotion.DesiredStance, t)
}

// SetDesiredGait ...
func (s *Session) SetDesiredGait(t tag.Tag) (locomotion.DesiredStateChange, bool) {
	return s.setDesired(locomotion.DesiredGait, t)
}

func (s *Session) setDesired(field locomotion.DesiredField, t tag.Tag) (locomotion.DesiredStateChange, bool) {
	var (
		ch locomotion.DesiredStateChange
		ok bool
	)
	switch field {
	case locomotion.DesiredRotationMode:
		ch, ok = s.c.SetDesiredRotationMode(t)
	case locomotion.DesiredStance:
		ch, ok = s.c.SetDesiredStance(t)
	case locomotion.DesiredGait:
		ch, ok = s.c.SetDesiredGait(t)
	}
	if ok {
		s.record(&event.DesiredStateEvent{Field: field, Current: t})
	}
	return ch, ok
}

// SetLocomotionAction ...
func (s *Session) SetLocomotionAction(t tag.Tag) {
	s.record(&event.LocomotionActionEvent{Action: t})
	s.c.SetLocomotionAction(t)
}

// SetMovementMode requests a movement mode change. The request is recorded even if it is refused, since
// a replay refuses it the same way.
func (s *Session) SetMovementMode(mode config.MovementMode, custom uint8) bool {
	s.record(&event.MovementModeEvent{Mode: mode, CustomMode: custom})
	return s.c.SetMovementMode(mode, custom)
}

// SetRotationYawSpeed ...
func (s *Session) SetRotationYawSpeed(speed float32) {
	s.record(&event.RotationYawSpeedEvent{Speed: speed})
	s.c.SetRotationYawSpeed(speed)
}

// Frames returns the frames tracked so far.
func (s *Session) Frames() []Frame {
	return s.frames
}

// Apply applies a recorded event to the session.
func (s *Session) Apply(ev event.Event) error {
	switch ev := ev.(type) {
	case *event.MoveEvent:
		_, err := s.Tick(ev.Move)
		return err
	case *event.AckEvent:
		s.OnAck(ev.Ack)
	case *event.CorrectionEvent:
		return s.OnCorrection(ev.Correction)
	case *event.LocomotionActionEvent:
		s.SetLocomotionAction(ev.Action)
	case *event.MovementModeEvent:
		s.SetMovementMode(ev.Mode, ev.CustomMode)
	case *event.RotationYawSpeedEvent:
		s.SetRotationYawSpeed(ev.Speed)
	case *event.DesiredStateEvent:
		s.setDesired(ev.Field, ev.Current)
	default:
		s.log.Warnf("session: ignoring event %d", ev.ID())
	}
	return nil
}
