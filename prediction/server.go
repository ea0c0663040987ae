package prediction

import (
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/sirupsen/logrus"
)

// Response is the server's reply to a container: exactly one of Ack and Correction is set.
type Response struct {
	Ack        *Ack
	Correction *Correction
}

// Server validates the moves of a client controlled character authoritatively.
type Server struct {
	sim Simulation

	processed     bool
	lastTimestamp float64

	maxPositionErrorSquared float32
	maxMoveDelta            float32
	logCorrections          bool

	history *History
	log     *logrus.Logger
}

// NewServer returns a validator driving sim.
func NewServer(sim Simulation, s settings.Settings, log *logrus.Logger) *Server {
	return &Server{
		sim:                     sim,
		maxPositionErrorSquared: s.Prediction.MaxPositionErrorSquared,
		maxMoveDelta:            s.Prediction.MaxMoveDeltaTime,
		logCorrections:          s.Debug.LogCorrections,
		history:                 NewHistory(s.Prediction.HistorySize),
		log:                     internal.Logger(log),
	}
}

// Process performs every move of the container the server has not processed yet, then compares the end
// location of the last one with the client's. A container holding no new move is a resend after a lost
// response: it is answered from the frame recorded for its newest move, or not at all if that frame is no
// longer known.
func (s *Server) Process(c *Container) (Response, error) {
	var last *Move
	for _, m := range c.Moves() {
		if s.processed && m.Timestamp <= s.lastTimestamp {
			continue
		}
		if m.DeltaTime <= 0 {
			s.log.Warnf("prediction: dropping move %.3f with delta time %f", m.Timestamp, m.DeltaTime)
			continue
		}

		performed := *m
		performed.DeltaTime = min(performed.DeltaTime, s.maxMoveDelta)
		performed.Start = s.sim.Transform()
		if err := s.sim.PerformMove(&performed); err != nil {
			return Response{}, err
		}

		s.processed, s.lastTimestamp = true, m.Timestamp
		s.history.Add(Frame{Timestamp: m.Timestamp, Transform: performed.End, State: s.sim.ResolvedState()})
		last = m
	}
	if last == nil {
		if c.New == nil {
			return Response{}, nil
		}
		f, ok := s.history.Get(c.New.Timestamp)
		if !ok {
			return Response{}, nil
		}
		return s.respond(c.New, f), nil
	}
	return s.respond(last, Frame{Timestamp: last.Timestamp, Transform: s.sim.Transform(), State: s.sim.ResolvedState()}), nil
}

// respond compares the client's result of m with the server's frame of the same move.
func (s *Server) respond(m *Move, f Frame) Response {
	errSq := f.Transform.Location.Sub(m.End.Location).LenSqr()
	if errSq <= s.maxPositionErrorSquared {
		return Response{Ack: &Ack{Timestamp: m.Timestamp}}
	}
	if s.logCorrections {
		s.log.Debugf("prediction: correcting move %.3f (error² %.3f, client %v, server %v, state %v)",
			m.Timestamp, errSq, m.End.Location, f.Transform.Location, f.State)
	}
	return Response{Correction: &Correction{
		Timestamp: m.Timestamp,
		Transform: f.Transform,
		State:     f.State,
	}}
}

// LastProcessedTimestamp returns the timestamp of the last move performed.
func (s *Server) LastProcessedTimestamp() float64 {
	return s.lastTimestamp
}
