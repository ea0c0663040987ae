package peer

import (
	"github.com/oomph-ac/locomotion/internal"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/oomph-ac/locomotion/transport"
	"github.com/sirupsen/logrus"
)

// Server is the authoritative peer of a character. It validates the moves of the controlling client and
// replicates the character to its proxies.
type Server struct {
	c      *locomotion.Component
	pred   *prediction.Server
	client transport.Link
	log    *logrus.Logger

	proxies   []transport.Link
	handshake bool
}

// NewServer returns a server for c, an authority, receiving moves over client.
func NewServer(c *locomotion.Component, s settings.Settings, client transport.Link, log *logrus.Logger) (*Server, error) {
	log = internal.Logger(log)
	srv := &Server{c: c, pred: prediction.NewServer(c, s, log), client: client, log: log}
	if err := client.Send(&transport.Handshake{Fingerprint: c.Data().Fingerprint()}); err != nil {
		return nil, err
	}
	return srv, nil
}

// AddProxy starts replicating the character over link.
func (s *Server) AddProxy(link transport.Link) error {
	if err := link.Send(&transport.Handshake{Fingerprint: s.c.Data().Fingerprint()}); err != nil {
		return err
	}
	s.proxies = append(s.proxies, link)
	return nil
}

// Component ...
func (s *Server) Component() *locomotion.Component {
	return s.c
}

// Prediction returns the move validator of the server.
func (s *Server) Prediction() *prediction.Server {
	return s.pred
}

// Step processes the frames of the client and sends a view snapshot to every proxy. Moves received
// before the client's handshake are dropped.
func (s *Server) Step() error {
	frames, err := s.client.Poll()
	if err != nil {
		return err
	}
	for _, f := range frames {
		switch f := f.(type) {
		case *transport.Handshake:
			if err := checkHandshake(s.c, f); err != nil {
				return err
			}
			s.handshake = true
		case *transport.DesiredState:
			s.c.ApplyDesiredStateChange(f.DesiredStateChange)
		case *transport.MoveBatch:
			if !s.handshake {
				s.log.Warnf("peer: dropping moves received before the handshake")
				continue
			}
			if err := s.process(&f.Container); err != nil {
				return err
			}
		default:
			s.log.Warnf("peer: server ignoring %v frame", f.Kind())
		}
	}
	return s.replicate()
}

func (s *Server) process(ct *prediction.Container) error {
	resp, err := s.pred.Process(ct)
	if err != nil {
		return err
	}
	switch {
	case resp.Ack != nil:
		return s.client.Send(&transport.Ack{Ack: *resp.Ack})
	case resp.Correction != nil:
		return s.client.Send(&transport.Correction{Correction: *resp.Correction})
	}
	return nil
}

func (s *Server) replicate() error {
	if len(s.proxies) == 0 {
		return nil
	}
	f := &transport.ViewSnapshot{ProxyUpdate: s.c.ProxyUpdate()}
	for _, p := range s.proxies {
		if err := p.Send(f); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the links of the client and the proxies.
func (s *Server) Close() error {
	for _, p := range s.proxies {
		_ = p.Close()
	}
	return s.client.Close()
}
